// Package metrics exposes Prometheus collectors for the relay server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveSessions tracks the number of currently registered connections.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tlschat_active_sessions",
		Help: "Number of authenticated connections currently registered.",
	})

	// MessagesRelayed counts inbound frames accepted and delivered, by kind.
	MessagesRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tlschat_messages_relayed_total",
		Help: "Inbound frames accepted and delivered, by frame kind.",
	}, []string{"kind"})

	// LoginAttempts counts login exchanges by outcome (ok, rejected, error).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tlschat_login_attempts_total",
		Help: "Login exchanges, by outcome.",
	}, []string{"outcome"})

	// StaleMessages counts connections evicted by the staleness window.
	StaleMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tlschat_stale_messages_total",
		Help: "Connections closed because a timestamped message was too old.",
	})

	// TokenRejections counts access tokens that failed validation in-band.
	TokenRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tlschat_token_rejections_total",
		Help: "Access tokens rejected during the relay phase.",
	})
)

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
