// Package config handles configuration for the chat client, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the chat client.
//
// Fields:
//   - ServerAddr: host:port of the relay's TLS endpoint.
//   - DatabaseDSN: path of the local sqlite database caching the token pair.
//   - StalenessWindow: maximum age of an inbound timestamped frame before the
//     client drops the connection.
type Config struct {
	ServerAddr      string
	DatabaseDSN     string
	StalenessWindow time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:8443"
	c.DatabaseDSN = "tlschat-client.db"
	c.StalenessWindow = time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
