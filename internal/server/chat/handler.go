package chat

import (
	"bufio"
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Hashith00/tlschat/internal/common"
	"github.com/Hashith00/tlschat/internal/cryptox"
	"github.com/Hashith00/tlschat/internal/logging"
	"github.com/Hashith00/tlschat/internal/protocol"
	"github.com/Hashith00/tlschat/internal/server/metrics"
	"github.com/Hashith00/tlschat/internal/server/models"
	"github.com/Hashith00/tlschat/internal/server/services"
)

// Relay notices sent back to the client as timestamped frames.
const (
	staleNotice        = "Message too old. Connection will be closed."
	tokenExpiredNotice = "Access token expired or invalid. Please renew your token using your refresh token."
	refreshOKNotice    = "Refresh token is valid. Renewing access token..."
	refreshGenNotice   = "Failed to generate new access token. Please login again."

	welcomeFormat = "Welcome %s! You are authenticated."
)

// UserAuthenticator is the slice of the user service the handler needs.
type UserAuthenticator interface {
	Login(ctx context.Context, email, passwordHash string) (*models.User, *services.TokenPair, error)
	ValidateAccess(token string) bool
	ValidateRefresh(ctx context.Context, token string) bool
	RefreshAccess(ctx context.Context, refreshToken string) (string, error)
}

// Handler drives one connection from the login exchange through the relay
// loop. It owns the read side of the connection; all writes go through the
// Session.
type Handler struct {
	conn     net.Conn
	reader   *bufio.Reader
	privKey  *rsa.PrivateKey
	users    UserAuthenticator
	registry *Registry
	logger   logging.Logger

	stalenessWindow time.Duration

	session *Session

	// now is a seam for deterministic staleness tests.
	now func() time.Time
}

// NewHandler wraps a freshly accepted connection.
func NewHandler(conn net.Conn, privKey *rsa.PrivateKey, users UserAuthenticator, registry *Registry, stalenessWindow time.Duration, logger logging.Logger) *Handler {
	return &Handler{
		conn:            conn,
		reader:          bufio.NewReader(conn),
		privKey:         privKey,
		users:           users,
		registry:        registry,
		logger:          logger,
		stalenessWindow: stalenessWindow,
		now:             time.Now,
	}
}

// Serve runs the full connection lifecycle. The connection is always closed,
// and the session deregistered, before Serve returns.
func (h *Handler) Serve(ctx context.Context) {
	defer h.conn.Close()

	if err := h.Authenticate(ctx); err != nil {
		if !errors.Is(err, common.ErrorUnauthorized) {
			h.logger.Warn(ctx, "login exchange aborted", "error", err)
		}
		return
	}

	h.registry.Add(h.session)
	defer h.registry.Remove(h.session.Name())

	h.Run(ctx)
}

// Authenticate performs the two-prompt login exchange. Each credential
// arrives RSA-encrypted under the server certificate's public key; the
// password is hashed before the lookup so plaintext never reaches storage.
// On success the handler holds a registered-ready session; on rejection the
// failure line has been written and the caller should close the connection.
func (h *Handler) Authenticate(ctx context.Context) error {
	email, err := h.promptCredential(protocol.PromptEmail)
	if err != nil {
		return err
	}
	password, err := h.promptCredential(protocol.PromptPassword)
	if err != nil {
		return err
	}

	user, pair, err := h.users.Login(ctx, email, cryptox.HashSecret(password))
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		h.logger.Info(ctx, "login rejected", "email", email)
		h.writeRawLine(protocol.AuthFailedMessage)
		return common.ErrorUnauthorized
	}

	result, err := protocol.TokenPairFrame{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}.Encode()
	if err != nil {
		return err
	}
	if err := h.writeRawLine(result); err != nil {
		return err
	}
	if err := h.writeRawLine(fmt.Sprintf(welcomeFormat, user.Name)); err != nil {
		return err
	}

	metrics.LoginAttempts.WithLabelValues("accepted").Inc()
	h.logger.Info(ctx, "login accepted", "user", user.Name)

	h.session = NewSession(user.Name, h.conn)
	return nil
}

// Run relays inbound lines until the peer disconnects or a stale message
// forces eviction. Each line is classified once and dispatched; classification
// order decides which rule applies to a line matching several shapes.
func (h *Handler) Run(ctx context.Context) {
	for {
		line, err := h.readLine()
		if err != nil {
			h.logger.Info(ctx, "connection closed", "user", h.session.Name())
			return
		}

		kind, frame := protocol.Classify(line)
		switch kind {
		case protocol.KindTimestamped:
			if !h.relayTimestamped(ctx, line, frame) {
				return
			}
		case protocol.KindAuthenticated:
			h.relayAuthenticated(ctx, frame)
		case protocol.KindRefresh:
			h.relayRefresh(ctx, frame)
		default:
			metrics.MessagesRelayed.WithLabelValues("bare").Inc()
			h.push(ctx, frame.Message)
		}
	}
}

// relayTimestamped enforces the staleness window. It returns false when the
// connection must close. A frame whose timestamp does not parse is treated as
// unstructured and echoed verbatim.
func (h *Handler) relayTimestamped(ctx context.Context, raw string, frame protocol.Frame) bool {
	sent, err := protocol.ParseInstant(frame.TimeStamp)
	if err != nil {
		metrics.MessagesRelayed.WithLabelValues("bare").Inc()
		h.push(ctx, raw)
		return true
	}

	if h.now().Sub(sent) >= h.stalenessWindow {
		metrics.StaleMessages.Inc()
		h.logger.Warn(ctx, "stale message, evicting", "user", h.session.Name(), "sent_at", frame.TimeStamp)
		h.push(ctx, staleNotice)
		return false
	}

	metrics.MessagesRelayed.WithLabelValues("timestamped").Inc()
	h.push(ctx, frame.Message)
	return true
}

// relayAuthenticated delivers the message only under a valid access token.
// An invalid token keeps the connection open; the client is told to renew.
func (h *Handler) relayAuthenticated(ctx context.Context, frame protocol.Frame) {
	if !h.users.ValidateAccess(frame.AccessToken) {
		metrics.TokenRejections.Inc()
		h.push(ctx, tokenExpiredNotice)
		return
	}
	metrics.MessagesRelayed.WithLabelValues("authenticated").Inc()
	h.push(ctx, frame.Message)
}

// relayRefresh answers a refresh request with a renewed access token. An
// invalid or expired refresh token gets no reply at all; the client discovers
// the dead token only through its own timeout.
func (h *Handler) relayRefresh(ctx context.Context, frame protocol.Frame) {
	if !h.users.ValidateRefresh(ctx, frame.RefreshToken) {
		metrics.TokenRejections.Inc()
		h.logger.Info(ctx, "refresh token rejected", "user", h.session.Name())
		return
	}

	access, err := h.users.RefreshAccess(ctx, frame.RefreshToken)
	if err != nil {
		h.logger.Error(ctx, "access token renewal failed", "user", h.session.Name(), "error", err)
		h.push(ctx, refreshGenNotice)
		return
	}

	metrics.MessagesRelayed.WithLabelValues("refresh").Inc()
	if err := h.session.PushToken(refreshOKNotice, access); err != nil {
		h.logger.Warn(ctx, "push failed", "user", h.session.Name(), "error", err)
	}
}

// promptCredential writes one prompt line and decrypts the answer.
func (h *Handler) promptCredential(prompt string) (string, error) {
	if err := h.writeRawLine(prompt); err != nil {
		return "", err
	}
	line, err := h.readLine()
	if err != nil {
		return "", err
	}
	return cryptox.DecryptField(line, h.privKey)
}

func (h *Handler) readLine() (string, error) {
	line, err := h.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// writeRawLine writes a plain text line outside any frame. Only the login
// exchange uses it; once a session exists all writes are framed.
func (h *Handler) writeRawLine(line string) error {
	_, err := fmt.Fprintf(h.conn, "%s\n", line)
	return err
}

func (h *Handler) push(ctx context.Context, msg string) {
	if err := h.session.Push(msg); err != nil {
		h.logger.Warn(ctx, "push failed", "user", h.session.Name(), "error", err)
	}
}
