// Package protocol defines the newline-delimited wire frames exchanged
// between the chat client and server after the TLS handshake. Every frame is
// one JSON object per line; anything that does not parse is carried as a bare
// message line.
package protocol

import (
	"encoding/json"
	"strings"
	"time"
)

// Login exchange literals. The prompts are plain text lines, not JSON.
const (
	PromptEmail    = "Enter email:"
	PromptPassword = "Enter password:"

	// AuthFailedMessage is matched by clients with a case-insensitive
	// "failed" substring check, so the word must stay in the text.
	AuthFailedMessage = "Authentication failed. Connection will close."
)

// Frame is the single JSON shape carried per line. Which fields are set
// determines how the line is classified; see Classify.
type Frame struct {
	TimeStamp    string `json:"time_stamp,omitempty"`
	Message      string `json:"message,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// TokenPairFrame is the structured login-success line.
type TokenPairFrame struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Kind is the classification of one inbound line.
type Kind int

const (
	// KindBare is an unstructured line delivered without token checks.
	KindBare Kind = iota
	// KindTimestamped carries time_stamp and message; subject to the
	// staleness window.
	KindTimestamped
	// KindAuthenticated carries accessToken and message.
	KindAuthenticated
	// KindRefresh carries a refreshToken alone.
	KindRefresh
)

// Classify parses one inbound line into its frame kind. The priority order is
// behaviorally significant: a frame matching several shapes takes the first
// match (timestamped, then token-bearing, then refresh). Parse failures are
// not errors; the line falls back to a bare message.
func Classify(line string) (Kind, Frame) {
	var f Frame
	if err := json.Unmarshal([]byte(line), &f); err != nil {
		return KindBare, Frame{Message: line}
	}

	switch {
	case f.TimeStamp != "" && f.Message != "":
		return KindTimestamped, f
	case f.AccessToken != "" && f.Message != "":
		return KindAuthenticated, f
	case f.RefreshToken != "":
		return KindRefresh, f
	default:
		return KindBare, Frame{Message: line}
	}
}

// ServerPush builds the outbound frame wrapping every delivery to a peer:
// a fresh server-side timestamp plus the message text. Encoding through
// encoding/json escapes embedded quotes.
func ServerPush(now time.Time, msg string) Frame {
	return Frame{
		TimeStamp: FormatInstant(now),
		Message:   msg,
	}
}

// TokenPush is ServerPush with a renewed access token attached, used when the
// server answers a valid refresh request.
func TokenPush(now time.Time, msg, accessToken string) Frame {
	f := ServerPush(now, msg)
	f.AccessToken = accessToken
	return f
}

// Encode renders a frame as a single JSON line without the trailing newline.
func (f Frame) Encode() (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatInstant renders a timestamp as an ISO-8601 instant in UTC,
// e.g. "2025-01-02T15:04:05Z".
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseInstant parses an ISO-8601 instant as produced by FormatInstant.
func ParseInstant(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// IsRejection reports whether a plain login-result line is a rejection.
// The contract is a case-insensitive substring match on "failed".
func IsRejection(line string) bool {
	return strings.Contains(strings.ToLower(line), "failed")
}

// Encode renders the login-success line without the trailing newline.
func (p TokenPairFrame) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseTokenPair decodes a login-success line. It returns false when the line
// is not a structured result carrying both tokens.
func ParseTokenPair(line string) (TokenPairFrame, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return TokenPairFrame{}, false
	}
	var p TokenPairFrame
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return TokenPairFrame{}, false
	}
	if p.AccessToken == "" || p.RefreshToken == "" {
		return TokenPairFrame{}, false
	}
	return p, true
}
