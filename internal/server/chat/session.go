package chat

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Hashith00/tlschat/internal/protocol"
)

// timeNow is a seam for tests that need deterministic frame timestamps.
var timeNow = time.Now

// Session is one authenticated connection. All writes to the underlying
// stream go through the session so that the relay loop and the operator
// console never interleave partial lines.
type Session struct {
	name string

	mu   sync.Mutex
	conn io.WriteCloser
}

// NewSession wraps an authenticated connection under the given display name.
func NewSession(name string, conn io.WriteCloser) *Session {
	return &Session{name: name, conn: conn}
}

// Name returns the display name this session is registered under.
func (s *Session) Name() string {
	return s.name
}

// Push sends a timestamped server frame carrying msg.
func (s *Session) Push(msg string) error {
	line, err := protocol.ServerPush(timeNow(), msg).Encode()
	if err != nil {
		return err
	}
	return s.writeLine(line)
}

// PushToken sends a timestamped server frame carrying msg and a fresh access
// token.
func (s *Session) PushToken(msg string, accessToken string) error {
	line, err := protocol.TokenPush(timeNow(), msg, accessToken).Encode()
	if err != nil {
		return err
	}
	return s.writeLine(line)
}

// writeLine writes one newline-terminated line to the connection.
func (s *Session) writeLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.conn, "%s\n", line)
	return err
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}
