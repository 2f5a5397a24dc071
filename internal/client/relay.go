package client

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Hashith00/tlschat/internal/protocol"
)

const staleConnectionNotice = "Received message older than 1 hour. Closing connection."

// handleServerLine processes one inbound line. Timestamped frames older than
// the window terminate the connection; fresh frames print their message and,
// when a renewed access token rides along, replace the cached one. Lines that
// are not timestamped frames print as received.
//
// It returns false when the connection must be dropped.
func handleServerLine(line string, state *TokenState, out io.Writer, now time.Time, window time.Duration) bool {
	var f protocol.Frame
	if err := json.Unmarshal([]byte(line), &f); err != nil || f.TimeStamp == "" || f.Message == "" {
		fmt.Fprintln(out, line)
		return true
	}

	sent, err := protocol.ParseInstant(f.TimeStamp)
	if err != nil {
		fmt.Fprintln(out, line)
		return true
	}

	if now.Sub(sent) >= window {
		fmt.Fprintln(out, staleConnectionNotice)
		return false
	}

	fmt.Fprintln(out, f.Message)
	if f.AccessToken != "" {
		state.SetAccess(f.AccessToken)
	}
	return true
}
