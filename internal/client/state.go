// Package client implements the interactive chat client: TLS connect,
// credential exchange, the inbound reader and the console send loop.
package client

import (
	"sync"

	"github.com/Hashith00/tlschat/internal/client/repositories/tokens"
)

// TokenState is the token pair shared by the send loop and the inbound
// reader. The reader replaces the access token when the server renews it.
type TokenState struct {
	mu   sync.Mutex
	pair tokens.Pair
}

func NewTokenState(pair tokens.Pair) *TokenState {
	return &TokenState{pair: pair}
}

func (t *TokenState) Access() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pair.AccessToken
}

func (t *TokenState) Refresh() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pair.RefreshToken
}

func (t *TokenState) SetAccess(accessToken string) {
	t.mu.Lock()
	t.pair.AccessToken = accessToken
	t.mu.Unlock()
}

// Snapshot returns a copy of the current pair.
func (t *TokenState) Snapshot() tokens.Pair {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pair
}
