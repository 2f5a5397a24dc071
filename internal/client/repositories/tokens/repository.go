// Package tokens persists the client's current token pair in the local
// sqlite database so a restarted client can resume without a fresh login.
package tokens

import "context"

// Pair is the cached access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Repository stores at most one token pair.
type Repository interface {
	// Save replaces the cached pair.
	Save(ctx context.Context, pair *Pair) error

	// Load returns the cached pair, or common.ErrorNotFound when the cache
	// is empty.
	Load(ctx context.Context) (*Pair, error)

	// Clear drops the cached pair. Clearing an empty cache is a no-op.
	Clear(ctx context.Context) error
}
