package models

import "time"

// RefreshToken is the server-side record backing one opaque refresh token.
// There is at most one active row per user; a new login overwrites it.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
