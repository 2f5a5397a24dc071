// Package refreshtokens declares the server-side repository contract for the
// refresh_tokens relation: one active row per user, upserted on login.
package refreshtokens

import (
	"context"
	"time"

	"github.com/Hashith00/tlschat/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens.
type Repository interface {
	// Save upserts the refresh token for userID with an expiry of
	// now+validity, overwriting any prior token the user held.
	Save(ctx context.Context, userID int64, token string, validity time.Duration) error

	// Find looks up a refresh token by its opaque token string and returns
	// its metadata. Absent tokens yield common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its token string. Deleting a
	// non-existent token is not an error.
	Delete(ctx context.Context, token string) error
}
