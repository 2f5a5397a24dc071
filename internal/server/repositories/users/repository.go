// Package users declares the server-side repository contract for the users
// relation.
package users

import (
	"context"

	"github.com/Hashith00/tlschat/internal/server/models"
)

// Repository defines the lookups the login exchange and token lifecycle need.
type Repository interface {
	// Create inserts a new user row and returns it with the assigned id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmailAndPassword returns the user matching the (email, password
	// digest) pair, or common.ErrorNotFound when the credentials match no row.
	GetByEmailAndPassword(ctx context.Context, email, passwordHash string) (*models.User, error)

	// GetByRefreshToken returns the user owning a currently valid refresh
	// token. Expired or unknown tokens yield common.ErrorNotFound.
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
}
