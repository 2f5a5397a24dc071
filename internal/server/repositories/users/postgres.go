package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Hashith00/tlschat/internal/common"
	"github.com/Hashith00/tlschat/internal/dbx"
	"github.com/Hashith00/tlschat/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByEmailAndPassword(ctx context.Context, email, passwordHash string) (*models.User, error) {
	query := `
		SELECT id, name, email
		FROM users
		WHERE email = $1 AND password = $2
	`
	user := &models.User{PasswordHash: passwordHash}
	err := r.db.QueryRowContext(ctx, query, email, passwordHash).
		Scan(&user.ID, &user.Name, &user.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// GetByRefreshToken joins refresh_tokens and checks expiry in SQL, so an
// expired token behaves exactly like an unknown one.
func (r *PostgresRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.password
		FROM users u
		JOIN refresh_tokens rt ON u.id = rt.user_id
		WHERE rt.token = $1 AND rt.expires_at > NOW()
	`
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
