package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Hashith00/tlschat/internal/common"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save upserts the single cached row. The fixed id keeps the table at one
// pair no matter how many logins happen.
func (r *SQLiteRepository) Save(ctx context.Context, pair *Pair) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_tokens (id, access_token, refresh_token, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			updated_at = excluded.updated_at
	`, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to save token pair: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context) (*Pair, error) {
	var p Pair
	err := r.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token FROM auth_tokens WHERE id = 1`,
	).Scan(&p.AccessToken, &p.RefreshToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token pair: %w", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("failed to clear token pair: %w", err)
	}
	return nil
}
