// Package repomanager vends repository implementations bound to a database
// handle and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/Hashith00/tlschat/internal/dbx"
	"github.com/Hashith00/tlschat/internal/server/repositories/refreshtokens"
	"github.com/Hashith00/tlschat/internal/server/repositories/users"
)

// RepositoryManager constructs repositories against a DBTX, so services can
// use the same repository code inside and outside a transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
