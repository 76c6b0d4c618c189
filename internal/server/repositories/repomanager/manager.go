package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pitstop/internal/dbx"
	"github.com/dmitrijs2005/pitstop/internal/server/repositories/posts"
	"github.com/dmitrijs2005/pitstop/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to either the pool or an
// open transaction, so a service can run several of them atomically.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
}
