package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/rentkeeper/internal/dbx"
	"github.com/dmitrijs2005/rentkeeper/internal/server/repositories/files"
	"github.com/dmitrijs2005/rentkeeper/internal/server/repositories/owners"
	"github.com/dmitrijs2005/rentkeeper/internal/server/repositories/uploads"
)

// RepositoryManager vends repositories bound to a *sql.DB or an open *sql.Tx,
// so a service can run several of them in one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Owners(db dbx.DBTX) owners.Repository
	Uploads(db dbx.DBTX) uploads.Repository
	Files(db dbx.DBTX) files.Repository
}
