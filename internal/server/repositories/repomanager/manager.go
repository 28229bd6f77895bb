package repomanager

import (
	"context"
	"database/sql"

	"github.com/vincentino1/account-service/internal/dbx"
	"github.com/vincentino1/account-service/internal/server/repositories/accounts"
	"github.com/vincentino1/account-service/internal/server/repositories/revocations"
)

// RepositoryManager hands out repositories bound to a DBTX, so services can
// run the same repository against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Revocations(db dbx.DBTX) revocations.Repository
}
