// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/vincentino1/account-service/internal/dbx"
	"github.com/vincentino1/account-service/internal/server/migrations"
	"github.com/vincentino1/account-service/internal/server/repositories/accounts"
	"github.com/vincentino1/account-service/internal/server/repositories/revocations"
)

// DriverName is the database/sql driver registered by pgx/stdlib.
const DriverName = "pgx"

// PostgresRepositoryManager vends PostgreSQL-backed repositories. When a
// revocation cache is configured, Revocations wraps the Postgres store with
// it.
type PostgresRepositoryManager struct {
	revocationCache func(revocations.Repository) revocations.Repository
}

type Option func(*PostgresRepositoryManager)

// WithRevocationCache decorates every revocation repository handed out.
func WithRevocationCache(wrap func(revocations.Repository) revocations.Repository) Option {
	return func(m *PostgresRepositoryManager) { m.revocationCache = wrap }
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

// Revocations returns a revocations.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Revocations(db dbx.DBTX) revocations.Repository {
	var repo revocations.Repository = revocations.NewPostgresRepository(db)
	if m.revocationCache != nil {
		repo = m.revocationCache(repo)
	}
	return repo
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(opts ...Option) *PostgresRepositoryManager {
	m := &PostgresRepositoryManager{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open opens a pgx-backed *sql.DB and verifies it is reachable.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
