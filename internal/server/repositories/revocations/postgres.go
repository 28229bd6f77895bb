package revocations

import (
	"context"
	"fmt"
	"time"

	"github.com/vincentino1/account-service/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Revoke(ctx context.Context, tokenID string, expiresAt *time.Time) error {
	query := `
		INSERT INTO token_blocklist (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, tokenID, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM token_blocklist WHERE jti = $1)`

	var revoked bool
	if err := r.db.QueryRowContext(ctx, query, tokenID).Scan(&revoked); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return revoked, nil
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM token_blocklist
		WHERE expires_at IS NOT NULL AND expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
