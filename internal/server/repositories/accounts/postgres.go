package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vincentino1/account-service/internal/common"
	"github.com/vincentino1/account-service/internal/dbx"
	"github.com/vincentino1/account-service/internal/server/models"
)

const accountColumns = `id, email, name, phone_number, date_of_birth::text, password_hash, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PhoneNumber, &a.DateOfBirth, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// validID keeps malformed identifiers from reaching Postgres, where they
// would fail the uuid cast instead of simply matching nothing.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO account (email, name, phone_number, date_of_birth, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		account.Email, account.Name, account.PhoneNumber, account.DateOfBirth, account.PasswordHash)

	created, err := scanAccount(row)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	query := `
		SELECT ` + accountColumns + `
		FROM account
		WHERE id = $1
	`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	query := `
		SELECT ` + accountColumns + `
		FROM account
		WHERE id = $1
		FOR UPDATE
	`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM account
		WHERE lower(email) = lower($1)
		LIMIT 1
	`
	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.Account, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	query := `
		UPDATE account
		SET name = COALESCE($2, name),
		    phone_number = COALESCE($3, phone_number),
		    date_of_birth = COALESCE($4::date, date_of_birth),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + accountColumns

	return scanAccount(r.db.QueryRowContext(ctx, query, id, patch.Name, patch.PhoneNumber, patch.DateOfBirth))
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	query := `
		UPDATE account
		SET password_hash = $2,
		    updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
