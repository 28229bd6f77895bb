// Package accounts declares the account store contract and its PostgreSQL
// implementation.
package accounts

import (
	"context"

	"github.com/vincentino1/account-service/internal/server/models"
)

// Repository is the account store. Lookups by email are case-insensitive.
// Missing rows are reported as common.ErrorNotFound.
type Repository interface {
	// Create inserts a new account and fills in ID and timestamps. A
	// duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetByIDForUpdate is GetByID that also locks the row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error)

	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.Account, error)

	// UpdatePasswordHash replaces the stored hash in a single statement.
	UpdatePasswordHash(ctx context.Context, id string, hash string) error
}
