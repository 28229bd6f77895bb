// Package services contains server-side business logic: credential checks,
// the session lifecycle (login, logout, request authorization), account
// registration and profile changes, and revocation housekeeping.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vincentino1/account-service/internal/common"
	"github.com/vincentino1/account-service/internal/dbx"
	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/auth"
	"github.com/vincentino1/account-service/internal/server/models"
	"github.com/vincentino1/account-service/internal/server/repositories/repomanager"
)

// CredentialService checks passwords against stored hashes and rotates them.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	logger      logging.Logger
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher, logger logging.Logger) *CredentialService {
	return &CredentialService{db: db, repomanager: m, hasher: hasher, logger: logger}
}

// Authenticate returns the account whose email (case-insensitive) and
// password match. Unknown email, wrong password and an unusable stored hash
// all yield common.ErrInvalidCredentials.
func (s *CredentialService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, storageErr("find account", err)
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		s.logger.Warn(ctx, "stored password hash is unusable", "account_id", account.ID)
		return nil, common.ErrInvalidCredentials
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}
	return account, nil
}

// RotatePassword replaces the password of accountID after checking
// oldPassword. The account row stays locked for the whole
// read-verify-write, so concurrent rotations of one account run one after
// the other and the second sees the first's hash.
func (s *CredentialService) RotatePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		account, err := repo.GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		ok, err := s.hasher.Verify(oldPassword, account.PasswordHash)
		if err != nil || !ok {
			return common.ErrInvalidCredentials
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}

		return repo.UpdatePasswordHash(ctx, accountID, hash)
	})
	if err != nil {
		return storageErr("rotate password", err)
	}

	s.logger.Info(ctx, "password rotated", "account_id", accountID)
	return nil
}
