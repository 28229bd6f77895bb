package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vincentino1/account-service/internal/common"
	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/auth"
	"github.com/vincentino1/account-service/internal/server/models"
	"github.com/vincentino1/account-service/internal/server/repositories/repomanager"
)

// NewAccount is the input of Register.
type NewAccount struct {
	Email       string
	Password    string
	Name        *string
	PhoneNumber *string
	DateOfBirth *string
}

// AccountService handles registration and profile reads/updates.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher, logger logging.Logger) *AccountService {
	return &AccountService{db: db, repomanager: m, hasher: hasher, logger: logger}
}

// Register creates an account. An email already taken (in any letter case)
// yields common.ErrorAlreadyExists.
func (s *AccountService) Register(ctx context.Context, in NewAccount) (*models.Account, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.Create(ctx, &models.Account{
		Email:        strings.TrimSpace(in.Email),
		Name:         in.Name,
		PhoneNumber:  in.PhoneNumber,
		DateOfBirth:  in.DateOfBirth,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, storageErr("create account", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get account", err)
	}
	return account, nil
}

// UpdateProfile applies the non-nil fields of patch and returns the updated
// account.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).UpdateProfile(ctx, id, patch)
	if err != nil {
		return nil, storageErr("update profile", err)
	}
	return account, nil
}
