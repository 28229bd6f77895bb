package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/vincentino1/account-service/internal/common"
	"github.com/vincentino1/account-service/internal/dbx"
	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/auth"
	"github.com/vincentino1/account-service/internal/server/models"
	"github.com/vincentino1/account-service/internal/server/repositories/accounts"
	"github.com/vincentino1/account-service/internal/server/repositories/revocations"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newHasher(t *testing.T) *auth.PasswordHasher {
	t.Helper()
	h, err := auth.NewPasswordHasher(auth.MinCost)
	if err != nil {
		t.Fatalf("NewPasswordHasher: %v", err)
	}
	return h
}

// --- accounts ---

type fakeAccountsRepo struct {
	mu       sync.Mutex
	byID     map[string]*models.Account
	err      error
	updates  int
	emailArg string
}

func newFakeAccounts() *fakeAccountsRepo {
	return &fakeAccountsRepo{byID: map[string]*models.Account{}}
}

func (f *fakeAccountsRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, a.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *a
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeAccountsRepo) get(id string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *a
	return &out, nil
}

func (f *fakeAccountsRepo) GetByID(_ context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(id)
}

func (f *fakeAccountsRepo) GetByIDForUpdate(_ context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(id)
}

func (f *fakeAccountsRepo) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailArg = email
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.byID {
		if strings.EqualFold(a.Email, email) {
			out := *a
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccountsRepo) UpdateProfile(_ context.Context, id string, p models.ProfilePatch) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.Name != nil {
		a.Name = p.Name
	}
	if p.PhoneNumber != nil {
		a.PhoneNumber = p.PhoneNumber
	}
	if p.DateOfBirth != nil {
		a.DateOfBirth = p.DateOfBirth
	}
	a.UpdatedAt = time.Now()
	out := *a
	return &out, nil
}

func (f *fakeAccountsRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	a, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.PasswordHash = hash
	f.updates++
	return nil
}

// --- revocations ---

type fakeRevocationsRepo struct {
	mu      sync.Mutex
	ids     map[string]*time.Time
	revokes int
	err     error
	purged  int64
}

func newFakeRevocations() *fakeRevocationsRepo {
	return &fakeRevocationsRepo{ids: map[string]*time.Time{}}
}

func (f *fakeRevocationsRepo) Revoke(_ context.Context, id string, exp *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokes++
	if f.err != nil {
		return f.err
	}
	if _, ok := f.ids[id]; !ok {
		f.ids[id] = exp
	}
	return nil
}

func (f *fakeRevocationsRepo) IsRevoked(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.ids[id]
	return ok, nil
}

func (f *fakeRevocationsRepo) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for id, exp := range f.ids {
		if exp != nil && exp.Before(before) {
			delete(f.ids, id)
			n++
		}
	}
	f.purged += n
	return n, nil
}

// --- manager ---

type fakeRepoManager struct {
	a *fakeAccountsRepo
	r *fakeRevocationsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{a: newFakeAccounts(), r: newFakeRevocations()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository       { return m.a }
func (m *fakeRepoManager) Revocations(dbx.DBTX) revocations.Repository { return m.r }

// --- fixtures ---

type fixture struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	rm       *fakeRepoManager
	hasher   *auth.PasswordHasher
	codec    *auth.TokenCodec
	now      time.Time
	accounts *AccountService
	creds    *CredentialService
	sessions *SessionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock := newSQLMockDB(t)

	f := &fixture{
		db:     db,
		mock:   mock,
		rm:     newFakeRepoManager(),
		hasher: newHasher(t),
		now:    time.Now().Truncate(time.Second),
	}

	codec, err := auth.NewTokenCodec([]byte("test-secret"), time.Hour, auth.WithClock(func() time.Time { return f.now }))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	f.codec = codec

	log := logging.Nop{}
	f.accounts = NewAccountService(db, f.rm, f.hasher, log)
	f.creds = NewCredentialService(db, f.rm, f.hasher, log)
	f.sessions = NewSessionService(db, f.rm, f.creds, codec, log)
	return f
}

func (f *fixture) register(t *testing.T, email, password string) *models.Account {
	t.Helper()
	a, err := f.accounts.Register(context.Background(), NewAccount{Email: email, Password: password})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return a
}
