package ctl

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincentino1/account-service/internal/dbx"
	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/config"
	"github.com/vincentino1/account-service/internal/server/repositories/accounts"
	"github.com/vincentino1/account-service/internal/server/repositories/revocations"
	"golang.org/x/crypto/bcrypt"
)

type fakeRevocations struct {
	purged int64
	err    error
	before time.Time
}

func (f *fakeRevocations) Revoke(context.Context, string, *time.Time) error { return nil }
func (f *fakeRevocations) IsRevoked(context.Context, string) (bool, error) { return false, nil }
func (f *fakeRevocations) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	return f.purged, f.err
}

type fakeRepoManager struct {
	migrateErr error
	migrated   bool
	rev        *fakeRevocations
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.migrateErr
}
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository       { return nil }
func (m *fakeRepoManager) Revocations(dbx.DBTX) revocations.Repository { return m.rev }

func newRunner(t *testing.T, in string) (*Runner, *fakeRepoManager, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = 4

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	rm := &fakeRepoManager{rev: &fakeRevocations{}}
	out := &bytes.Buffer{}
	return &Runner{
		Config:      cfg,
		Logger:      logging.Nop{},
		In:          strings.NewReader(in),
		Out:         out,
		OpenDB:      func(context.Context, string) (*sql.DB, error) { return db, nil },
		RepoManager: rm,
	}, rm, out
}

func TestMigrate(t *testing.T) {
	r, rm, out := newRunner(t, "")

	require.NoError(t, r.Run(context.Background(), "migrate"))
	assert.True(t, rm.migrated)
	assert.Contains(t, out.String(), "migrations applied")

	rm.migrateErr = errors.New("migrate: boom")
	assert.Error(t, r.Run(context.Background(), "migrate"))
}

func TestMigrate_OpenFails(t *testing.T) {
	r, rm, _ := newRunner(t, "")
	r.OpenDB = func(context.Context, string) (*sql.DB, error) { return nil, errors.New("ping database: refused") }

	assert.Error(t, r.Run(context.Background(), "migrate"))
	assert.False(t, rm.migrated)
}

func TestPurgeRevocations(t *testing.T) {
	r, rm, out := newRunner(t, "")
	rm.rev.purged = 3

	require.NoError(t, r.Run(context.Background(), "purge-revocations"))
	assert.Equal(t, "purged 3 expired revocations\n", out.String())
	assert.WithinDuration(t, time.Now(), rm.rev.before, time.Minute)
}

func TestHashPassword_FromPipe(t *testing.T) {
	r, _, out := newRunner(t, "hunter2-but-longer\n")

	require.NoError(t, r.Run(context.Background(), "hash-password"))
	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2-but-longer")))
}

func TestHashPassword_Empty(t *testing.T) {
	r, _, _ := newRunner(t, "\n")
	assert.Error(t, r.Run(context.Background(), "hash-password"))
}

func TestHashPassword_Terminal(t *testing.T) {
	origRead, origIs := readPassword, isTerminal
	readPassword = func(int) ([]byte, error) { return []byte("from-terminal"), nil }
	isTerminal = func(int) bool { return true }
	defer func() { readPassword, isTerminal = origRead, origIs }()

	r, _, out := newRunner(t, "")
	r.In = os.Stdin

	require.NoError(t, r.Run(context.Background(), "hash-password"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	hash := strings.TrimSpace(lines[len(lines)-1])
	assert.True(t, strings.HasPrefix(out.String(), "Password: "))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("from-terminal")))
}

func TestUnknownCommand(t *testing.T) {
	r, _, _ := newRunner(t, "")
	err := r.Run(context.Background(), "frobnicate")
	assert.ErrorIs(t, err, errUsage)
}

func TestMain_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, Main(context.Background(), nil, strings.NewReader(""), &out, &errOut))
	assert.Contains(t, errOut.String(), "usage: accountctl")
	assert.Contains(t, errOut.String(), "-d string")
	assert.Contains(t, errOut.String(), "-b int")
	assert.NotContains(t, errOut.String(), "README")

	errOut.Reset()
	assert.Equal(t, 2, Main(context.Background(), []string{"frobnicate"}, strings.NewReader(""), &out, &errOut))
}

func TestMain_HashPassword(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Main(context.Background(), []string{"hash-password", "-b", "4"}, strings.NewReader("pipe-password\n"), &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.True(t, strings.HasPrefix(out.String(), "$2a$04$"))
}
