// Package ctl implements accountctl, the operator tool of the account
// service.
package ctl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/auth"
	"github.com/vincentino1/account-service/internal/server/config"
	"github.com/vincentino1/account-service/internal/server/repositories/repomanager"
	"github.com/vincentino1/account-service/internal/server/services"
)

const usage = `usage: accountctl <command> [flags]

commands:
  migrate              apply pending database migrations
  purge-revocations    delete revocation entries of tokens that already expired
  hash-password        read a password and print its bcrypt hash

flags:
  -c, -config path   JSON configuration file
  -d string          PostgreSQL DSN (default: composed from DB_* variables)
  -b int             bcrypt cost for hash-password (4..15)
  -m string          environment ("development" | "production")
  -l string          log format ("zap" | "slog")

The other server flags (-a -g -s -t -r -p) are accepted and ignored.
Environment variables (DATABASE_URL, DB_HOST, BCRYPT_ROUNDS, ...) apply as
for the server.
`

var errUsage = errors.New("usage")

// Runner carries the dependencies of the commands.
type Runner struct {
	Config      *config.Config
	Logger      logging.Logger
	In          io.Reader
	Out         io.Writer
	OpenDB      func(ctx context.Context, dsn string) (*sql.DB, error)
	RepoManager repomanager.RepositoryManager
}

// Main parses args (without the program name), runs the command and
// returns the process exit code.
func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(errOut, usage)
		return 2
	}

	cfg, err := config.Load(args[1:])
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	logger, err := logging.New(cfg.LogFormat, !cfg.IsProduction(), errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	r := &Runner{
		Config:      cfg,
		Logger:      logger,
		In:          in,
		Out:         out,
		OpenDB:      repomanager.Open,
		RepoManager: repomanager.NewPostgresRepositoryManager(),
	}

	if err := r.Run(ctx, args[0]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(errOut, usage)
			return 2
		}
		logger.Error(ctx, "command failed", "command", args[0], "error", err)
		return 1
	}
	return 0
}

func (r *Runner) Run(ctx context.Context, command string) error {
	switch command {
	case "migrate":
		return r.migrate(ctx)
	case "purge-revocations":
		return r.purgeRevocations(ctx)
	case "hash-password":
		return r.hashPassword()
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func (r *Runner) withDB(ctx context.Context, fn func(db *sql.DB) error) error {
	db, err := r.OpenDB(ctx, r.Config.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func (r *Runner) migrate(ctx context.Context) error {
	return r.withDB(ctx, func(db *sql.DB) error {
		if err := r.RepoManager.RunMigrations(ctx, db); err != nil {
			return err
		}
		fmt.Fprintln(r.Out, "migrations applied")
		return nil
	})
}

func (r *Runner) purgeRevocations(ctx context.Context) error {
	return r.withDB(ctx, func(db *sql.DB) error {
		janitor := services.NewRevocationJanitor(r.RepoManager.Revocations(db), 0, r.Logger)
		n, err := janitor.PurgeOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.Out, "purged %d expired revocations\n", n)
		return nil
	})
}

func (r *Runner) hashPassword() error {
	hasher, err := auth.NewPasswordHasher(r.Config.BcryptCost)
	if err != nil {
		return err
	}

	pw, err := readSecret(r.In, r.Out, "Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if pw == "" {
		return errors.New("empty password")
	}

	hash, err := hasher.Hash(pw)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.Out, hash)
	return nil
}
