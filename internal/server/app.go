// Package server assembles and runs the account service: database and
// migrations, the optional Redis revocation cache, the services, the HTTP
// API, the gRPC endpoint and the revocation janitor. Everything stops
// gracefully on SIGINT/SIGTERM or when the run context is cancelled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/auth"
	"github.com/vincentino1/account-service/internal/server/config"
	"github.com/vincentino1/account-service/internal/server/httpapi"
	"github.com/vincentino1/account-service/internal/server/repositories/repomanager"
	"github.com/vincentino1/account-service/internal/server/repositories/revocations"
	"github.com/vincentino1/account-service/internal/server/services"

	gs "github.com/vincentino1/account-service/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

// notifyContext is replaced in tests.
var notifyContext = signal.NotifyContext

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	repomanager repomanager.RepositoryManager

	accountService    *services.AccountService
	credentialService *services.CredentialService
	sessionService    *services.SessionService
	janitor           *services.RevocationJanitor

	httpServer *http.Server
	grpcServer *gs.GRPCServer
}

// NewApp connects to PostgreSQL (and Redis when configured), applies the
// schema migrations and wires the services.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var rdb *redis.Client
	if c.RedisURL != "" {
		rdb, err = revocations.Connect(ctx, c.RedisURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	app, err := newApp(c, logger, db, rdb)
	if err != nil {
		app.close()
		return nil, err
	}

	if err := app.repomanager.RunMigrations(ctx, db); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

// newApp wires an App around already opened connections. rdb may be nil.
func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rdb *redis.Client) (*App, error) {
	app := &App{config: c, logger: logger, db: db, redis: rdb}

	var opts []repomanager.Option
	if rdb != nil {
		opts = append(opts, repomanager.WithRevocationCache(func(next revocations.Repository) revocations.Repository {
			return revocations.NewRedisCache(next, rdb, c.RevocationCacheTTL, logger.With("module", "revocation_cache"))
		}))
	}
	app.repomanager = repomanager.NewPostgresRepositoryManager(opts...)

	hasher, err := auth.NewPasswordHasher(c.BcryptCost)
	if err != nil {
		return app, err
	}
	codec, err := auth.NewTokenCodec([]byte(c.SecretKey), c.AccessTokenTTL)
	if err != nil {
		return app, err
	}

	app.accountService = services.NewAccountService(db, app.repomanager, hasher, logger)
	app.credentialService = services.NewCredentialService(db, app.repomanager, hasher, logger)
	app.sessionService = services.NewSessionService(db, app.repomanager, app.credentialService, codec, logger)
	app.janitor = services.NewRevocationJanitor(app.repomanager.Revocations(db), c.PurgeInterval, logger.With("module", "janitor"))

	api := httpapi.NewServer(app.accountService, app.sessionService, app.credentialService, logger.With("module", "http_server"))
	app.httpServer = &http.Server{
		Addr:              c.HTTPAddr,
		Handler:           api.Router(httpapi.Options{AllowedOrigins: c.AllowedOrigins, Development: !c.IsProduction()}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.grpcServer = gs.NewGRPCServer(c.GRPCAddr, logger, app.sessionService)

	return app, nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, lis net.Listener) {
	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())
	if err := app.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then shuts down and
// releases connections. It fails only when the HTTP listener cannot be
// opened; later server errors stop the app and are logged.
func (app *App) Run(ctx context.Context) error {
	defer app.close()

	lis, err := net.Listen("tcp", app.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}

	ctx, stopSignals := notifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stopSignals()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc, lis)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.janitor.Run(ctx)
	}()

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *App) Handler() http.Handler { return app.httpServer.Handler }

func (app *App) close() {
	if app == nil {
		return
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
