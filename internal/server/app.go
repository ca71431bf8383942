// Package server wires the GophTasks HTTP API: storage, auth, services and
// the API and observability listeners, with graceful shutdown on signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
	"github.com/dmitrijs2005/gophtasks/internal/server/observability"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtasks/internal/server/rest"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	apiServer     *rest.Server
	metricsServer *observability.Server
}

// NewApp opens the database, applies migrations and assembles the servers.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	app, err := newApp(ctx, cfg, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	codec, err := auth.NewTokenCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost, cfg.HashConcurrency)
	authenticator, err := auth.NewAuthenticator(ctx, rm.Users(db), hasher)
	if err != nil {
		return nil, fmt.Errorf("authenticator: %w", err)
	}
	resolver := auth.NewSessionResolver(codec, rm.Users(db), rm.RevokedTokens(db))

	registry := observability.NewRegistry()
	metrics := observability.NewMetrics(registry)

	handler, err := rest.NewHandler(rest.Deps{
		Users:    services.NewUserService(db, rm, hasher, authenticator, codec),
		Tasks:    services.NewTaskService(db, rm),
		Resolver: resolver,
		Logger:   logger,
		Metrics:  metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("http handler: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    logger,
		db:        db,
		apiServer: rest.NewServer(cfg.EndpointAddr, handler, logger, cfg.ShutdownTimeout),
	}
	if cfg.MetricsAddr != "" {
		app.metricsServer = observability.NewServer(cfg.MetricsAddr, registry, db.PingContext, logger, cfg.ShutdownTimeout)
	}
	return app, nil
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves until a signal arrives or a listener fails, then waits for
// both servers to drain and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddr, "metrics_addr", app.config.MetricsAddr)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	start := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				app.logger.Error(ctx, "server stopped", "server", name, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancel()
			}
		}()
	}

	start("api", app.apiServer.Run)
	if app.metricsServer != nil {
		start("observability", app.metricsServer.Run)
	}

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")

	if err := app.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("db close: %w", err))
	}
	return errors.Join(errs...)
}
