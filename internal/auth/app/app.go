package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	httpapi "github.com/aussiebroadwan/quill/internal/auth/http"
	"github.com/aussiebroadwan/quill/internal/auth/metrics"
	"github.com/aussiebroadwan/quill/internal/auth/service"
	"github.com/aussiebroadwan/quill/internal/auth/store"
	"github.com/aussiebroadwan/quill/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/quill/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/quill/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/quill/pkg/cryptox"
	"github.com/aussiebroadwan/quill/pkg/jwtx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	// Core dependencies
	db     store.Store
	tokens store.TokenStore
	rdb    *goredis.Client // nil unless the redis token store is in use
	issuer *jwtx.TokenIssuer

	// Services
	authService         *service.AuthService
	userService         *service.UserService
	contentService      *service.ContentService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService // nil for redis, which expires keys itself

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "quill-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initTokenStore(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	issuer, err := jwtx.NewTokenIssuer(
		[]byte(cfg.AccessSecret),
		[]byte(cfg.RefreshSecret),
		cfg.Issuer,
		cfg.AccessTTL,
		cfg.RefreshTTL,
	)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	app.issuer = issuer

	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}
	if err := app.initHTTP(); err != nil {
		app.closeStores()
		return nil, err
	}

	return app, nil
}

// Handler exposes the routed handler, for tests that drive the app in-process.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
	}

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"token_store", app.cfg.TokenStore,
		"refresh_rotation", app.cfg.RefreshRotation,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingService != nil {
		app.housekeepingService.Stop()
	}

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if app.rdb != nil {
		if err := app.rdb.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initTokenStore picks the refresh token store. A redis store that cannot be
// reached at startup is an error; later outages surface per request.
func (app *Application) initTokenStore() error {
	switch app.cfg.TokenStore {
	case TokenStoreRedis:
		rdb, err := redis.NewClient(app.cfg.RedisURL)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), app.cfg.StoreTimeout)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return fmt.Errorf("failed to reach redis: %w", err)
		}
		app.rdb = rdb
		app.tokens = redis.NewTokenStore(rdb, app.cfg.RedisPrefix)
	default:
		mem := memory.NewTokenStore()
		app.tokens = mem
		app.housekeepingService = service.NewHousekeepingService(
			mem,
			app.logger,
			app.cfg.HousekeepingInterval,
			app.metrics,
		)
		app.logger.Warn("using in-memory refresh token store; sessions do not survive restarts")
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	refreshVerifier, err := jwtx.NewVerifierHS256([]byte(app.cfg.RefreshSecret), app.cfg.Issuer, 0)
	if err != nil {
		return fmt.Errorf("failed to initialize refresh verifier: %w", err)
	}

	app.authService = &service.AuthService{
		Store:           app.db,
		Tokens:          app.tokens,
		Issuer:          app.issuer,
		RefreshVerifier: refreshVerifier,
		Rotate:          app.cfg.RefreshRotation,
		StoreTimeout:    app.cfg.StoreTimeout,
		Metrics:         app.metrics,
	}
	app.userService = &service.UserService{Store: app.db}
	app.contentService = &service.ContentService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	accessVerifier, err := jwtx.NewVerifierHS256([]byte(app.cfg.AccessSecret), app.cfg.Issuer, 0)
	if err != nil {
		return fmt.Errorf("failed to initialize access verifier: %w", err)
	}

	router := httpapi.NewRouter(
		accessVerifier,
		BuildVersion,
		app.db,
		app.metrics,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.UserService = app.userService
	router.ContentService = app.contentService
	router.BootstrapService = app.bootstrapService
	router.CookieSecure = app.cfg.CookieSecure
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
