package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/chommo/shopfront/internal/shopfront/http"
	"github.com/chommo/shopfront/internal/shopfront/service"
	"github.com/chommo/shopfront/internal/shopfront/session"
	"github.com/chommo/shopfront/internal/shopfront/store"
	"github.com/chommo/shopfront/internal/shopfront/store/drivers/sqlite"
	"github.com/chommo/shopfront/pkg/platformsdk"
	"github.com/chommo/shopfront/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the storefront with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	platform *platformsdk.Client
	sessions *session.Manager

	authService         *service.Auth
	catalogService      *service.Catalog
	checkoutService     *service.Checkout
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "shopfront",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("shopfront starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"shop_id", app.cfg.ShopID,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down shopfront...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("shopfront stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

func (app *Application) initServices() {
	app.platform = platformsdk.NewClient(app.cfg.PlatformBaseURL, app.cfg.ShopID)

	app.sessions = &session.Manager{
		Sessions:   app.db.Sessions(),
		SigningKey: []byte(app.cfg.SessionSigningKey),
		TTL:        app.cfg.SessionTTL,
		Secure:     app.cfg.Env != "dev",
	}

	app.authService = &service.Auth{
		Platform:      app.platform,
		Sessions:      app.db.Sessions(),
		PublicBaseURL: app.cfg.PublicBaseURL,
		Logger:        app.logger,
	}

	app.catalogService = service.NewCatalog(app.platform, app.logger, app.cfg.CatalogCacheTTL)

	app.checkoutService = &service.Checkout{
		Platform:  app.platform,
		Sessions:  app.db.Sessions(),
		Auth:      app.authService,
		Subdomain: app.cfg.Subdomain,
		Logger:    app.logger,
	}

	// Sessions idle longer than their cookie lifetime can never be
	// resolved again; sweep them.
	app.housekeepingService = service.NewHousekeepingService(
		app.db.Sessions(),
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.SessionTTL,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.sessions, app.logger)

	router.AuthService = app.authService
	router.CatalogService = app.catalogService
	router.CheckoutService = app.checkoutService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
