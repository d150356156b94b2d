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

	httpapi "github.com/borealfin/portal/internal/portal/http"
	"github.com/borealfin/portal/internal/portal/service"
	"github.com/borealfin/portal/internal/portal/store"
	"github.com/borealfin/portal/internal/portal/store/drivers/redisfast"
	"github.com/borealfin/portal/internal/portal/store/drivers/sqlite"
	"github.com/borealfin/portal/internal/portal/upstream"
	"github.com/borealfin/portal/pkg/cryptox"
	"github.com/borealfin/portal/pkg/jwtx"
	"github.com/borealfin/portal/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the portal service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	fast   *redisfast.Store
	signer *jwtx.Signer

	// Services
	profileService      *service.ProfileService
	otpService          *service.OTPService
	sessionService      *service.SessionService
	guardService        *service.GuardService
	refreshCoordinator  *service.RefreshCoordinator
	applicationService  *service.ApplicationService
	linkedService       *service.LinkedService
	retryQueue          *service.UploadRetryQueue
	housekeepingService *service.HousekeepingService

	// Upstream clients
	staffClient *upstream.StaffClient
	esignClient *upstream.ESignClient

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "client-portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initFastTier()
	app.initSigner()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	// Rebuild the fast tier from the durable store before serving traffic.
	if err := app.sessionService.Hydrate(context.Background()); err != nil {
		app.logger.Warn("session hydration failed", "error", err)
	}

	app.housekeepingService.Start()

	app.logger.Info("portal service starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down portal service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.fast.Close(); err != nil {
		app.logger.Error("error closing fast tier", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("portal service stopped")
	return nil
}

// initDatabase initializes the durable store and applies migrations.
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

func (app *Application) initFastTier() {
	app.fast = redisfast.NewStore(redisfast.Config{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
}

// initSigner sets up the HS256 signer for portal access tokens. Without a
// configured secret an ephemeral one is generated; tokens then die with the
// process, which is fine everywhere except prod.
func (app *Application) initSigner() {
	secret := app.cfg.JWTSecret
	if secret == "" {
		secret = cryptox.MustGenerateToken(cryptox.TokenSize256)
		app.logger.Warn("PORTAL_JWT_SECRET not set, using ephemeral signing secret")
	}
	app.signer = jwtx.NewSigner(app.cfg.Issuer, []byte(secret))
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.profileService = &service.ProfileService{Store: app.db}

	app.otpService = &service.OTPService{
		Store:      app.db,
		Sender:     app.buildSender(),
		DevEchoOTP: app.cfg.DevEchoOTP,
	}

	app.sessionService = &service.SessionService{
		Store:  app.db,
		Fast:   app.fast,
		Cache:  service.NewSessionCache(),
		Signer: app.signer,
	}

	app.guardService = &service.GuardService{Markers: app.fast}

	// The refresh path gets a plain transport; retried API calls go through
	// the auth-retry transport below. Sharing one client would recurse.
	app.staffClient = upstream.NewStaffClient(app.cfg.StaffBaseURL)

	app.refreshCoordinator = &service.RefreshCoordinator{
		Upstream: app.staffClient,
		Sessions: app.sessionService,
		Invalidator: service.CacheInvalidatorFunc(func(ctx context.Context) {
			if err := app.fast.DeleteSessions(ctx); err != nil {
				app.logger.Warn("fast-tier session drop failed", "error", err)
			}
			if err := app.fast.ClearReloadMarker(ctx); err != nil {
				app.logger.Warn("reload marker drop failed", "error", err)
			}
		}),
	}

	apiClient := upstream.NewStaffClient(app.cfg.StaffBaseURL)
	apiClient.HTTPClient.Transport = &upstream.AuthRetryTransport{
		Refresher: app.refreshCoordinator,
	}

	app.linkedService = &service.LinkedService{Store: app.db}

	app.applicationService = &service.ApplicationService{
		Store:    app.db,
		Profiles: app.profileService,
		Linked:   app.linkedService,
		Sessions: app.sessionService,
		Backend:  apiClient,
	}

	app.retryQueue = &service.UploadRetryQueue{}

	app.esignClient = upstream.NewESignClient(app.cfg.ESignBaseURL)

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.SnapshotMaxAge,
	)
}

// buildSender returns the out-of-band code delivery channel. There is no
// SMS gateway wired here; delivery is the operator's integration point and
// the default just records that a code went out.
func (app *Application) buildSender() service.Sender {
	return service.SenderFunc(func(ctx context.Context, phone, code string) error {
		app.logger.Info("one-time code issued", "phone", phone)
		if app.cfg.Env == "dev" {
			app.logger.Debug("one-time code (dev only)", "code", code)
		}
		return nil
	})
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.signer, BuildVersion, app.db, app.logger)

	router.Profiles = app.profileService
	router.OTPs = app.otpService
	router.Sessions = app.sessionService
	router.Guard = app.guardService
	router.Refresh = app.refreshCoordinator
	router.Applications = app.applicationService
	router.Linked = app.linkedService
	router.Retries = app.retryQueue
	router.ESign = app.esignClient
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
