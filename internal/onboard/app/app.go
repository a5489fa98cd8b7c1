package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/onboard/internal/onboard/delivery"
	httpapi "github.com/aussiebroadwan/onboard/internal/onboard/http"
	"github.com/aussiebroadwan/onboard/internal/onboard/metrics"
	"github.com/aussiebroadwan/onboard/internal/onboard/service"
	"github.com/aussiebroadwan/onboard/internal/onboard/store"
	"github.com/aussiebroadwan/onboard/internal/onboard/store/drivers/postgres"
	"github.com/aussiebroadwan/onboard/internal/onboard/store/drivers/sqlite"
	"github.com/aussiebroadwan/onboard/pkg/cryptox"
	"github.com/aussiebroadwan/onboard/pkg/jwtx"
	"github.com/aussiebroadwan/onboard/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the onboard service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	hasher   *cryptox.PasswordHasher
	signer   *jwtx.EdDSASigner
	verifier *jwtx.EdDSAVerifier
	sender   delivery.Sender
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Services
	registrationService  *service.RegistrationService
	verificationService  *service.VerificationService
	passwordResetService *service.PasswordResetService
	housekeepingService  *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "onboard-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSecurity(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	sender, err := delivery.New(cfg.Delivery, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize otp delivery: %w", err)
	}
	app.sender = sender
	app.logger.Info("otp delivery configured", "driver", cfg.Delivery.Driver)

	app.initMetrics()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("onboard service starting", "port", app.cfg.Port, "version", BuildVersion)

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
		if err != nil && err != http.ErrServerClosed {
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
	app.logger.Info("shutting down onboard service...")

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

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Broker-backed senders hold a connection
	if closer, ok := app.sender.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			app.logger.Error("error closing otp sender", "error", err)
		}
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("onboard service stopped")
	return nil
}

// Handler returns the HTTP handler serving every route.
func (app *Application) Handler() http.Handler {
	return app.router
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(context.Background(), app.cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initSecurity loads the pepper and the reset ticket key
func (app *Application) initSecurity() error {
	pepper, err := cryptox.LoadPepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = &cryptox.PasswordHasher{
		Algorithm: app.cfg.PasswordHashAlgorithm,
		Pepper:    pepper,
	}

	signer, err := jwtx.LoadOrCreateEdDSA(app.cfg.TicketKeyFile)
	if err != nil {
		return fmt.Errorf("failed to initialize ticket key: %w", err)
	}
	app.signer = signer
	app.verifier = jwtx.NewVerifierEdDSA(signer, app.cfg.Issuer)

	if app.cfg.TicketKeyFile == "" {
		app.logger.Warn("using an ephemeral ticket key, reset tickets will not survive a restart")
	}
	app.logger.Info("security initialized",
		"password_algorithm", string(app.cfg.PasswordHashAlgorithm),
		"ticket_kid", signer.KID(),
	)
	return nil
}

func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	policy := service.OTPPolicy{
		Digits:      app.cfg.OTPDigits,
		TTL:         app.cfg.OTPTTL,
		MaxAttempts: app.cfg.OTPMaxAttempts,
	}

	app.registrationService = &service.RegistrationService{
		Store:   app.db,
		Hasher:  app.hasher,
		Sender:  app.sender,
		Metrics: app.metrics,
		OTP:     policy,
	}
	app.verificationService = &service.VerificationService{
		Store:   app.db,
		Sender:  app.sender,
		Metrics: app.metrics,
		OTP:     policy,
	}
	app.passwordResetService = &service.PasswordResetService{
		Store:     app.db,
		Hasher:    app.hasher,
		Sender:    app.sender,
		Metrics:   app.metrics,
		OTP:       policy,
		Signer:    app.signer,
		Verifier:  app.verifier,
		Issuer:    app.cfg.Issuer,
		TicketTTL: app.cfg.ResetTicketTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.OTPRetention,
	)
	app.housekeepingService.Metrics = app.metrics
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		BuildVersion,
		app.db,
		app.metrics,
		app.registry,
		app.logger,
	)

	// Wire services to router
	router.RegistrationService = app.registrationService
	router.VerificationService = app.verificationService
	router.PasswordResetService = app.passwordResetService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
