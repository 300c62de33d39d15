package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/coder4567/nwf-provider-license-api-1/internal/config"
	apierrors "github.com/coder4567/nwf-provider-license-api-1/internal/errors"
	"github.com/coder4567/nwf-provider-license-api-1/internal/events"
	"github.com/coder4567/nwf-provider-license-api-1/internal/infrastructure"
	"github.com/coder4567/nwf-provider-license-api-1/internal/issuer"
	"github.com/coder4567/nwf-provider-license-api-1/internal/license"
	"github.com/coder4567/nwf-provider-license-api-1/internal/lookaside"
	customMiddleware "github.com/coder4567/nwf-provider-license-api-1/internal/middleware"
	"github.com/coder4567/nwf-provider-license-api-1/internal/services"
	handlers "github.com/coder4567/nwf-provider-license-api-1/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.ProxyMetrics
	Services      *ServiceContainer

	store     lookaside.Store
	publisher events.Publisher
	listener  net.Listener
	serveErr  chan error
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Retrieval services.RetrievalService
	Ingest    services.IngestService
}

// NewApplication initializes the process-wide logger from cfg and builds the
// application
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(cfg, logger)
}

// New builds the application around an existing logger. Nothing listens
// until Start is called.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := config.GetPaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateProxyMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the store, issuer client and publisher and the
// two services on top of them
func (a *Application) initializeServices() error {
	store, err := lookaside.New(context.Background(), a.Config.Store, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize lookaside store: %w", err)
	}
	a.store = store

	publisher, err := events.NewPublisher(a.Config.Events)
	if err != nil {
		// Notifications are optional; ingest keeps working without them
		a.Logger.Warn("Ingest notifications disabled",
			slog.String("nats_url", a.Config.Events.NATSURL),
			slog.String("error", err.Error()))
		publisher = &events.NoopPublisher{}
	}
	a.publisher = publisher

	issuerClient := issuer.NewClient(a.Config.Issuer, a.Logger)

	if !a.Config.AdminEnabled() {
		a.Logger.Warn("Admin token not configured; ingest endpoint will reject every request")
	}

	a.Services = &ServiceContainer{
		Retrieval: services.NewRetrievalService(
			store,
			issuerClient,
			license.KeyPayloadFromConfig(a.Config.Issuer),
			a.Metrics,
			a.Logger,
		),
		Ingest: services.NewIngestService(
			a.Config.Admin.Token,
			store,
			publisher,
			a.Config.Events.Subject,
			a.Metrics,
			a.Logger,
		),
	}

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(errorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.Logger)
	r.Get(config.HealthEndpoint, healthHandler.Healthz)
	r.Method(http.MethodGet, config.MetricsEndpoint, handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	licenseHandler := handlers.NewLicenseHandler(a.Services.Retrieval, a.Logger)
	adminHandler := handlers.NewAdminHandler(a.Services.Ingest, errorHandler, a.Config.Server.MaxBodyBytes, a.Logger)

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Get(config.LicensesEndpoint+"/{id}", licenseHandler.Get)

		r.Group(func(r chi.Router) {
			if a.Config.RateLimit.Enabled {
				r.Use(customMiddleware.NewRateLimiter(
					a.Config.RateLimit.RPS,
					a.Config.RateLimit.Burst,
					a.Logger,
				).Handler)
			}
			r.Post(config.AdminLicensesEndpoint, adminHandler.Ingest)
		})
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start binds the listener and serves in the background. A bind failure is
// returned directly; later serve failures surface through Run.
func (a *Application) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln
	a.serveErr = make(chan error, 1)

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serveErr <- err
		}
		close(a.serveErr)
	}()

	a.Logger.InfoContext(ctx, "Provider license API listening",
		slog.String("address", ln.Addr().String()),
		slog.String("store_backend", a.Config.Store.Backend),
		slog.String("issuer_url", a.Config.Issuer.URL))

	return nil
}

// Addr returns the bound address once Start has succeeded
func (a *Application) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Stop drains in-flight requests and releases the publisher and telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing event publisher", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run starts the server and blocks until SIGINT/SIGTERM or a serve failure
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Received interrupt signal")
	case serveErr = <-a.serveErr:
		a.Logger.Error("Server error", slog.String("error", fmt.Sprint(serveErr)))
	}

	if err := a.Stop(context.Background()); err != nil {
		return err
	}
	return serveErr
}
