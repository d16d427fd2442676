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
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"bikepulse/internal/config"
	"bikepulse/internal/dataset"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
	customMiddleware "bikepulse/internal/middleware"
	"bikepulse/internal/services"
	handlers "bikepulse/internal/transport/http"
	ws "bikepulse/internal/websocket"
	"bikepulse/pkg/contracts"
)

// Options adjust how New builds the application. The zero value loads
// config.yaml and BIKEPULSE_* variables from the working directory.
type Options struct {
	// ConfigFile overrides config.yaml discovery
	ConfigFile string
	// DatasetPath overrides dataset.path
	DatasetPath string
	// BaseDir anchors relative paths; empty means the working directory
	BaseDir string

	// Config and Logger skip loading and global logger setup (tests)
	Config *config.Config
	Logger *slog.Logger
}

// Application wires the dashboard components together
type Application struct {
	Config *config.Config
	Paths  *config.Paths
	Logger *slog.Logger

	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics

	Dataset   *dataset.Dataset
	Dashboard *services.DashboardService
	Health    *services.HealthService
	Hub       *ws.Hub

	Router *chi.Mux
	Server *http.Server

	stopOnce sync.Once
	stopErr  error
}

// New loads configuration and the dataset and builds the HTTP surface.
// A dataset that cannot be loaded is fatal.
func New(ctx context.Context, opts Options) (*Application, error) {
	start := time.Now()

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.DatasetPath != "" {
		cfg.Dataset.Path = opts.DatasetPath
	}

	paths, err := cfg.ResolvePaths(opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(cfg.Logging.Output != "console"); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	cfg.Logging.FilePath = paths.LogFile

	logger := opts.Logger
	if logger == nil {
		if logger, err = infrastructure.InitializeLogger(cfg.Logging); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.InfoContext(ctx, "application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()),
		paths.LogAttrs())

	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewDashboardMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard metrics: %w", err)
	}
	if err := infrastructure.RegisterRuntimeMetrics(providers.Meter, start); err != nil {
		return nil, fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	data, err := dataset.NewLoader(logger).Load(ctx, paths.DatasetFile)
	if err != nil {
		providers.Shutdown(ctx)
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	dashboard := services.NewDashboardService(data, metrics, logger)
	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		Dataset:       data,
		Dashboard:     dashboard,
		Health:        services.NewHealthService(dashboard, logger),
		Hub:           ws.NewHub(metrics, logger),
	}

	app.setupRouter()
	app.createServer()

	logger.InfoContext(ctx, "application initialized",
		slog.Int("records", data.Len()),
		slog.Duration("startup", time.Since(start)))
	return app, nil
}

func loadConfig(opts Options) (*config.Config, error) {
	if opts.Config != nil {
		cfg := *opts.Config
		return &cfg, cfg.Validate()
	}
	if opts.ConfigFile != "" {
		return config.LoadFrom(opts.ConfigFile)
	}
	return config.Load()
}

// setupRouter builds the route tree. The WebSocket endpoint stays outside
// the group so no middleware wraps the hijacked connection.
func (a *Application) setupRouter() {
	errHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r := chi.NewRouter()
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// Set before any Route or Mount so subrouters inherit them
	r.NotFound(errHandler.NotFound)
	r.MethodNotAllowed(errHandler.MethodNotAllowed)

	wsHandler := ws.NewHandler(a.Hub, a.Dashboard, a.Config.Security.AllowedOrigins, a.Logger)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle(config.WebSocketEndpoint, wsHandler)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer, then headers and limits
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(errHandler))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)
		r.Use(customMiddleware.Compress(5))
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}

		page := handlers.NewPageHandler(a.Dashboard, config.WebSocketEndpoint, a.Logger, errHandler)
		r.Get("/", page.ServeDashboard)

		r.Route(config.APIBasePath, func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			handlers.NewHealthHandler(a.Health, a.Logger).Routes(r)
			r.Mount("/", handlers.NewDashboardHandler(a.Dashboard, a.Logger, errHandler).Routes())
		})
	})

	r.Handle(config.MetricsEndpoint, a.OTelProviders.MetricsHandler())

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Hub.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.InfoContext(ctx, "server listening",
			slog.String("address", ln.Addr().String()),
			slog.String("url", "http://"+ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(ctx, "shutdown requested")
		return a.Stop(context.WithoutCancel(ctx))
	})
	return g.Wait()
}

// Stop closes WebSocket clients, drains HTTP requests and flushes telemetry.
// It is safe to call more than once.
func (a *Application) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
		defer cancel()

		a.Hub.Stop()

		var errs []error
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}

		a.Logger.InfoContext(ctx, "application shutdown complete")
		infrastructure.CloseLogFile()
		a.stopErr = errors.Join(errs...)
	})
	return a.stopErr
}
