package main

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

	"tracker.transitlive.org/internal/appconf"
	"tracker.transitlive.org/internal/clock"
	"tracker.transitlive.org/internal/logging"
	"tracker.transitlive.org/internal/metrics"
	"tracker.transitlive.org/internal/otp"
	"tracker.transitlive.org/internal/report"
	"tracker.transitlive.org/internal/restapi"
	"tracker.transitlive.org/internal/tracker"
)

const version = "1.0.0"

// Application holds the wired core of the service.
type Application struct {
	Config  appconf.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Service *tracker.Service
}

// BuildApplication wires the upstream client and the pipeline from cfg.
func BuildApplication(cfg appconf.Config) (*Application, error) {
	logger := logging.NewLogger(cfg.Verbose)
	m := metrics.New()

	client, err := otp.NewClient(otp.Options{
		Endpoint: cfg.UpstreamURL,
		Timeout:  cfg.UpstreamTimeout,
		ProxyURL: cfg.ProxyURL,
		Headers:  cfg.Headers,
		Metrics:  m,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream client: %w", err)
	}

	service := tracker.NewService(client, clock.RealClock{}, logger, m, tracker.Config{
		Train: tracker.DatasetConfig{
			Bounds: cfg.Coverage.Train.Bounds,
			Modes:  cfg.Coverage.Train.Modes,
		},
		Bus: tracker.DatasetConfig{
			Bounds: cfg.Coverage.Bus.Bounds,
			Modes:  cfg.Coverage.Bus.Modes,
			Tiled:  true,
		},
		FreshnessWindow: cfg.FreshnessWindow,
		TripConcurrency: cfg.TripConcurrency,
	})

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Service: service,
	}, nil
}

// CreateServer builds the HTTP server around the application's handler chain.
func CreateServer(app *Application) *http.Server {
	api := &restapi.RestAPI{
		Source:       app.Service,
		Logger:       app.Logger,
		Metrics:      app.Metrics,
		Clock:        clock.RealClock{},
		Env:          app.Config.Env.String(),
		Version:      version,
		CacheSeconds: int(app.Config.FreshnessWindow.Seconds()),
		RateLimit:    app.Config.RateLimit,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", app.Config.Port),
		Handler:      api.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func Run(app *Application, srv *http.Server) error {
	shutdownErr := make(chan error, 1)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit

		app.Logger.Info("shutting down", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(ctx)
	}()

	app.Logger.Info("starting server",
		slog.String("addr", srv.Addr),
		slog.String("env", app.Config.Env.String()),
		slog.String("version", version))

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownErr
}

func main() {
	cfg, err := appconf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := report.Setup(cfg.SentryDSN, cfg.Env, version); err != nil {
		fmt.Fprintf(os.Stderr, "error reporting setup failed: %v\n", err)
		os.Exit(1)
	}
	defer report.Flush()

	app, err := BuildApplication(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}

	if err := Run(app, CreateServer(app)); err != nil {
		logging.LogError(app.Logger, "server error", err)
		os.Exit(1)
	}
}
