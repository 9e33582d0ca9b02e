// Package main is the entry point for the warden service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/warden/warden/internal/agent"
	"github.com/warden/warden/internal/config"
	"github.com/warden/warden/internal/eventlog"
	"github.com/warden/warden/internal/server"
	"github.com/warden/warden/internal/store"
	"github.com/warden/warden/internal/websocket"
	"github.com/warden/warden/internal/world"
	"github.com/warden/warden/pkg/health"
	"github.com/warden/warden/pkg/log"
	"github.com/warden/warden/pkg/metrics"
	"github.com/warden/warden/pkg/tracing"
)

// Build information, set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootstrap := log.New("info", "json").With().Str("service", "warden").Logger()
		bootstrap.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize logger
	logger := setupLogger(cfg)
	zlog.Logger = logger

	logger.Info().
		Str("version", version).
		Str("commit", commit).
		Str("build_time", buildTime).
		Str("go_version", runtime.Version()).
		Msg("starting warden")

	// Create root context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Initialize metrics
	appMetrics := metrics.New()
	logger.Info().Msg("metrics initialized")

	// Initialize tracing
	var tracer *tracing.Tracer
	if cfg.Observability.TracingEnabled && cfg.Observability.TracingEndpoint != "" {
		tracingCfg := tracing.Config{
			ServiceName:    "warden",
			ServiceVersion: version,
			Endpoint:       cfg.Observability.TracingEndpoint,
			Insecure:       cfg.Observability.TracingInsecure,
			SampleRate:     cfg.Observability.TracingSampleRate,
			Environment:    cfg.Observability.Environment,
			Enabled:        true,
		}
		tracer, err = tracing.InitTracer(tracingCfg)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize tracing - continuing without tracing")
		} else {
			logger.Info().
				Str("endpoint", cfg.Observability.TracingEndpoint).
				Float64("sample_rate", cfg.Observability.TracingSampleRate).
				Msg("tracing initialized")
		}
	} else {
		logger.Info().Msg("tracing disabled")
	}

	// Open settings database
	logger.Info().Str("path", cfg.Database.Path).Msg("opening settings database")
	db, err := store.Open(ctx, store.DefaultConfig(cfg.Database.Path))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open settings database")
	}
	defer db.Close()

	settingsRepo := store.NewSettingsRepo(db)

	// Create WebSocket hub and feed publisher for the dashboard
	wsHub := websocket.NewHub(logger)
	wsPublisher := websocket.NewPublisher(wsHub, eventlog.DefaultCapacity, logger)

	// Create the agent controller
	controller := agent.New(agent.DefaultConfig(), agent.Deps{
		Settings:  settingsRepo,
		Log:       eventlog.NewRing(eventlog.DefaultCapacity),
		Publisher: wsPublisher,
		Dialer:    world.NewWebSocketDialer(logger),
		Logger:    log.NewSlog(cfg.Log.Level, os.Stdout).With("service", "warden"),
		Metrics:   appMetrics.Agent,
	})

	// Create the HTTP API
	apiHandler := server.NewAPIHandler(controller, settingsRepo, wsPublisher, logger)

	httpConfig := server.DefaultHTTPConfig()
	httpConfig.Port = cfg.Server.HTTPPort
	httpConfig.Token = cfg.Auth.Token
	httpConfig.AllowedOrigins = cfg.Server.AllowedOrigins
	httpConfig.EnableTracing = tracer != nil
	httpConfig.Metrics = appMetrics.HTTP
	httpConfig.ReadyChecks = []health.Check{
		health.NewStoreCheck(db),
		health.NewFeedCheck(wsHub),
	}

	httpServer := server.NewHTTPServer(httpConfig, apiHandler, wsHub, appMetrics.Handler(), logger)

	// Channel to collect errors from servers
	errCh := make(chan error, 2)

	// Start WebSocket hub
	go func() {
		wsHub.Run(ctx)
	}()

	// Start HTTP server
	go func() {
		if err := httpServer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info().
		Int("http_port", cfg.Server.HTTPPort).
		Bool("auth_enabled", cfg.AuthEnabled()).
		Msg("warden started")

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
	}

	// Initiate graceful shutdown
	logger.Info().Msg("initiating graceful shutdown")
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	// Stop the agent before tearing the servers down so the final status
	// still reaches connected dashboards.
	controller.Stop()

	// Shutdown tracer (to flush any pending spans)
	if tracer != nil {
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("tracer shutdown error")
			shutdownErr = err
		} else {
			logger.Info().Msg("tracer shutdown complete")
		}
	}

	// Shutdown HTTP server
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
		shutdownErr = err
	}

	if shutdownErr != nil {
		logger.Error().Msg("shutdown completed with errors")
		os.Exit(1)
	}

	logger.Info().Msg("shutdown completed successfully")
}

// setupLogger initializes the zerolog logger.
func setupLogger(cfg *config.Config) zerolog.Logger {
	logger := log.New(cfg.Log.Level, cfg.Log.Format)
	return logger.With().Str("service", "warden").Logger()
}
