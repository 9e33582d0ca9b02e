// Package server provides the HTTP API for warden: agent control,
// settings management, the activity log, health, metrics, and the
// WebSocket dashboard feed.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/warden/warden/internal/websocket"
	"github.com/warden/warden/pkg/health"
	"github.com/warden/warden/pkg/metrics"
	"github.com/warden/warden/pkg/tracing"
)

// HTTPConfig holds configuration for the HTTP server.
type HTTPConfig struct {
	// Port is the port to listen on.
	Port int
	// Token is the static API credential. Empty disables authentication.
	Token string
	// EnableCORS enables CORS support.
	EnableCORS bool
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration
	// WebSocketPath is the path for WebSocket connections (default: /ws).
	WebSocketPath string
	// EnableTracing enables OpenTelemetry tracing for HTTP requests.
	EnableTracing bool
	// Metrics is the metrics instance for recording HTTP metrics.
	Metrics *metrics.HTTPMetrics
	// ReadyChecks are the readiness checks served on /readyz.
	ReadyChecks []health.Check
}

// DefaultHTTPConfig returns sensible defaults for HTTP server configuration.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Port:           8080,
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		WebSocketPath:  "/ws",
		EnableTracing:  false,
		Metrics:        nil,
	}
}

// HTTPServer wraps the HTTP server and its route handlers.
type HTTPServer struct {
	config         HTTPConfig
	server         *http.Server
	api            *APIHandler
	wsHandler      *websocket.Handler
	metricsHandler http.Handler
	logger         zerolog.Logger
}

// NewHTTPServer creates a new HTTP server for the given API handler.
// wsHub and promHandler are optional; nil disables the corresponding
// endpoint.
func NewHTTPServer(cfg HTTPConfig, api *APIHandler, wsHub *websocket.Hub, promHandler http.Handler, logger zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		config:         cfg,
		api:            api,
		metricsHandler: promHandler,
		logger:         logger.With().Str("component", "http_server").Logger(),
	}

	if wsHub != nil {
		wsCfg := websocket.HandlerConfig{
			AllowedOrigins:  cfg.AllowedOrigins,
			Token:           cfg.Token,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		}
		s.wsHandler = websocket.NewHandlerWithConfig(wsHub, wsCfg, logger)
	}

	return s
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *HTTPServer) Start(ctx context.Context) error {
	handler := s.buildHandler()

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info().
		Str("address", addr).
		Bool("cors_enabled", s.config.EnableCORS).
		Bool("auth_enabled", s.config.Token != "").
		Msg("starting HTTP server")

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info().Msg("context cancelled, stopping HTTP server")
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}
}

// Stop gracefully stops the HTTP server.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info().Msg("stopping HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("HTTP server shutdown error")
		return err
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// handleReady runs the configured readiness checks. Degraded components
// still count as ready; only an unhealthy one fails the probe.
func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	results := health.RunAll(r.Context(), s.config.ReadyChecks...)

	status := http.StatusOK
	overall := "ready"
	if !health.Healthy(results) {
		status = http.StatusServiceUnavailable
		overall = "not ready"
	}

	writeJSON(w, status, map[string]interface{}{
		"status": overall,
		"checks": results,
	})
}

// buildHandler builds the HTTP handler with all routes and middleware.
func (s *HTTPServer) buildHandler() http.Handler {
	rootMux := http.NewServeMux()

	// API routes require the static credential
	apiMux := http.NewServeMux()
	s.api.RegisterRoutes(apiMux)
	rootMux.Handle("/api/v1/", s.authMiddleware(apiMux))

	// WebSocket handler does its own auth (query param fallback)
	if s.wsHandler != nil {
		wsPath := s.config.WebSocketPath
		if wsPath == "" {
			wsPath = "/ws"
		}
		rootMux.Handle(wsPath, s.wsHandler)
		s.logger.Info().Str("path", wsPath).Msg("WebSocket handler mounted")
	}

	if s.metricsHandler != nil {
		rootMux.Handle("/metrics", s.metricsHandler)
	}

	rootMux.HandleFunc("GET /healthz", s.api.HandleHealth)
	rootMux.HandleFunc("GET /readyz", s.handleReady)

	var handler http.Handler = rootMux

	// Add request ID middleware
	handler = s.requestIDMiddleware(handler)

	// Add logging middleware
	handler = s.loggingMiddleware(handler)

	// Add metrics middleware if configured
	if s.config.Metrics != nil {
		handler = s.metricsMiddleware(handler)
	}

	// Add tracing middleware if enabled
	if s.config.EnableTracing {
		handler = tracing.Middleware(handler)
	}

	// Add CORS middleware if enabled
	if s.config.EnableCORS {
		handler = s.corsMiddleware(handler)
	}

	// Add recovery middleware
	handler = s.recoveryMiddleware(handler)

	return handler
}
