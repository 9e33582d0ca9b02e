package websocket

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler handles WebSocket upgrade requests and connection management.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	token    string
	logger   zerolog.Logger
}

// HandlerConfig configures the WebSocket handler.
type HandlerConfig struct {
	// AllowedOrigins is a list of allowed origins. Use "*" to allow all.
	AllowedOrigins []string
	// Token is the static credential required to connect. Empty allows
	// all connections.
	Token string
	// ReadBufferSize is the buffer size for reading messages.
	ReadBufferSize int
	// WriteBufferSize is the buffer size for writing messages.
	WriteBufferSize int
}

// DefaultHandlerConfig returns sensible defaults for handler configuration.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		AllowedOrigins:  []string{"*"},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return NewHandlerWithConfig(hub, DefaultHandlerConfig(), logger)
}

// NewHandlerWithConfig creates a new WebSocket handler with custom configuration.
func NewHandlerWithConfig(hub *Hub, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	h := &Handler{
		hub:    hub,
		token:  cfg.Token,
		logger: logger.With().Str("component", "websocket_handler").Logger(),
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     makeOriginChecker(cfg.AllowedOrigins),
	}

	return h
}

// makeOriginChecker creates an origin checking function based on allowed origins.
func makeOriginChecker(allowedOrigins []string) func(*http.Request) bool {
	// If wildcard is present, allow all origins
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(r *http.Request) bool {
				return true
			}
		}
	}

	// Build a set for O(1) lookup
	allowed := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Allow requests without origin (e.g., native apps)
		}
		return allowed[origin]
	}
}

// authenticate validates the static credential on the upgrade request.
// The token is read from the Authorization header, with a query
// parameter fallback for browser WebSocket clients that cannot set
// headers.
func (h *Handler) authenticate(r *http.Request) bool {
	if h.token == "" {
		return true
	}

	token := ""
	authHeader := r.Header.Get("Authorization")
	const bearerPrefix = "Bearer "
	if strings.HasPrefix(authHeader, bearerPrefix) {
		token = strings.TrimPrefix(authHeader, bearerPrefix)
	} else {
		token = r.URL.Query().Get("token")
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}

// ServeHTTP upgrades HTTP connections to WebSocket and handles messages.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.authenticate(r) {
		h.logger.Debug().Str("remote_addr", r.RemoteAddr).Msg("authentication failed")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Upgrade the HTTP connection to WebSocket
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("failed to upgrade connection")
		return
	}

	conn := NewConnection(ws, h.hub, h.logger)

	// Register connection with hub
	h.hub.Register(conn)

	h.logger.Info().
		Str("conn_id", conn.ID()).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	// Start pumps in goroutines
	go conn.WritePump()
	go conn.ReadPump()
}
