package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Hub manages all WebSocket connections and message broadcasting. Every
// connected client receives the same feed, so there is no room or
// subscription layer.
type Hub struct {
	// connections holds all active connections
	connections map[*Connection]struct{}

	// register channel for new connections
	register chan *Connection

	// unregister channel for removing connections
	unregister chan *Connection

	// broadcast channel for messages to all connections
	broadcast chan []byte

	// replay, when set, produces the catch-up messages sent to every
	// newly registered connection before it sees live traffic
	replay func() [][]byte

	// mutex for thread-safe operations
	mu sync.RWMutex

	// logger for the hub
	logger zerolog.Logger

	// metrics
	totalConnections int64
	totalBroadcasts  int64
}

// HubConfig holds configuration for the WebSocket hub.
type HubConfig struct {
	// BroadcastBufferSize is the buffer size for broadcast channels
	BroadcastBufferSize int
}

// DefaultHubConfig returns sensible defaults for hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		BroadcastBufferSize: 256,
	}
}

// NewHub creates a new WebSocket hub.
func NewHub(logger zerolog.Logger) *Hub {
	return NewHubWithConfig(DefaultHubConfig(), logger)
}

// NewHubWithConfig creates a new WebSocket hub with custom configuration.
func NewHubWithConfig(cfg HubConfig, logger zerolog.Logger) *Hub {
	bufferSize := cfg.BroadcastBufferSize
	if bufferSize <= 0 {
		bufferSize = 256
	}

	return &Hub{
		connections: make(map[*Connection]struct{}),
		register:    make(chan *Connection, bufferSize),
		unregister:  make(chan *Connection, bufferSize),
		broadcast:   make(chan []byte, bufferSize),
		logger:      logger.With().Str("component", "websocket_hub").Logger(),
	}
}

// SetReplay installs the catch-up source for new connections. Must be
// called before Run.
func (h *Hub) SetReplay(fn func() [][]byte) {
	h.replay = fn
}

// Run starts the hub's main event loop. It blocks until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info().Msg("starting WebSocket hub")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Msg("stopping WebSocket hub")
			h.closeAllConnections()
			return

		case conn := <-h.register:
			h.handleRegister(conn)

		case conn := <-h.unregister:
			h.handleUnregister(conn)

		case message := <-h.broadcast:
			h.handleBroadcast(message)

		case <-ticker.C:
			h.logStats()
		}
	}
}

// Register registers a new connection with the hub.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection from the hub.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Broadcast sends a message to all connected clients. It never blocks;
// when the hub's buffer is full the message is dropped.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn().Msg("broadcast buffer full, dropping message")
	}
}

// BroadcastMessage serializes and broadcasts a Message to all connections.
func (h *Hub) BroadcastMessage(msg *Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// ConnectionCount returns the current number of connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// handleRegister handles a new connection registration. The new
// connection is sent the replay backlog so a freshly opened dashboard
// starts from the current state rather than an empty screen.
func (h *Hub) handleRegister(conn *Connection) {
	h.mu.Lock()
	h.connections[conn] = struct{}{}
	h.totalConnections++
	total := len(h.connections)
	h.mu.Unlock()

	if h.replay != nil {
		for _, msg := range h.replay() {
			conn.Send(msg)
		}
	}

	h.logger.Debug().
		Str("conn_id", conn.ID()).
		Int("total_connections", total).
		Msg("connection registered")
}

// handleUnregister handles a connection unregistration.
func (h *Hub) handleUnregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.connections[conn]; !ok {
		return
	}

	delete(h.connections, conn)
	conn.Close()

	h.logger.Debug().
		Str("conn_id", conn.ID()).
		Int("total_connections", len(h.connections)).
		Msg("connection unregistered")
}

// handleBroadcast handles a broadcast to all connections.
func (h *Hub) handleBroadcast(message []byte) {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.connections))
	for conn := range h.connections {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	h.totalBroadcasts++

	for _, conn := range targets {
		conn.Send(message)
	}
}

// closeAllConnections closes all active connections.
func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.connections {
		conn.Close()
	}

	h.connections = make(map[*Connection]struct{})

	h.logger.Info().Msg("all connections closed")
}

// logStats logs current hub statistics.
func (h *Hub) logStats() {
	h.mu.RLock()
	connCount := len(h.connections)
	h.mu.RUnlock()

	h.logger.Debug().
		Int("connections", connCount).
		Int64("total_connections", h.totalConnections).
		Int64("total_broadcasts", h.totalBroadcasts).
		Msg("hub statistics")
}

// Stats returns current hub statistics.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return HubStats{
		ActiveConnections: len(h.connections),
		TotalConnections:  h.totalConnections,
		TotalBroadcasts:   h.totalBroadcasts,
	}
}

// HubStats holds hub statistics.
type HubStats struct {
	ActiveConnections int   `json:"active_connections"`
	TotalConnections  int64 `json:"total_connections"`
	TotalBroadcasts   int64 `json:"total_broadcasts"`
}
