package websocket

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/warden/warden/internal/agent"
	"github.com/warden/warden/internal/eventlog"
)

// Publisher bridges the agent controller to the WebSocket feed. It
// implements agent.Publisher by broadcasting every status change and
// log entry, and it keeps the latest snapshot plus a bounded log
// backlog so new connections can be caught up immediately.
//
// All methods only marshal and hand off to the hub's buffered channels;
// they never block or call back into the controller.
type Publisher struct {
	hub    *Hub
	logger zerolog.Logger

	mu         sync.Mutex
	lastStatus *agent.Snapshot
	backlog    []eventlog.Entry
	backlogCap int
}

// NewPublisher creates a Publisher and installs its replay source on
// the hub. backlogCap bounds the log entries replayed to new
// connections; 0 uses the event log's default capacity.
func NewPublisher(hub *Hub, backlogCap int, logger zerolog.Logger) *Publisher {
	if backlogCap <= 0 {
		backlogCap = eventlog.DefaultCapacity
	}

	p := &Publisher{
		hub:        hub,
		logger:     logger.With().Str("component", "websocket_publisher").Logger(),
		backlogCap: backlogCap,
	}
	hub.SetReplay(p.replay)
	return p
}

// PublishStatus broadcasts an agent status snapshot to all clients.
func (p *Publisher) PublishStatus(snap agent.Snapshot) {
	p.mu.Lock()
	p.lastStatus = &snap
	p.mu.Unlock()

	msg, err := NewMessage(MessageTypeStatusUpdate, StatusUpdatePayload{Status: snap})
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to build status update")
		return
	}
	if err := p.hub.BroadcastMessage(msg); err != nil {
		p.logger.Error().Err(err).Msg("failed to broadcast status update")
	}
}

// PublishLog broadcasts an activity log entry to all clients.
func (p *Publisher) PublishLog(entry eventlog.Entry) {
	p.mu.Lock()
	p.backlog = append(p.backlog, entry)
	if len(p.backlog) > p.backlogCap {
		p.backlog = append(p.backlog[:0], p.backlog[len(p.backlog)-p.backlogCap:]...)
	}
	p.mu.Unlock()

	msg, err := NewMessage(MessageTypeLogEntry, LogEntryPayload{Entry: entry})
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to build log entry message")
		return
	}
	if err := p.hub.BroadcastMessage(msg); err != nil {
		p.logger.Error().Err(err).Msg("failed to broadcast log entry")
	}
}

// ClearBacklog drops the replay backlog. Called when the activity log
// is cleared so new connections don't replay discarded entries.
func (p *Publisher) ClearBacklog() {
	p.mu.Lock()
	p.backlog = nil
	p.mu.Unlock()
}

// replay produces the catch-up frames for a new connection: the current
// status snapshot followed by the buffered log entries in order.
func (p *Publisher) replay() [][]byte {
	p.mu.Lock()
	status := p.lastStatus
	backlog := make([]eventlog.Entry, len(p.backlog))
	copy(backlog, p.backlog)
	p.mu.Unlock()

	var frames [][]byte
	if status != nil {
		if msg, err := NewMessage(MessageTypeStatusUpdate, StatusUpdatePayload{Status: *status}); err == nil {
			if data, err := msg.Bytes(); err == nil {
				frames = append(frames, data)
			}
		}
	}
	for _, entry := range backlog {
		if msg, err := NewMessage(MessageTypeLogEntry, LogEntryPayload{Entry: entry}); err == nil {
			if data, err := msg.Bytes(); err == nil {
				frames = append(frames, data)
			}
		}
	}
	return frames
}
