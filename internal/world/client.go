package world

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// writeWait is the time allowed to write a message to the server.
	writeWait = 10 * time.Second

	// moveClearAfter is how long a directional movement command stays
	// active before the client halts it.
	moveClearAfter = 1 * time.Second

	// eventBufferSize is the buffer size for the event channel.
	eventBufferSize = 64
)

// message is the wire envelope exchanged with the world server.
type message struct {
	Type     string          `json:"type"`
	Name     string          `json:"name,omitempty"`
	Target   *Coordinate     `json:"target,omitempty"`
	Site     *Coordinate     `json:"site,omitempty"`
	Position *Coordinate     `json:"position,omitempty"`
	Goal     *Coordinate     `json:"goal,omitempty"`
	Sites    []Coordinate    `json:"sites,omitempty"`
	Time     TimeOfDay       `json:"time_of_day,omitempty"`
	Resting  *bool           `json:"resting,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Wire message types.
const (
	msgJoin            = "join"
	msgMove            = "move"
	msgHalt            = "halt"
	msgGoal            = "goal"
	msgRest            = "rest"
	msgWake            = "wake"
	msgSpawn           = "spawn"
	msgKick            = "kick"
	msgParticipantJoin = "participant_joined"
	msgParticipantLeft = "participant_left"
	msgTime            = "time"
	msgPosition        = "position"
	msgGoalReached     = "goal_reached"
	msgRestState       = "rest_state"
	msgRestSites       = "rest_sites"
)

// Client implements Session over a WebSocket connection to a world server.
type Client struct {
	conn   *websocket.Conn
	events chan Event
	logger zerolog.Logger

	// writeMu serializes writes to the connection.
	writeMu sync.Mutex

	// mu protects the observed world state below.
	mu           sync.RWMutex
	position     Coordinate
	timeOfDay    TimeOfDay
	participants []string
	resting      bool
	restSites    []Coordinate
	closed       bool

	haltTimer *time.Timer
	closeOnce sync.Once
}

// WebSocketDialer implements Dialer using gorilla/websocket.
type WebSocketDialer struct {
	logger zerolog.Logger
}

// NewWebSocketDialer creates a dialer for real world servers.
func NewWebSocketDialer(logger zerolog.Logger) *WebSocketDialer {
	return &WebSocketDialer{
		logger: logger.With().Str("component", "world_dialer").Logger(),
	}
}

// Dial connects to the world server at target ("host:port") and joins as
// name. Transport errors are returned unwrapped so callers can classify
// them by message content.
func (d *WebSocketDialer) Dial(ctx context.Context, target, name string) (Session, error) {
	u := url.URL{Scheme: "ws", Host: target, Path: "/session"}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:      conn,
		events:    make(chan Event, eventBufferSize),
		logger:    d.logger.With().Str("target", target).Logger(),
		timeOfDay: TimeDay,
	}

	if err := c.write(message{Type: msgJoin, Name: name}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join handshake failed: %w", err)
	}

	go c.readLoop()

	return c, nil
}

// Events returns the session event stream.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Position returns the agent's last known position.
func (c *Client) Position() Coordinate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

// TimeOfDay returns the world's current day/night phase.
func (c *Client) TimeOfDay() TimeOfDay {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeOfDay
}

// Participants returns the other participants in join order.
func (c *Client) Participants() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.participants))
	copy(out, c.participants)
	return out
}

// Resting reports whether the agent currently occupies a rest site.
func (c *Client) Resting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resting
}

// MoveTo issues a direct movement command toward the target and arms the
// one-second auto-halt.
func (c *Client) MoveTo(target Coordinate) error {
	if err := c.write(message{Type: msgMove, Target: &target}); err != nil {
		return fmt.Errorf("move command failed: %w", err)
	}

	c.mu.Lock()
	if c.haltTimer != nil {
		c.haltTimer.Stop()
	}
	c.haltTimer = time.AfterFunc(moveClearAfter, func() {
		// Best effort: a failed halt means the link is dead and the read
		// loop will surface it.
		_ = c.write(message{Type: msgHalt})
	})
	c.mu.Unlock()

	return nil
}

// SetGoal sets or clears the tracked movement goal.
func (c *Client) SetGoal(goal *Coordinate) error {
	if err := c.write(message{Type: msgGoal, Target: goal}); err != nil {
		return fmt.Errorf("goal command failed: %w", err)
	}
	return nil
}

// NearestRestSite returns the known rest site closest to center within
// radius, using horizontal Chebyshev distance.
func (c *Client) NearestRestSite(center Coordinate, radius int) (Coordinate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var best Coordinate
	bestDist := radius + 1
	for _, site := range c.restSites {
		if d := site.ChebyshevXZ(center); d < bestDist {
			best = site
			bestDist = d
		}
	}
	return best, bestDist <= radius
}

// EnterRest asks the world to put the agent to rest at the given site.
func (c *Client) EnterRest(site Coordinate) error {
	if err := c.write(message{Type: msgRest, Site: &site}); err != nil {
		return fmt.Errorf("rest command failed: %w", err)
	}
	return nil
}

// LeaveRest asks the world to wake the agent.
func (c *Client) LeaveRest() error {
	if err := c.write(message{Type: msgWake}); err != nil {
		return fmt.Errorf("wake command failed: %w", err)
	}
	return nil
}

// Close tears down the connection. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		if c.haltTimer != nil {
			c.haltTimer.Stop()
		}
		c.mu.Unlock()

		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.conn.Close()
	})
	return nil
}

// write serializes an outbound message to the connection.
func (c *Client) write(msg message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// readLoop decodes inbound messages into events until the connection
// ends. It owns the event channel and closes it on exit.
func (c *Client) readLoop() {
	defer close(c.events)

	for {
		var msg message
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.mu.RLock()
			closed := c.closed
			c.mu.RUnlock()

			if !closed {
				c.emit(ErrorEvent{Err: err})
			}
			return
		}

		c.handleMessage(msg)

		if msg.Type == msgKick {
			return
		}
	}
}

// handleMessage updates observed state and emits the matching event.
func (c *Client) handleMessage(msg message) {
	switch msg.Type {
	case msgSpawn:
		pos := Coordinate{}
		if msg.Position != nil {
			pos = *msg.Position
		}
		c.mu.Lock()
		c.position = pos
		c.mu.Unlock()
		c.emit(SpawnEvent{Position: pos})

	case msgKick:
		c.emit(DisconnectEvent{Reason: msg.Reason, Kicked: true})

	case msgParticipantJoin:
		c.mu.Lock()
		c.participants = append(c.participants, msg.Name)
		c.mu.Unlock()
		c.emit(ParticipantJoinedEvent{Name: msg.Name})

	case msgParticipantLeft:
		c.mu.Lock()
		for i, name := range c.participants {
			if name == msg.Name {
				c.participants = append(c.participants[:i], c.participants[i+1:]...)
				break
			}
		}
		remaining := len(c.participants)
		c.mu.Unlock()
		c.emit(ParticipantLeftEvent{Name: msg.Name, Remaining: remaining})

	case msgTime:
		c.mu.Lock()
		c.timeOfDay = msg.Time
		c.mu.Unlock()
		c.emit(TimeChangedEvent{Time: msg.Time})

	case msgPosition:
		if msg.Position == nil {
			return
		}
		c.mu.Lock()
		c.position = *msg.Position
		c.mu.Unlock()
		c.emit(PositionChangedEvent{Position: *msg.Position})

	case msgGoalReached:
		goal := Coordinate{}
		if msg.Goal != nil {
			goal = *msg.Goal
		}
		c.emit(GoalReachedEvent{Goal: goal})

	case msgRestState:
		if msg.Resting == nil {
			return
		}
		c.mu.Lock()
		c.resting = *msg.Resting
		c.mu.Unlock()
		c.emit(RestChangedEvent{Resting: *msg.Resting})

	case msgRestSites:
		c.mu.Lock()
		c.restSites = msg.Sites
		c.mu.Unlock()

	default:
		c.logger.Debug().Str("type", msg.Type).Msg("unknown world message type")
	}
}

// emit queues an event without blocking the read loop. A full buffer
// means the consumer stalled; dropping is preferable to deadlock because
// the controller re-derives state from the session on its periodic ticks.
func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.logger.Warn().Msg("event buffer full, dropping event")
	}
}
