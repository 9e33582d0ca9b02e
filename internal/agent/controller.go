// Package agent implements the behavior controller for the warden agent:
// connection lifecycle with failure detection, a bounded random-walk
// scheduler, and a rest/wake state machine with layered retry.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/warden/warden/internal/eventlog"
	"github.com/warden/warden/internal/store"
	"github.com/warden/warden/internal/world"
	"github.com/warden/warden/pkg/metrics"
)

// Named tasks owned by the controller. Scheduling reuses names so at
// most one instance of each is ever pending.
const (
	taskConnectTimeout = "connect-timeout"
	taskSpawnRecheck   = "spawn-recheck"
	taskBoundary       = "boundary"
	taskWatchdog       = "watchdog"
	taskRestCheck      = "rest-check"
	taskWanderStep     = "wander-step"
	taskWake           = "wake"
)

// Config holds the controller's timing and search parameters.
type Config struct {
	// ConnectTimeout is how long to wait for spawn confirmation before
	// declaring a connection attempt failed.
	ConnectTimeout time.Duration
	// SpawnRecheckDelay is the delay before the confirmatory area check
	// that covers late-arriving world state.
	SpawnRecheckDelay time.Duration
	// BoundaryInterval is the cadence of the patrol boundary check.
	BoundaryInterval time.Duration
	// WanderMinDelay and WanderMaxDelay bound the uniform random delay
	// between wander steps: [min, max).
	WanderMinDelay time.Duration
	WanderMaxDelay time.Duration
	// WanderRetryDelay is the fixed backoff after a failed movement.
	WanderRetryDelay time.Duration
	// WatchdogInterval is the cadence of the wander liveness check.
	WatchdogInterval time.Duration
	// WanderStallAfter is how long without a wander step counts as
	// starvation.
	WanderStallAfter time.Duration
	// RestCheckInterval is the cadence of the periodic rest/wake
	// re-evaluation.
	RestCheckInterval time.Duration
	// WakeCascadeOffsets are the delays of the emergency wake cascade,
	// relative to the trigger.
	WakeCascadeOffsets []time.Duration
	// RestSearchRadius is the rest site search radius in blocks.
	RestSearchRadius int
}

// DefaultConfig returns the production controller configuration.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:     10 * time.Second,
		SpawnRecheckDelay:  5 * time.Second,
		BoundaryInterval:   1 * time.Second,
		WanderMinDelay:     5 * time.Second,
		WanderMaxDelay:     8 * time.Second,
		WanderRetryDelay:   3 * time.Second,
		WatchdogInterval:   10 * time.Second,
		WanderStallAfter:   8 * time.Second,
		RestCheckInterval:  2 * time.Second,
		WakeCascadeOffsets: []time.Duration{0, 500 * time.Millisecond, 1500 * time.Millisecond, 3 * time.Second},
		RestSearchRadius:   10,
	}
}

// SettingsProvider supplies and persists the agent settings.
type SettingsProvider interface {
	Get(ctx context.Context) (store.Settings, error)
	Set(ctx context.Context, s store.Settings) error
}

// Deps are the controller's collaborators.
type Deps struct {
	Settings  SettingsProvider
	Log       *eventlog.Ring
	Publisher Publisher
	Dialer    world.Dialer
	Logger    *slog.Logger
	Metrics   *metrics.AgentMetrics
}

// Controller owns the agent's connection lifecycle, area scheduler, and
// rest scheduler, and is the sole object the API layer invokes. All
// public methods are safe to call at any time: inapplicable calls are
// no-ops and internal failures surface as log entries, never as panics
// or returned errors.
type Controller struct {
	cfg      Config
	settings SettingsProvider
	log      *eventlog.Ring
	pub      Publisher
	dialer   world.Dialer
	logger   *slog.Logger
	metrics  *metrics.AgentMetrics
	tasks    *taskScheduler

	mu      sync.Mutex
	running bool
	session world.Session
	// home is set only after spawn confirmation and cleared on any
	// teardown. Its presence distinguishes Connecting from Active.
	home *world.Coordinate
	// gen is the session generation. Every start and every teardown
	// bumps it; callbacks capture the value they were scheduled under
	// and no-op when it has moved on.
	gen uint64
	// lastWander is when the last wander step was issued, watched by the
	// liveness watchdog.
	lastWander time.Time
	// pendingRestSite is the single in-flight rest approach. A repeated
	// search overwrites it; completions for an abandoned site are
	// ignored.
	pendingRestSite *world.Coordinate
}

// New creates a Controller. Nil optional deps fall back to no-op
// implementations.
func New(cfg Config, deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Publisher == nil {
		deps.Publisher = NoopPublisher{}
	}
	if deps.Log == nil {
		deps.Log = eventlog.NewRing(0)
	}

	return &Controller{
		cfg:      cfg,
		settings: deps.Settings,
		log:      deps.Log,
		pub:      deps.Publisher,
		dialer:   deps.Dialer,
		logger:   deps.Logger.With("component", "agent_controller"),
		metrics:  deps.Metrics,
		tasks:    newTaskScheduler(),
	}
}

// Start begins a connection attempt. A no-op with a warning if already
// running; refused outright when the connect target is empty or still
// the placeholder.
func (c *Controller) Start() {
	c.mu.Lock()

	if c.running {
		c.record(eventlog.SeverityWarning, "Agent already running")
		c.mu.Unlock()
		return
	}

	settings, err := c.settings.Get(context.Background())
	if err != nil {
		c.record(eventlog.SeverityError, fmt.Sprintf("Failed to load settings: %v", err))
		c.mu.Unlock()
		return
	}

	if settings.ServerAddress == "" || settings.ServerAddress == store.PlaceholderAddress {
		c.record(eventlog.SeverityError, "Invalid server address: set a real connect target in settings before starting")
		c.mu.Unlock()
		return
	}

	c.running = true
	c.gen++
	gen := c.gen

	c.record(eventlog.SeverityInfo,
		fmt.Sprintf("Connecting to %s as %q", settings.ServerAddress, settings.AgentName))

	// If no spawn confirmation arrives in time the whole attempt is
	// rolled back.
	c.tasks.After(taskConnectTimeout, c.cfg.ConnectTimeout, func() {
		c.onConnectTimeout(gen)
	})

	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.pub.PublishStatus(snap)

	go c.connect(gen, settings)
}

// Stop tears the session down. Idempotent: stopping a stopped agent
// logs an informational entry and does nothing else. The running flag
// flips before any teardown I/O so concurrent callbacks observe
// "stopped" immediately, and teardown never fails visibly.
func (c *Controller) Stop() {
	c.mu.Lock()

	if !c.running {
		c.record(eventlog.SeverityInfo, "Agent is not running")
		c.mu.Unlock()
		return
	}

	sess := c.teardownLocked("stop")
	snap := c.snapshotLocked()
	c.record(eventlog.SeverityInfo, "Agent stopped")
	c.mu.Unlock()

	if sess != nil {
		// Clear outstanding movement and rest goals before closing;
		// errors are deliberately swallowed.
		_ = sess.SetGoal(nil)
		_ = sess.Close()
	}

	c.pub.PublishStatus(snap)
}

// UpdateSettings persists new settings and, while active, recenters the
// live patrol area without a reconnect.
func (c *Controller) UpdateSettings(s store.Settings) {
	if err := c.settings.Set(context.Background(), s); err != nil {
		c.mu.Lock()
		c.record(eventlog.SeverityError, fmt.Sprintf("Failed to save settings: %v", err))
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	if c.running && c.home != nil {
		home := s.Home
		c.home = &home
		c.record(eventlog.SeverityInfo,
			fmt.Sprintf("Settings updated; patrol recentered at (%d, %d, %d)", home.X, home.Y, home.Z))
	} else {
		c.record(eventlog.SeverityInfo, "Settings updated")
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.pub.PublishStatus(snap)
}

// ClearLog empties the event log ring.
func (c *Controller) ClearLog() {
	c.log.Clear()
	c.mu.Lock()
	c.record(eventlog.SeverityInfo, "Event log cleared")
	c.mu.Unlock()
}

// Status returns a fresh snapshot of the agent's state.
func (c *Controller) Status() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// LogEntries returns the event log contents, oldest first.
func (c *Controller) LogEntries() []eventlog.Entry {
	return c.log.Entries()
}

// connect dials the world server off the controller goroutine. The
// connect-timeout task is already armed; a slow dial that loses the race
// finds its generation stale and discards the session.
func (c *Controller) connect(gen uint64, settings store.Settings) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
	defer cancel()

	sess, err := c.dialer.Dial(ctx, settings.ServerAddress, settings.AgentName)
	if err != nil {
		c.failConnect(gen, err)
		return
	}

	c.mu.Lock()
	if !c.running || gen != c.gen {
		c.mu.Unlock()
		_ = sess.Close()
		return
	}
	c.session = sess
	c.mu.Unlock()

	go c.eventLoop(gen, sess)
}

// eventLoop dispatches session events until the stream ends.
func (c *Controller) eventLoop(gen uint64, sess world.Session) {
	for ev := range sess.Events() {
		c.handleEvent(gen, ev)
	}
}

// handleEvent is the single entry point for all session events. Events
// from a superseded session generation are discarded here, which keeps
// the "is this still relevant" check in one place.
func (c *Controller) handleEvent(gen uint64, ev world.Event) {
	c.mu.Lock()

	if !c.running || gen != c.gen {
		c.mu.Unlock()
		return
	}

	var sess world.Session

	switch ev := ev.(type) {
	case world.SpawnEvent:
		c.onSpawnLocked(gen, ev)

	case world.DisconnectEvent:
		reason := ev.Reason
		if reason == "" {
			reason = "no reason given"
		}
		c.record(eventlog.SeverityWarning, "Disconnected by server: "+reason)
		sess = c.teardownLocked("kick")

	case world.ErrorEvent:
		c.record(eventlog.SeverityError, classifyConnectError(ev.Err))
		sess = c.teardownLocked("error")

	case world.ParticipantJoinedEvent:
		c.record(eventlog.SeverityInfo, ev.Name+" joined the world")
		c.checkRestLocked(gen)

	case world.ParticipantLeftEvent:
		c.record(eventlog.SeverityInfo, ev.Name+" left the world")
		if ev.Remaining == 0 {
			// The departure signal is not trusted to be timely; the
			// cascade over-triggers an idempotent wake instead.
			c.emergencyWakeLocked(gen)
		}
		c.checkRestLocked(gen)

	case world.TimeChangedEvent:
		c.checkRestLocked(gen)

	case world.PositionChangedEvent:
		// State change only; the snapshot push below covers it.

	case world.GoalReachedEvent:
		c.onGoalReachedLocked(gen, ev)

	case world.RestChangedEvent:
		if ev.Resting {
			c.record(eventlog.SeverityInfo, "Agent is now resting")
			if c.metrics != nil {
				c.metrics.RestEntries.Inc()
			}
		} else {
			c.record(eventlog.SeverityInfo, "Agent woke up")
		}
	}

	snap := c.snapshotLocked()
	c.mu.Unlock()

	if sess != nil {
		_ = sess.SetGoal(nil)
		_ = sess.Close()
	}

	c.pub.PublishStatus(snap)
}

// onSpawnLocked finalizes a successful connection attempt: the timeout
// is disarmed, home is captured from settings at this moment, and the
// patrol schedulers start.
func (c *Controller) onSpawnLocked(gen uint64, ev world.SpawnEvent) {
	c.tasks.Cancel(taskConnectTimeout)

	settings, err := c.settings.Get(context.Background())
	if err != nil {
		// Fall back to spawning position rather than failing the whole
		// attempt over a settings read.
		c.record(eventlog.SeverityWarning, fmt.Sprintf("Failed to read settings at spawn: %v", err))
		settings.Home = ev.Position
	}
	home := settings.Home
	c.home = &home

	c.record(eventlog.SeverityInfo, fmt.Sprintf(
		"Spawned at (%d, %d, %d); patrolling around (%d, %d, %d)",
		ev.Position.X, ev.Position.Y, ev.Position.Z, home.X, home.Y, home.Z))

	if c.metrics != nil {
		c.metrics.ConnectAttempts.WithLabelValues("ok").Inc()
		c.metrics.Connected.Set(1)
	}

	c.boundaryCheckLocked()
	c.lastWander = time.Now()
	c.scheduleWanderLocked(gen)

	c.tasks.Every(taskBoundary, c.cfg.BoundaryInterval, func() { c.boundaryTick(gen) })
	c.tasks.Every(taskWatchdog, c.cfg.WatchdogInterval, func() { c.watchdogTick(gen) })
	c.tasks.Every(taskRestCheck, c.cfg.RestCheckInterval, func() { c.restTick(gen) })

	// World state can arrive late; re-check the bound once it settled.
	c.tasks.After(taskSpawnRecheck, c.cfg.SpawnRecheckDelay, func() { c.boundaryTick(gen) })
}

// onConnectTimeout rolls back a connection attempt that never produced a
// spawn confirmation.
func (c *Controller) onConnectTimeout(gen uint64) {
	c.mu.Lock()

	// home set means spawn arrived and won the race.
	if !c.running || gen != c.gen || c.home != nil {
		c.mu.Unlock()
		return
	}

	c.record(eventlog.SeverityError, "Connection timed out: no spawn confirmation from server")
	if c.metrics != nil {
		c.metrics.ConnectAttempts.WithLabelValues("timeout").Inc()
	}
	sess := c.teardownLocked("timeout")
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if sess != nil {
		_ = sess.Close()
	}
	c.pub.PublishStatus(snap)
}

// failConnect rolls back a connection attempt whose dial failed.
func (c *Controller) failConnect(gen uint64, err error) {
	c.mu.Lock()

	if !c.running || gen != c.gen {
		c.mu.Unlock()
		return
	}

	c.record(eventlog.SeverityError, classifyConnectError(err))
	if c.metrics != nil {
		c.metrics.ConnectAttempts.WithLabelValues("error").Inc()
	}
	c.teardownLocked("connect_failed")
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.pub.PublishStatus(snap)
}

// teardownLocked transitions to Idle: flips running, bumps the
// generation so in-flight callbacks go stale, cancels all named tasks,
// and detaches the session for the caller to close outside the lock.
func (c *Controller) teardownLocked(cause string) world.Session {
	sess := c.session
	c.session = nil
	c.home = nil
	c.pendingRestSite = nil
	c.running = false
	c.gen++
	c.tasks.CancelAll()

	if c.metrics != nil {
		c.metrics.Connected.Set(0)
		if cause != "stop" {
			c.metrics.Disconnects.WithLabelValues(cause).Inc()
		}
	}

	return sess
}

// record appends to the event log, mirrors to the process log, and fans
// the entry out to observers. Callers hold c.mu; the publisher contract
// forbids synchronous call-backs so this cannot deadlock.
func (c *Controller) record(severity eventlog.Severity, message string) {
	entry := c.log.Append(severity, message)

	if c.metrics != nil {
		c.metrics.LogEntries.WithLabelValues(string(severity)).Inc()
	}

	switch severity {
	case eventlog.SeverityError:
		c.logger.Error(message)
	case eventlog.SeverityWarning:
		c.logger.Warn(message)
	default:
		c.logger.Info(message)
	}

	c.pub.PublishLog(entry)
}

// snapshotLocked derives the current status snapshot.
func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Activity:     ActivityIdle,
		TimeOfDay:    world.TimeDay,
		Participants: []string{},
	}

	sess := c.session
	if !c.running || sess == nil || c.home == nil {
		return snap
	}

	snap.Connected = true
	snap.Position = sess.Position()
	snap.TimeOfDay = sess.TimeOfDay()
	snap.Participants = sess.Participants()
	snap.AreaMask = areaMask(snap.Position, *c.home)

	if sess.Resting() {
		snap.Activity = ActivitySleeping
	} else {
		snap.Activity = ActivityWandering
	}

	return snap
}

// classifyConnectError maps low-level connection errors onto the small
// set of user-facing diagnostics the dashboard shows.
func classifyConnectError(err error) string {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "no such host") || strings.Contains(msg, "lookup"):
		return "Could not resolve server address"
	case errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return "Connection timed out"
	case strings.Contains(msg, "connection refused"):
		return "Connection refused: is the server online?"
	default:
		return "Connection failed: " + err.Error()
	}
}
