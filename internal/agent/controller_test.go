package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden/warden/internal/eventlog"
	"github.com/warden/warden/internal/store"
	"github.com/warden/warden/internal/world"
)

// fakeSettings is an in-memory SettingsProvider.
type fakeSettings struct {
	mu       sync.Mutex
	settings store.Settings
	getErr   error
	setErr   error
}

func newFakeSettings(s store.Settings) *fakeSettings {
	return &fakeSettings{settings: s}
}

func (f *fakeSettings) Get(ctx context.Context) (store.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return store.Settings{}, f.getErr
	}
	return f.settings, nil
}

func (f *fakeSettings) Set(ctx context.Context, s store.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.settings = s
	return nil
}

// fakeSession is a scriptable world.Session.
type fakeSession struct {
	mu           sync.Mutex
	events       chan world.Event
	closed       bool
	position     world.Coordinate
	timeOfDay    world.TimeOfDay
	participants []string
	resting      bool

	restSite    world.Coordinate
	restSiteOK  bool
	moveErr     error
	enterErr    error
	leaveErr    error
	moves       []world.Coordinate
	goals       []*world.Coordinate
	restEntries int
	restLeaves  int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		events:    make(chan world.Event, 64),
		timeOfDay: world.TimeDay,
	}
}

func (f *fakeSession) Events() <-chan world.Event { return f.events }

func (f *fakeSession) Position() world.Coordinate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *fakeSession) TimeOfDay() world.TimeOfDay {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timeOfDay
}

func (f *fakeSession) Participants() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.participants...)
}

func (f *fakeSession) Resting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resting
}

func (f *fakeSession) MoveTo(target world.Coordinate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moves = append(f.moves, target)
	f.position = target
	return nil
}

func (f *fakeSession) SetGoal(goal *world.Coordinate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.goals = append(f.goals, goal)
	return nil
}

func (f *fakeSession) NearestRestSite(center world.Coordinate, radius int) (world.Coordinate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.restSite, f.restSiteOK
}

func (f *fakeSession) EnterRest(site world.Coordinate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enterErr != nil {
		return f.enterErr
	}
	f.restEntries++
	f.resting = true
	return nil
}

func (f *fakeSession) LeaveRest() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.leaveErr != nil {
		return f.leaveErr
	}
	f.restLeaves++
	f.resting = false
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

func (f *fakeSession) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSession) moveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moves)
}

func (f *fakeSession) lastMove() world.Coordinate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.moves[len(f.moves)-1]
}

func (f *fakeSession) leaveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.restLeaves
}

func (f *fakeSession) enterCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.restEntries
}

func (f *fakeSession) set(fn func(*fakeSession)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// fakeDialer hands out a prepared session or an error.
type fakeDialer struct {
	mu      sync.Mutex
	session *fakeSession
	err     error
	dials   int
}

func (d *fakeDialer) Dial(ctx context.Context, target, name string) (world.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.err != nil {
		return nil, d.err
	}
	return d.session, nil
}

// capturePublisher records everything it is handed.
type capturePublisher struct {
	mu        sync.Mutex
	snapshots []Snapshot
	entries   []eventlog.Entry
}

func (p *capturePublisher) PublishStatus(snap Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snap)
}

func (p *capturePublisher) PublishLog(entry eventlog.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entry)
}

func (p *capturePublisher) lastSnapshot() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.snapshots) == 0 {
		return Snapshot{}, false
	}
	return p.snapshots[len(p.snapshots)-1], true
}

// testConfig compresses all intervals so tests run in milliseconds.
func testConfig() Config {
	return Config{
		ConnectTimeout:     200 * time.Millisecond,
		SpawnRecheckDelay:  50 * time.Millisecond,
		BoundaryInterval:   10 * time.Millisecond,
		WanderMinDelay:     5 * time.Millisecond,
		WanderMaxDelay:     10 * time.Millisecond,
		WanderRetryDelay:   10 * time.Millisecond,
		WatchdogInterval:   20 * time.Millisecond,
		WanderStallAfter:   30 * time.Millisecond,
		RestCheckInterval:  10 * time.Millisecond,
		WakeCascadeOffsets: []time.Duration{0, 5 * time.Millisecond, 15 * time.Millisecond},
		RestSearchRadius:   10,
	}
}

func validSettings() store.Settings {
	return store.Settings{
		ServerAddress: "play.example.com:25565",
		AgentName:     "warden",
		Home:          world.Coordinate{X: 100, Y: 64, Z: -40},
	}
}

func newTestController(t *testing.T, settings *fakeSettings, dialer world.Dialer) (*Controller, *capturePublisher) {
	return newTestControllerWithConfig(t, testConfig(), settings, dialer)
}

func newTestControllerWithConfig(t *testing.T, cfg Config, settings *fakeSettings, dialer world.Dialer) (*Controller, *capturePublisher) {
	t.Helper()
	pub := &capturePublisher{}
	c := New(cfg, Deps{
		Settings:  settings,
		Log:       eventlog.NewRing(eventlog.DefaultCapacity),
		Publisher: pub,
		Dialer:    dialer,
	})
	t.Cleanup(c.Stop)
	return c, pub
}

// startAndSpawn runs the full start flow up to spawn confirmation.
func startAndSpawn(t *testing.T, c *Controller, sess *fakeSession, spawnAt world.Coordinate) {
	t.Helper()
	sess.set(func(s *fakeSession) { s.position = spawnAt })
	c.Start()
	sess.events <- world.SpawnEvent{Position: spawnAt}
	require.Eventually(t, func() bool {
		return c.Status().Connected
	}, time.Second, 5*time.Millisecond)
}

func logMessages(c *Controller) []string {
	entries := c.LogEntries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func requireLogContains(t *testing.T, c *Controller, substr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, msg := range logMessages(c) {
			if strings.Contains(msg, substr) {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond, "log never contained %q, got %v", substr, logMessages(c))
}

func TestStartRefusesPlaceholderAddress(t *testing.T) {
	settings := newFakeSettings(store.DefaultSettings())
	dialer := &fakeDialer{session: newFakeSession()}
	c, _ := newTestController(t, settings, dialer)

	c.Start()

	requireLogContains(t, c, "Invalid server address")
	assert.False(t, c.Status().Connected)

	dialer.mu.Lock()
	defer dialer.mu.Unlock()
	assert.Zero(t, dialer.dials, "no connection attempt should be made")
}

func TestStartRefusesEmptyAddress(t *testing.T) {
	s := validSettings()
	s.ServerAddress = ""
	settings := newFakeSettings(s)
	c, _ := newTestController(t, settings, &fakeDialer{session: newFakeSession()})

	c.Start()

	requireLogContains(t, c, "Invalid server address")
	assert.False(t, c.Status().Connected)
}

func TestStartWhileRunningWarns(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	startAndSpawn(t, c, sess, validSettings().Home)
	c.Start()

	requireLogContains(t, c, "Agent already running")
	assert.True(t, c.Status().Connected)
}

func TestStopWhenNotRunningIsNoop(t *testing.T) {
	settings := newFakeSettings(validSettings())
	c, _ := newTestController(t, settings, &fakeDialer{session: newFakeSession()})

	c.Stop()

	requireLogContains(t, c, "Agent is not running")
	assert.False(t, c.Status().Connected)
}

func TestConnectRefusedRollsBack(t *testing.T) {
	settings := newFakeSettings(validSettings())
	dialer := &fakeDialer{err: errors.New("dial tcp: connection refused")}
	c, _ := newTestController(t, settings, dialer)

	c.Start()

	requireLogContains(t, c, "Connection refused: is the server online?")
	require.Eventually(t, func() bool {
		return !c.Status().Connected
	}, time.Second, 5*time.Millisecond)

	// A fresh start is possible after rollback
	c.Start()
	requireLogContains(t, c, "Connecting to play.example.com:25565")
}

func TestConnectErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unresolvable host", errors.New("lookup play.example.com: no such host"), "Could not resolve server address"},
		{"timeout", context.DeadlineExceeded, "Connection timed out"},
		{"refused", errors.New("connect: connection refused"), "Connection refused: is the server online?"},
		{"other", errors.New("protocol mismatch"), "Connection failed: protocol mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyConnectError(tt.err))
		})
	}
}

func TestConnectTimeoutWithoutSpawn(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	c.Start()
	// Never send a spawn event

	requireLogContains(t, c, "Connection timed out: no spawn confirmation")
	require.Eventually(t, func() bool {
		return sess.isClosed()
	}, time.Second, 5*time.Millisecond)
	assert.False(t, c.Status().Connected)
}

func TestSpawnActivatesAndWanders(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	home := validSettings().Home
	startAndSpawn(t, c, sess, home)

	snap := c.Status()
	assert.True(t, snap.Connected)
	assert.Equal(t, ActivityWandering, snap.Activity)

	// Wander steps land inside the 3x3 area around home
	require.Eventually(t, func() bool {
		return sess.moveCount() >= 3
	}, time.Second, 5*time.Millisecond)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	for _, move := range sess.moves {
		assert.LessOrEqual(t, move.ChebyshevXZ(home), 1, "wander step left the patrol area: %+v", move)
		assert.Equal(t, home.Y, move.Y)
	}
}

func TestBoundaryCorrectionReturnsHome(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()

	// Park the wander chain so only the boundary tick moves the agent.
	cfg := testConfig()
	cfg.WanderMinDelay = time.Hour
	cfg.WanderMaxDelay = time.Hour
	cfg.WanderStallAfter = time.Hour
	c, _ := newTestControllerWithConfig(t, cfg, settings, &fakeDialer{session: sess})

	home := validSettings().Home
	startAndSpawn(t, c, sess, home)

	// Shove the agent far outside the patrol area
	sess.set(func(s *fakeSession) {
		s.moveErr = nil
		s.position = home.Offset(8, 0, 3)
	})

	requireLogContains(t, c, "Outside patrol area; returning home")
	require.Eventually(t, func() bool {
		return sess.Position().ChebyshevXZ(home) <= 1
	}, time.Second, 5*time.Millisecond)
}

func TestAreaMaskSingleCell(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	home := validSettings().Home
	startAndSpawn(t, c, sess, home)

	snap := c.Status()
	count := 0
	for _, cell := range snap.AreaMask {
		if cell {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one cell set while connected")
	assert.True(t, snap.AreaMask[4], "agent at home occupies the center cell")
}

func TestAreaMaskOffsets(t *testing.T) {
	home := world.Coordinate{X: 0, Y: 64, Z: 0}

	tests := []struct {
		name string
		pos  world.Coordinate
		idx  int
	}{
		{"center", world.Coordinate{Y: 64}, 4},
		{"north west", world.Coordinate{X: -1, Y: 64, Z: -1}, 0},
		{"south east", world.Coordinate{X: 1, Y: 64, Z: 1}, 8},
		{"east clamped", world.Coordinate{X: 12, Y: 64, Z: 0}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := areaMask(tt.pos, home)
			for i, cell := range mask {
				assert.Equal(t, i == tt.idx, cell, "cell %d", i)
			}
		})
	}
}

func TestDisconnectByServerTearsDown(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	startAndSpawn(t, c, sess, validSettings().Home)
	sess.events <- world.DisconnectEvent{Reason: "server restarting", Kicked: true}

	requireLogContains(t, c, "Disconnected by server: server restarting")
	require.Eventually(t, func() bool {
		return !c.Status().Connected && sess.isClosed()
	}, time.Second, 5*time.Millisecond)
}

func TestStopTearsDownCompletely(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, pub := newTestController(t, settings, &fakeDialer{session: sess})

	startAndSpawn(t, c, sess, validSettings().Home)
	c.Stop()

	requireLogContains(t, c, "Agent stopped")
	assert.True(t, sess.isClosed())
	assert.False(t, c.Status().Connected)

	snap, ok := pub.lastSnapshot()
	require.True(t, ok)
	assert.False(t, snap.Connected)
	assert.Equal(t, ActivityIdle, snap.Activity)

	// Goals were cleared before close
	sess.mu.Lock()
	defer sess.mu.Unlock()
	require.NotEmpty(t, sess.goals)
	assert.Nil(t, sess.goals[len(sess.goals)-1])
}

func TestRestSeekAndEnter(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	home := validSettings().Home
	site := home.Offset(3, 0, 2)
	sess.set(func(s *fakeSession) {
		s.restSite = site
		s.restSiteOK = true
	})

	startAndSpawn(t, c, sess, home)

	// Night falls with someone else around
	sess.set(func(s *fakeSession) {
		s.timeOfDay = world.TimeNight
		s.participants = []string{"alice"}
	})
	sess.events <- world.TimeChangedEvent{Time: world.TimeNight}

	requireLogContains(t, c, "Heading to rest site")

	// Arriving at the site enters rest
	sess.events <- world.GoalReachedEvent{Goal: site}
	require.Eventually(t, func() bool {
		return sess.enterCount() == 1
	}, time.Second, 5*time.Millisecond)

	sess.events <- world.RestChangedEvent{Resting: true}
	require.Eventually(t, func() bool {
		return c.Status().Activity == ActivitySleeping
	}, time.Second, 5*time.Millisecond)
}

func TestRestSearchMissLogsAndRetries(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	startAndSpawn(t, c, sess, validSettings().Home)

	sess.set(func(s *fakeSession) {
		s.timeOfDay = world.TimeNight
		s.participants = []string{"alice"}
		s.restSiteOK = false
	})
	sess.events <- world.TimeChangedEvent{Time: world.TimeNight}

	requireLogContains(t, c, "No rest site within 10 blocks")
	assert.Zero(t, sess.enterCount())
}

func TestStaleGoalCompletionIgnored(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	home := validSettings().Home
	startAndSpawn(t, c, sess, home)

	// A completion with no pending rest approach must not enter rest
	sess.events <- world.GoalReachedEvent{Goal: home.Offset(2, 0, 2)}

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, sess.enterCount())
}

func TestEmergencyWakeOnLastDeparture(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	startAndSpawn(t, c, sess, validSettings().Home)

	sess.set(func(s *fakeSession) {
		s.timeOfDay = world.TimeNight
		s.resting = true
		s.participants = nil
	})
	sess.events <- world.ParticipantLeftEvent{Name: "alice", Remaining: 0}

	require.Eventually(t, func() bool {
		return sess.leaveCount() >= 1
	}, time.Second, 5*time.Millisecond)
	assert.False(t, sess.Resting())
}

func TestEmergencyWakeCascadeRetriesFailures(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	startAndSpawn(t, c, sess, validSettings().Home)

	// First wake attempt fails; a later cascade attempt succeeds
	sess.set(func(s *fakeSession) {
		s.timeOfDay = world.TimeNight
		s.resting = true
		s.participants = nil
		s.leaveErr = errors.New("still falling asleep")
	})
	sess.events <- world.ParticipantLeftEvent{Name: "alice", Remaining: 0}

	requireLogContains(t, c, "Wake attempt failed")

	sess.set(func(s *fakeSession) { s.leaveErr = nil })
	require.Eventually(t, func() bool {
		return !sess.Resting()
	}, time.Second, 5*time.Millisecond)
}

func TestStandardWakeAtDaytime(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	startAndSpawn(t, c, sess, validSettings().Home)

	sess.set(func(s *fakeSession) {
		s.resting = true
		s.participants = []string{"alice"}
		s.timeOfDay = world.TimeDay
	})
	sess.events <- world.TimeChangedEvent{Time: world.TimeDay}

	require.Eventually(t, func() bool {
		return sess.leaveCount() >= 1 && !sess.Resting()
	}, time.Second, 5*time.Millisecond)
}

func TestPeriodicCheckCatchesMissedWake(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	startAndSpawn(t, c, sess, validSettings().Home)

	// Flip state directly without any event; only the periodic check can
	// notice.
	sess.set(func(s *fakeSession) {
		s.resting = true
		s.participants = nil
		s.timeOfDay = world.TimeNight
	})

	require.Eventually(t, func() bool {
		return !sess.Resting()
	}, time.Second, 5*time.Millisecond)
}

func TestUpdateSettingsRecentersLivePatrol(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	startAndSpawn(t, c, sess, validSettings().Home)

	updated := validSettings()
	updated.Home = world.Coordinate{X: 500, Y: 70, Z: 500}
	c.UpdateSettings(updated)

	requireLogContains(t, c, "patrol recentered at (500, 70, 500)")

	// The boundary check now pulls the agent toward the new home
	require.Eventually(t, func() bool {
		return sess.Position().ChebyshevXZ(updated.Home) <= 1
	}, time.Second, 5*time.Millisecond)

	persisted, err := settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, updated.Home, persisted.Home)
}

func TestUpdateSettingsWhileStopped(t *testing.T) {
	settings := newFakeSettings(validSettings())
	c, _ := newTestController(t, settings, &fakeDialer{session: newFakeSession()})

	updated := validSettings()
	updated.AgentName = "other"
	c.UpdateSettings(updated)

	requireLogContains(t, c, "Settings updated")
	persisted, err := settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "other", persisted.AgentName)
}

func TestClearLog(t *testing.T) {
	settings := newFakeSettings(validSettings())
	c, _ := newTestController(t, settings, &fakeDialer{session: newFakeSession()})

	c.Stop() // produces an entry
	c.ClearLog()

	msgs := logMessages(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Event log cleared", msgs[0])
}

func TestWatchdogRestartsStalledWander(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	home := validSettings().Home
	startAndSpawn(t, c, sess, home)

	// Break movement so the wander chain keeps failing, then heal it and
	// rely on retries/watchdog to resume.
	sess.set(func(s *fakeSession) { s.moveErr = errors.New("pathfinding wedged") })
	requireLogContains(t, c, "Movement failed")

	before := sess.moveCount()
	sess.set(func(s *fakeSession) { s.moveErr = nil })

	require.Eventually(t, func() bool {
		return sess.moveCount() > before
	}, time.Second, 5*time.Millisecond)
}

func TestWanderDefersToRest(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	home := validSettings().Home
	sess.set(func(s *fakeSession) {
		s.restSite = home.Offset(1, 0, 1)
		s.restSiteOK = true
		s.timeOfDay = world.TimeNight
		s.participants = []string{"alice"}
	})

	startAndSpawn(t, c, sess, home)

	// Rest-seeking wins over wandering: a goal is set toward the site
	requireLogContains(t, c, "Heading to rest site")
}

func TestSettingsReadFailureAtSpawnFallsBack(t *testing.T) {
	settings := newFakeSettings(validSettings())
	sess := newFakeSession()
	c, _ := newTestController(t, settings, &fakeDialer{session: sess})

	spawnAt := world.Coordinate{X: 7, Y: 64, Z: 7}
	sess.set(func(s *fakeSession) { s.position = spawnAt })
	c.Start()

	// Fail settings reads after the start checks passed
	settings.mu.Lock()
	settings.getErr = errors.New("database locked")
	settings.mu.Unlock()

	sess.events <- world.SpawnEvent{Position: spawnAt}

	requireLogContains(t, c, "Failed to read settings at spawn")
	require.Eventually(t, func() bool {
		return c.Status().Connected
	}, time.Second, 5*time.Millisecond)

	// Wandering centers on the spawning position instead
	require.Eventually(t, func() bool {
		return sess.moveCount() >= 1
	}, time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, sess.lastMove().ChebyshevXZ(spawnAt), 1)
}
