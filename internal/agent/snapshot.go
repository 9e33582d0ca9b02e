package agent

import (
	"github.com/warden/warden/internal/eventlog"
	"github.com/warden/warden/internal/world"
)

// Activity is the agent's coarse observable behavior.
type Activity string

const (
	ActivityIdle      Activity = "Idle"
	ActivityWandering Activity = "Wandering"
	ActivitySleeping  Activity = "Sleeping"
)

// Snapshot is a point-in-time view of the agent's state, recomputed on
// demand from the live session. It is never stored as a source of truth.
type Snapshot struct {
	// Connected is the sole authoritative liveness indicator.
	Connected bool `json:"connected"`
	// Activity is what the agent is currently doing.
	Activity Activity `json:"activity"`
	// Position is the agent's last known position.
	Position world.Coordinate `json:"position"`
	// TimeOfDay is the world's day/night phase.
	TimeOfDay world.TimeOfDay `json:"time_of_day"`
	// Participants lists other participants in join order.
	Participants []string `json:"participants"`
	// AreaMask is the 3x3 patrol grid centered on home, row-major, with
	// the cell the agent occupies set. Exactly one cell is set while
	// connected; all are clear otherwise.
	AreaMask [9]bool `json:"area_mask"`
}

// Publisher fans agent state out to connected observers. Implementations
// must not call back into the controller synchronously.
type Publisher interface {
	// PublishStatus pushes a fresh snapshot to all observers.
	PublishStatus(snap Snapshot)
	// PublishLog pushes an appended log entry to all observers.
	PublishLog(entry eventlog.Entry)
}

// NoopPublisher is a Publisher that discards everything.
type NoopPublisher struct{}

// PublishStatus does nothing.
func (NoopPublisher) PublishStatus(Snapshot) {}

// PublishLog does nothing.
func (NoopPublisher) PublishLog(eventlog.Entry) {}

// areaMask maps the agent's offset from home onto the 3x3 grid. Offsets
// beyond the patrol bound are clamped to the nearest edge cell.
func areaMask(pos, home world.Coordinate) [9]bool {
	dx := clamp(pos.X-home.X, -1, 1)
	dz := clamp(pos.Z-home.Z, -1, 1)

	var mask [9]bool
	mask[(dz+1)*3+(dx+1)] = true
	return mask
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
