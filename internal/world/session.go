package world

import "context"

// Session is an active connection representing the agent's presence in a
// remote world. All methods are safe for concurrent use. Observational
// methods reflect the most recent server-reported state; command methods
// are best-effort and return an error only when the command could not be
// issued, not when the world declined it.
type Session interface {
	// Events returns the stream of session events. The channel is closed
	// when the session ends for any reason.
	Events() <-chan Event

	// Position returns the agent's last known position.
	Position() Coordinate

	// TimeOfDay returns the world's current day/night phase.
	TimeOfDay() TimeOfDay

	// Participants returns the names of other participants currently in
	// the world, in join order. The agent itself is excluded.
	Participants() []string

	// Resting reports whether the agent currently occupies a rest site.
	Resting() bool

	// MoveTo issues a direct movement command toward the target: a simple
	// axis-aligned heading, not pathfinding. The directional control
	// auto-clears after one second so an interrupted step cannot cause
	// runaway motion.
	MoveTo(target Coordinate) error

	// SetGoal sets a movement goal the world tracks to completion,
	// reported via GoalReachedEvent. A nil goal cancels any in-flight
	// goal.
	SetGoal(goal *Coordinate) error

	// NearestRestSite returns the rest site closest to center within the
	// given radius, if any is known.
	NearestRestSite(center Coordinate, radius int) (Coordinate, bool)

	// EnterRest asks the world to put the agent to rest at the given
	// site. The outcome arrives as a RestChangedEvent.
	EnterRest(site Coordinate) error

	// LeaveRest asks the world to wake the agent. A no-op server-side if
	// the agent is not resting.
	LeaveRest() error

	// Close tears the session down. Safe to call more than once.
	Close() error
}

// Dialer opens sessions against a remote world. The controller depends on
// this interface so tests can substitute a fake world.
type Dialer interface {
	// Dial connects to the world at target and joins as name. The
	// returned session has not necessarily spawned yet; spawn is
	// confirmed by a SpawnEvent.
	Dial(ctx context.Context, target, name string) (Session, error)
}
