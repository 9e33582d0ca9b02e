package world

// Event is a notification emitted by a session. The set of variants is
// closed: the controller dispatches on concrete type through a single
// entry point rather than registering per-event callbacks.
type Event interface {
	// event is a marker method restricting implementations to this package.
	event()
}

// SpawnEvent signals that the agent has fully spawned into the world.
// A session emits it exactly once, after the server has acknowledged the
// join and streamed the initial world state.
type SpawnEvent struct {
	Position Coordinate
}

// DisconnectEvent signals that the remote side ended the session.
type DisconnectEvent struct {
	// Reason is the server-supplied message, empty if none was given.
	Reason string
	// Kicked is true when the server actively removed the agent rather
	// than the link simply dropping.
	Kicked bool
}

// ErrorEvent signals a fatal transport or protocol fault. The session is
// unusable afterwards.
type ErrorEvent struct {
	Err error
}

// ParticipantJoinedEvent signals another participant entering the world.
type ParticipantJoinedEvent struct {
	Name string
}

// ParticipantLeftEvent signals another participant leaving the world.
type ParticipantLeftEvent struct {
	Name string
	// Remaining is the number of other participants still present after
	// this departure.
	Remaining int
}

// TimeChangedEvent signals a transition between day and night.
type TimeChangedEvent struct {
	Time TimeOfDay
}

// PositionChangedEvent signals an observed change of the agent's position,
// whether self-inflicted or caused by external forces.
type PositionChangedEvent struct {
	Position Coordinate
}

// GoalReachedEvent signals that a previously set movement goal completed.
type GoalReachedEvent struct {
	Goal Coordinate
}

// RestChangedEvent signals the agent entering or leaving the rest state.
type RestChangedEvent struct {
	Resting bool
}

func (SpawnEvent) event()              {}
func (DisconnectEvent) event()         {}
func (ErrorEvent) event()              {}
func (ParticipantJoinedEvent) event()  {}
func (ParticipantLeftEvent) event()    {}
func (TimeChangedEvent) event()        {}
func (PositionChangedEvent) event()    {}
func (GoalReachedEvent) event()        {}
func (RestChangedEvent) event()        {}
