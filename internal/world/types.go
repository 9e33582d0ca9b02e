// Package world models the agent's presence in a remote voxel world.
// It defines the session contract the behavior controller drives, the
// closed set of events a session emits, and a WebSocket-based client
// implementation of that contract.
package world

// Coordinate is an integer block position in the world.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// ChebyshevXZ returns the Chebyshev distance between two coordinates on
// the horizontal plane: max(|Δx|, |Δz|). The vertical axis is ignored
// because patrol bounds are defined per column.
func (c Coordinate) ChebyshevXZ(o Coordinate) int {
	dx := abs(c.X - o.X)
	dz := abs(c.Z - o.Z)
	if dx > dz {
		return dx
	}
	return dz
}

// Offset returns the coordinate translated by (dx, dy, dz).
func (c Coordinate) Offset(dx, dy, dz int) Coordinate {
	return Coordinate{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// TimeOfDay is the world's coarse day/night phase.
type TimeOfDay string

const (
	TimeDay   TimeOfDay = "day"
	TimeNight TimeOfDay = "night"
)
