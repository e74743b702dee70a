package agent

import (
	"fmt"

	"github.com/udisondev/gridnav/internal/geo"
	"github.com/udisondev/gridnav/internal/pathfind"
)

// EventKind identifies a follower lifecycle event.
type EventKind int

const (
	// EventPathComputed fires after every MoveTo or Plan, success or failure.
	EventPathComputed EventKind = iota + 1
	// EventMovementStarted fires when a traversal begins.
	EventMovementStarted
	// EventWaypointReached fires each time the cursor advances.
	EventWaypointReached
	// EventMovementCompleted fires once when the last waypoint is reached.
	// A traversal cancelled by Stop or a new MoveTo never completes.
	EventMovementCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventPathComputed:
		return "path_computed"
	case EventMovementStarted:
		return "movement_started"
	case EventWaypointReached:
		return "waypoint_reached"
	case EventMovementCompleted:
		return "movement_completed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is delivered to listeners after the follower's lock is released.
type Event struct {
	Kind     EventKind
	AgentID  string
	Position geo.Vec2

	// Result is set for EventPathComputed.
	Result pathfind.Result
	// Waypoint is the reached index for EventWaypointReached.
	Waypoint int
}

// Listener receives follower events. It runs on the goroutine that caused
// the event (MoveTo caller or tick driver) and may call back into the follower.
type Listener func(Event)
