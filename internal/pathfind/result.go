package pathfind

import (
	"errors"
	"fmt"
	"slices"

	"github.com/udisondev/gridnav/internal/geo"
)

// Reason classifies a failed search.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonInvalidReferences
	ReasonUnwalkableEndpoint
	ReasonNoPath
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonInvalidReferences:
		return "invalid_references"
	case ReasonUnwalkableEndpoint:
		return "unwalkable_endpoint"
	case ReasonNoPath:
		return "no_path"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

var (
	ErrInvalidReferences  = errors.New("missing or invalid oracle or mapper")
	ErrUnwalkableEndpoint = errors.New("start or target position is not walkable")
	ErrNoPath             = errors.New("no path exists between start and target positions")
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonInvalidReferences:
		return ErrInvalidReferences
	case ReasonUnwalkableEndpoint:
		return ErrUnwalkableEndpoint
	case ReasonNoPath:
		return ErrNoPath
	default:
		return nil
	}
}

// Result is the immutable outcome of a search.
type Result struct {
	strategy string
	path     []geo.Vec2
	cells    []geo.Cell
	reason   Reason
	detail   string
	expanded int
}

// Success builds a successful result. path and cells are start→target.
func Success(strategy string, path []geo.Vec2, cells []geo.Cell, expanded int) Result {
	return Result{strategy: strategy, path: path, cells: cells, expanded: expanded}
}

// Failure builds a failed result. detail may be empty.
func Failure(strategy string, reason Reason, detail string, expanded int) Result {
	return Result{strategy: strategy, reason: reason, detail: detail, expanded: expanded}
}

// OK reports whether a path was found.
func (r Result) OK() bool { return r.reason == ReasonNone }

// Reason returns the failure reason, ReasonNone on success.
func (r Result) Reason() Reason { return r.reason }

// Strategy returns the name of the strategy that produced the result.
func (r Result) Strategy() string { return r.strategy }

// Expanded returns the number of cells taken off the frontier.
func (r Result) Expanded() int { return r.expanded }

// Path returns a copy of the waypoints in world space.
func (r Result) Path() []geo.Vec2 { return slices.Clone(r.path) }

// Cells returns a copy of the waypoint cells.
func (r Result) Cells() []geo.Cell { return slices.Clone(r.cells) }

// Len returns the number of waypoints.
func (r Result) Len() int { return len(r.path) }

// Length returns the Euclidean length of the path.
func (r Result) Length() float64 { return geo.PathLength(r.path) }

// Message returns a human-readable failure description, "" on success.
func (r Result) Message() string {
	if r.OK() {
		return ""
	}
	if r.detail != "" {
		return r.detail
	}
	return r.reason.sentinel().Error()
}

// Err returns nil on success, otherwise an error wrapping ErrInvalidReferences,
// ErrUnwalkableEndpoint or ErrNoPath.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	sentinel := r.reason.sentinel()
	if sentinel == nil {
		return fmt.Errorf("search failed: %s", r.reason)
	}
	if r.detail == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, r.detail)
}
