package geo

import "errors"

var (
	// ErrNoLayers is returned when an obstacle layer set is empty.
	ErrNoLayers = errors.New("no obstacle layers")

	// ErrUnbounded is returned for a snapshot with no Bounds layer.
	ErrUnbounded = errors.New("obstacle layers have no bounds")
)

// Oracle answers whether a cell can be entered.
// Must be a pure query for the duration of a search. The walkable region
// reachable from any start must be finite, or a search for an enclosed
// target never ends; wrap open-ended layers with a Bounds layer.
type Oracle interface {
	IsWalkable(c Cell) bool
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(c Cell) bool

// IsWalkable calls f(c).
func (f OracleFunc) IsWalkable(c Cell) bool { return f(c) }

// Layer reports obstacles in one obstacle source (tile layer, wall set, bounds).
type Layer interface {
	Blocked(c Cell) bool
}

// Layers is an Oracle over a set of obstacle layers: a cell is walkable
// iff no layer reports an obstacle. Nil entries are ignored.
// Layers does not bound the grid by itself; include a Bounds layer when it
// is used as a search oracle.
type Layers []Layer

// IsWalkable implements Oracle.
func (ls Layers) IsWalkable(c Cell) bool {
	for _, l := range ls {
		if l != nil && l.Blocked(c) {
			return false
		}
	}
	return true
}

// Validate returns ErrNoLayers for an empty set.
func (ls Layers) Validate() error {
	if len(ls) == 0 {
		return ErrNoLayers
	}
	return nil
}
