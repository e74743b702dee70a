package pathfind

import (
	"errors"
	"fmt"
	"strings"

	"github.com/udisondev/gridnav/internal/geo"
)

// Strategy names.
const (
	NameAStar     = "astar"
	NameThetaStar = "thetastar"
)

// ErrUnknownStrategy is returned by ByName for unregistered names.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy finds a path between two world positions.
// Failures are reported through Result, never by panicking.
type Strategy interface {
	Name() string
	FindPath(start, target geo.Vec2, oracle geo.Oracle, mapper geo.Mapper) Result
}

var strategies = map[string]Strategy{
	NameAStar:     AStar{},
	NameThetaStar: ThetaStar{},
}

// ByName returns the strategy registered under name (case-insensitive).
func ByName(name string) (Strategy, error) {
	s, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// Strategies returns all registered strategy names in a stable order.
func Strategies() []string {
	return []string{NameAStar, NameThetaStar}
}
