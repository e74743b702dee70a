package agent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/gridnav/internal/geo"
	"github.com/udisondev/gridnav/internal/pathfind"
	"github.com/udisondev/gridnav/internal/testutil"
)

var (
	unitMapper = testutil.UnitMapper
	center     = testutil.Center
	testWorld  = testutil.World
)

func openTestWorld(t *testing.T) *geo.World {
	t.Helper()
	return testutil.World(t, testutil.OpenRows(10, 10)...)
}

func newTestFollower(t *testing.T, id string, pos geo.Vec2, w *geo.World) *Follower {
	t.Helper()
	f, err := NewFollower(id, pos, DefaultConfig(), pathfind.AStar{}, w, unitMapper)
	require.NoError(t, err)
	return f
}

// recorder collects follower events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
