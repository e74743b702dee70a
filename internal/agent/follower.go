package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/gridnav/internal/geo"
	"github.com/udisondev/gridnav/internal/pathfind"
)

// State is the follower state.
type State int

const (
	StateIdle State = iota
	StateFollowing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFollowing:
		return "following"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config holds follower movement parameters.
type Config struct {
	Speed     float64 // world units per second
	Tolerance float64 // distance at which a waypoint counts as reached
}

// DefaultConfig returns speed 5 and arrival tolerance 0.1.
func DefaultConfig() Config {
	return Config{Speed: 5, Tolerance: 0.1}
}

// Validate checks movement parameters.
func (c Config) Validate() error {
	if !(c.Speed > 0) {
		return fmt.Errorf("speed must be positive, got %v", c.Speed)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %v", c.Tolerance)
	}
	return nil
}

// ErrNoStrategy is returned by NewFollower without a search strategy.
var ErrNoStrategy = errors.New("no search strategy")

// snapshotter is implemented by oracles that can hand out a consistent view
// for the duration of one search (geo.World).
type snapshotter interface {
	Snapshot() *geo.Snapshot
}

type subscription struct {
	id int
	fn Listener
}

// Follower moves an agent along computed paths.
// Thread-safe: Step is driven by a tick loop while MoveTo, Stop and the
// accessors may be called from other goroutines. Listeners see events in
// the order the state changes happened and must not call MoveTo, Plan,
// Stop, Teleport or Step on the same follower.
type Follower struct {
	id       string
	cfg      Config
	strategy pathfind.Strategy
	oracle   geo.Oracle
	mapper   geo.Mapper

	// emitMu serializes state transitions together with their dispatch.
	// Lock order: emitMu, then mu.
	emitMu sync.Mutex

	mu        sync.Mutex
	pos       geo.Vec2
	state     State
	path      []geo.Vec2
	cursor    int
	listeners []subscription
	nextSubID int
}

// NewFollower creates an idle follower at pos.
func NewFollower(id string, pos geo.Vec2, cfg Config, strategy pathfind.Strategy, oracle geo.Oracle, mapper geo.Mapper) (*Follower, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("follower %s: %w", id, err)
	}
	if strategy == nil {
		return nil, fmt.Errorf("follower %s: %w", id, ErrNoStrategy)
	}
	return &Follower{
		id:       id,
		cfg:      cfg,
		strategy: strategy,
		oracle:   oracle,
		mapper:   mapper,
		pos:      pos,
	}, nil
}

// ID returns the agent id.
func (f *Follower) ID() string { return f.id }

// Config returns the movement parameters.
func (f *Follower) Config() Config { return f.cfg }

// Strategy returns the search strategy name.
func (f *Follower) Strategy() string { return f.strategy.Name() }

// Mapper returns the coordinate mapper used for planning.
func (f *Follower) Mapper() geo.Mapper { return f.mapper }

// Subscribe registers l for all events and returns a function removing it.
func (f *Follower) Subscribe(l Listener) (unsubscribe func()) {
	f.mu.Lock()
	id := f.nextSubID
	f.nextSubID++
	f.listeners = append(f.listeners, subscription{id: id, fn: l})
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners = slices.DeleteFunc(f.listeners, func(s subscription) bool { return s.id == id })
	}
}

// MoveTo plans from the current position to target. On success any running
// traversal is abandoned without completing and the new one starts at
// waypoint 0. On failure the current motion is left as is.
func (f *Follower) MoveTo(target geo.Vec2) pathfind.Result {
	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	res := f.findPath(target)
	events := []Event{f.event(EventPathComputed, func(e *Event) { e.Result = res })}
	if res.OK() {
		f.path = res.Path()
		f.cursor = 0
		f.state = StateFollowing
		events = append(events, f.event(EventMovementStarted, nil))
	}
	listeners := f.snapshotListeners()
	f.mu.Unlock()

	if !res.OK() {
		slog.Debug("path not found",
			"agent", f.id,
			"strategy", res.Strategy(),
			"reason", res.Reason(),
			"message", res.Message())
	}

	dispatch(listeners, events)
	return res
}

// Plan computes a path to target and emits EventPathComputed without
// touching the motion state.
func (f *Follower) Plan(target geo.Vec2) pathfind.Result {
	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	res := f.findPath(target)
	events := []Event{f.event(EventPathComputed, func(e *Event) { e.Result = res })}
	listeners := f.snapshotListeners()
	f.mu.Unlock()

	dispatch(listeners, events)
	return res
}

// Stop discards the current path. No further events fire for it.
func (f *Follower) Stop() {
	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

// Teleport stops any traversal and places the agent at pos.
func (f *Follower) Teleport(pos geo.Vec2) {
	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
	f.pos = pos
}

// Step advances the agent by dt seconds: it moves toward the current
// waypoint by at most Speed*dt and, once within Tolerance, advances the
// cursor by one. Reaching the last waypoint returns the follower to Idle.
func (f *Follower) Step(dt float64) {
	if dt < 0 {
		return
	}

	f.emitMu.Lock()
	defer f.emitMu.Unlock()

	f.mu.Lock()
	if f.state != StateFollowing {
		f.mu.Unlock()
		return
	}

	wp := f.path[f.cursor]
	f.pos = geo.MoveTowards(f.pos, wp, f.cfg.Speed*dt)

	var events []Event
	if f.pos.Dist(wp) <= f.cfg.Tolerance {
		reached := f.cursor
		events = append(events, f.event(EventWaypointReached, func(e *Event) { e.Waypoint = reached }))
		f.cursor++
		if f.cursor >= len(f.path) {
			f.reset()
			events = append(events, f.event(EventMovementCompleted, nil))
		}

		if IsDebugEnabled() {
			slog.Debug("waypoint reached", "agent", f.id, "index", reached, "pos", f.pos)
		}
	}
	listeners := f.snapshotListeners()
	f.mu.Unlock()

	dispatch(listeners, events)
}

// Position returns the current position.
func (f *Follower) Position() geo.Vec2 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

// State returns the current state.
func (f *Follower) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Waypoints returns a copy of the waypoints not reached yet.
func (f *Follower) Waypoints() []geo.Vec2 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateFollowing {
		return nil
	}
	return slices.Clone(f.path[f.cursor:])
}

// findPath runs the strategy against a consistent oracle view. Caller holds mu.
func (f *Follower) findPath(target geo.Vec2) pathfind.Result {
	oracle := f.oracle
	if s, ok := oracle.(snapshotter); ok {
		oracle = s.Snapshot()
	}
	return f.strategy.FindPath(f.pos, target, oracle, f.mapper)
}

// reset drops path and cursor. Caller holds mu.
func (f *Follower) reset() {
	f.state = StateIdle
	f.path = nil
	f.cursor = 0
}

// event builds an event stamped with id and position. Caller holds mu.
func (f *Follower) event(kind EventKind, fill func(*Event)) Event {
	e := Event{Kind: kind, AgentID: f.id, Position: f.pos}
	if fill != nil {
		fill(&e)
	}
	return e
}

func (f *Follower) snapshotListeners() []Listener {
	if len(f.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(f.listeners))
	for i, s := range f.listeners {
		out[i] = s.fn
	}
	return out
}

func dispatch(listeners []Listener, events []Event) {
	for _, e := range events {
		for _, l := range listeners {
			l(e)
		}
	}
}
