package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNotFound is returned for unknown agent ids.
var ErrNotFound = errors.New("agent not found")

// Stepper is advanced by the tick manager. dt is in seconds.
type Stepper interface {
	Step(dt float64)
}

// TickManager drives all registered steppers at a fixed interval.
type TickManager struct {
	steppers     sync.Map // map[string]Stepper, keyed by agent id
	interval     time.Duration
	stopCh       chan struct{}
	stopOnce     sync.Once
	stepperCount atomic.Int32 // cached count (O(1) access)
}

// NewTickManager creates a tick manager. Non-positive interval falls back to 50ms.
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &TickManager{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Interval returns the tick interval.
func (m *TickManager) Interval() time.Duration { return m.interval }

// Register adds s under id, replacing any previous stepper with that id.
func (m *TickManager) Register(id string, s Stepper) {
	if _, loaded := m.steppers.Swap(id, s); !loaded {
		m.stepperCount.Add(1)
	}
	slog.Debug("agent registered", "id", id)
}

// Unregister removes the stepper for id. A removed follower is stopped.
func (m *TickManager) Unregister(id string) {
	value, ok := m.steppers.LoadAndDelete(id)
	if !ok {
		return
	}
	m.stepperCount.Add(-1)

	if f, err := asFollower(value.(Stepper)); err == nil {
		f.Stop()
	}
	slog.Debug("agent unregistered", "id", id)
}

// Start runs the tick loop (blocks until ctx is canceled or Stop is called).
// Each tick passes the real elapsed time since the previous tick.
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("agent tick manager started", "interval", m.interval)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("agent tick manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("agent tick manager stopped")
			return nil

		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			m.Tick(dt)
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Tick steps every registered stepper once by dt seconds.
func (m *TickManager) Tick(dt float64) {
	count := 0
	m.steppers.Range(func(_, value any) bool {
		value.(Stepper).Step(dt)
		count++
		return true
	})

	if count > 0 && IsDebugEnabled() {
		slog.Debug("agent tick completed", "agents", count, "dt", dt)
	}
}

// Count returns the number of registered steppers (O(1) cached count).
func (m *TickManager) Count() int {
	return int(m.stepperCount.Load())
}

// Get returns the stepper registered under id.
func (m *TickManager) Get(id string) (Stepper, error) {
	value, ok := m.steppers.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return value.(Stepper), nil
}

// Follower returns the follower registered under id, unwrapping chasers.
func (m *TickManager) Follower(id string) (*Follower, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	f, err := asFollower(s)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", id, err)
	}
	return f, nil
}

// IDs returns the registered ids in no particular order.
func (m *TickManager) IDs() []string {
	ids := make([]string, 0, m.Count())
	m.steppers.Range(func(key, _ any) bool {
		ids = append(ids, key.(string))
		return true
	})
	return ids
}

func asFollower(s Stepper) (*Follower, error) {
	switch v := s.(type) {
	case *Follower:
		return v, nil
	case *Chaser:
		return v.Follower(), nil
	default:
		return nil, fmt.Errorf("stepper %T has no follower", s)
	}
}
