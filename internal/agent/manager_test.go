package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStepper struct {
	mu    sync.Mutex
	calls int
	total float64
}

func (s *countingStepper) Step(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.total += dt
}

func (s *countingStepper) snapshot() (int, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, s.total
}

func TestTickManager_RegisterUnregister(t *testing.T) {
	w := openTestWorld(t)
	mgr := NewTickManager(time.Second)

	f := newTestFollower(t, "a", center(0, 0), w)
	mgr.Register("a", f)
	mgr.Register("b", NewChaser(newTestFollower(t, "b", center(1, 1), w), FollowerTarget(f), time.Second))
	mgr.Register("c", &countingStepper{})
	assert.Equal(t, 3, mgr.Count())

	// Re-registering an id replaces it.
	mgr.Register("c", &countingStepper{})
	assert.Equal(t, 3, mgr.Count())
	assert.ElementsMatch(t, []string{"a", "b", "c"}, mgr.IDs())

	got, err := mgr.Follower("a")
	require.NoError(t, err)
	assert.Same(t, f, got)

	got, err = mgr.Follower("b")
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID())

	_, err = mgr.Follower("c")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = mgr.Follower("zzz")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.True(t, f.MoveTo(center(5, 5)).OK())
	mgr.Unregister("a")
	assert.Equal(t, 2, mgr.Count())
	assert.Equal(t, StateIdle, f.State(), "unregistered follower is stopped")

	_, err = mgr.Get("a")
	assert.True(t, errors.Is(err, ErrNotFound))

	mgr.Unregister("a") // no-op
	assert.Equal(t, 2, mgr.Count())
}

func TestTickManager_Tick(t *testing.T) {
	mgr := NewTickManager(0)
	assert.Equal(t, 50*time.Millisecond, mgr.Interval())

	s1, s2 := &countingStepper{}, &countingStepper{}
	mgr.Register("s1", s1)
	mgr.Register("s2", s2)

	mgr.Tick(0.25)
	mgr.Tick(0.25)

	calls, total := s1.snapshot()
	assert.Equal(t, 2, calls)
	assert.InDelta(t, 0.5, total, 1e-12)
	calls, _ = s2.snapshot()
	assert.Equal(t, 2, calls)
}

func TestTickManager_StartCancel(t *testing.T) {
	mgr := NewTickManager(10 * time.Millisecond)
	s := &countingStepper{}
	mgr.Register("s", s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()

	assert.Eventually(t, func() bool {
		calls, _ := s.snapshot()
		return calls >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("tick manager did not stop")
	}

	_, total := s.snapshot()
	assert.Positive(t, total, "elapsed time is passed to steppers")
}

func TestTickManager_Stop(t *testing.T) {
	mgr := NewTickManager(10 * time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- mgr.Start(context.Background()) }()

	mgr.Stop()
	mgr.Stop() // idempotent

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("tick manager did not stop")
	}
}

func TestDebugFlag(t *testing.T) {
	t.Cleanup(func() { EnableDebugLogging(false) })

	EnableDebugLogging(true)
	assert.True(t, IsDebugEnabled())
	EnableDebugLogging(false)
	assert.False(t, IsDebugEnabled())
}
