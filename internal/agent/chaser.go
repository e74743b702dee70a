package agent

import (
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/gridnav/internal/geo"
)

// TargetFunc reports the position to chase. ok=false pauses re-planning.
type TargetFunc func() (pos geo.Vec2, ok bool)

// FollowerTarget chases another follower's current position.
func FollowerTarget(f *Follower) TargetFunc {
	return func() (geo.Vec2, bool) { return f.Position(), true }
}

// PointTarget chases a fixed position.
func PointTarget(p geo.Vec2) TargetFunc {
	return func() (geo.Vec2, bool) { return p, true }
}

// Chaser periodically re-plans its follower toward a moving target.
// A new path is requested once per replan interval of accumulated step time,
// and only when the target is in a different cell than at the last
// successful plan.
type Chaser struct {
	follower *Follower
	target   TargetFunc
	interval float64 // seconds

	mu       sync.Mutex
	elapsed  float64
	checked  bool
	lastCell geo.Cell
	planned  bool
}

// NewChaser creates a chaser. The first Step always checks the target.
func NewChaser(f *Follower, target TargetFunc, replan time.Duration) *Chaser {
	return &Chaser{
		follower: f,
		target:   target,
		interval: replan.Seconds(),
	}
}

// Follower returns the wrapped follower.
func (c *Chaser) Follower() *Follower { return c.follower }

// Step re-plans when due and then steps the follower.
func (c *Chaser) Step(dt float64) {
	if goal, cell, ok := c.due(dt); ok {
		res := c.follower.MoveTo(goal)
		if res.OK() {
			c.mu.Lock()
			c.lastCell = cell
			c.planned = true
			c.mu.Unlock()
		} else if IsDebugEnabled() {
			slog.Debug("chase replan failed", "agent", c.follower.ID(), "reason", res.Reason())
		}
	}
	c.follower.Step(dt)
}

// due accumulates dt and reports whether a re-plan toward goal is needed.
func (c *Chaser) due(dt float64) (goal geo.Vec2, cell geo.Cell, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.elapsed += max(dt, 0)
	if c.checked && c.elapsed < c.interval {
		return goal, cell, false
	}
	c.checked = true
	c.elapsed = 0

	goal, ok = c.target()
	if !ok {
		return goal, cell, false
	}
	cell = c.follower.Mapper().WorldToCell(goal)
	if c.planned && cell == c.lastCell {
		return goal, cell, false
	}
	return goal, cell, true
}
