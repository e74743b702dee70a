// Package planner serves path requests against a shared world: strategy
// lookup by name, a result cache keyed by world revision, and bounded
// concurrent batch planning.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gridnav/internal/geo"
	"github.com/udisondev/gridnav/internal/pathfind"
)

// Config holds planner settings.
type Config struct {
	CacheSize       int    // max cached results, 0 disables caching
	Workers         int    // max concurrent searches per batch
	DefaultStrategy string // used when a request names no strategy
}

// DefaultConfig returns the default planner settings.
func DefaultConfig() Config {
	return Config{
		CacheSize:       4096,
		Workers:         runtime.GOMAXPROCS(0),
		DefaultStrategy: pathfind.NameAStar,
	}
}

// Request is a single path query.
type Request struct {
	Strategy string // empty selects the default
	Start    geo.Vec2
	Target   geo.Vec2
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Service plans paths on a world. Safe for concurrent use.
type Service struct {
	world    *geo.World
	mapper   geo.Mapper
	workers  int
	fallback pathfind.Strategy
	cache    *resultCache

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewService creates a planner over world.
func NewService(world *geo.World, mapper geo.Mapper, cfg Config) (*Service, error) {
	if world == nil || mapper == nil {
		return nil, fmt.Errorf("creating planner: %w", pathfind.ErrInvalidReferences)
	}
	name := cfg.DefaultStrategy
	if name == "" {
		name = pathfind.NameAStar
	}
	fallback, err := pathfind.ByName(name)
	if err != nil {
		return nil, fmt.Errorf("creating planner: %w", err)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Service{
		world:    world,
		mapper:   mapper,
		workers:  workers,
		fallback: fallback,
		cache:    newResultCache(cfg.CacheSize),
	}, nil
}

// World returns the world the service plans on.
func (s *Service) World() *geo.World { return s.world }

// Mapper returns the coordinate mapper.
func (s *Service) Mapper() geo.Mapper { return s.mapper }

// DefaultStrategy returns the strategy used for requests without one.
func (s *Service) DefaultStrategy() pathfind.Strategy { return s.fallback }

// Strategy resolves name, falling back to the default for "".
func (s *Service) Strategy(name string) (pathfind.Strategy, error) {
	if name == "" {
		return s.fallback, nil
	}
	return pathfind.ByName(name)
}

// Plan runs one request. The error is non-nil only for an unknown strategy
// or a done context; search failures are returned as failed Results.
func (s *Service) Plan(ctx context.Context, req Request) (pathfind.Result, error) {
	if err := ctx.Err(); err != nil {
		return pathfind.Result{}, err
	}
	strategy, err := s.Strategy(req.Strategy)
	if err != nil {
		return pathfind.Result{}, err
	}

	snap := s.world.Snapshot()
	key := cacheKey{
		fingerprint: snap.Fingerprint(),
		strategy:    strategy.Name(),
		start:       s.mapper.WorldToCell(req.Start),
		target:      s.mapper.WorldToCell(req.Target),
	}
	if res, ok := s.cache.get(key); ok {
		s.hits.Add(1)
		return res, nil
	}
	s.misses.Add(1)

	res := strategy.FindPath(req.Start, req.Target, snap, s.mapper)
	if !res.OK() {
		slog.Debug("path not found",
			"strategy", res.Strategy(),
			"start", key.start,
			"target", key.target,
			"reason", res.Reason(),
			"expanded", res.Expanded())
	}
	s.cache.put(key, res)
	return res, nil
}

// PlanBatch runs reqs concurrently, at most Workers at a time. Results are
// in request order. The first error cancels the remaining requests.
func (s *Service) PlanBatch(ctx context.Context, reqs []Request) ([]pathfind.Result, error) {
	results := make([]pathfind.Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Plan(gctx, req)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Purge drops cached results of previous world revisions.
func (s *Service) Purge() int {
	n := s.cache.purge(s.world.Fingerprint())
	if n > 0 {
		slog.Debug("planner cache purged", "removed", n)
	}
	return n
}

// Stats returns cache counters.
func (s *Service) Stats() Stats {
	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Entries: s.cache.len(),
	}
}
