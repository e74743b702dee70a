package planner

import (
	"container/list"
	"sync"

	"github.com/udisondev/gridnav/internal/geo"
	"github.com/udisondev/gridnav/internal/pathfind"
)

// cacheKey identifies a search. Results depend only on cells, so two
// requests inside the same start and target cells share an entry.
type cacheKey struct {
	fingerprint string
	strategy    string
	start       geo.Cell
	target      geo.Cell
}

type cacheEntry struct {
	key    cacheKey
	result pathfind.Result
}

// resultCache is a fixed-capacity LRU. Thread-safe.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[cacheKey]*list.Element
}

// newResultCache returns nil for capacity <= 0 (caching disabled).
func newResultCache(capacity int) *resultCache {
	if capacity <= 0 {
		return nil
	}
	return &resultCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[cacheKey]*list.Element, capacity),
	}
}

func (c *resultCache) get(k cacheKey) (pathfind.Result, bool) {
	if c == nil {
		return pathfind.Result{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[k]
	if !ok {
		return pathfind.Result{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).result, true
}

func (c *resultCache) put(k cacheKey, res pathfind.Result) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[k]; ok {
		el.Value.(*cacheEntry).result = res
		c.order.MoveToFront(el)
		return
	}

	c.entries[k] = c.order.PushFront(&cacheEntry{key: k, result: res})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// purge drops every entry whose fingerprint differs from keep.
func (c *resultCache) purge(keep string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, el := range c.entries {
		if k.fingerprint != keep {
			c.order.Remove(el)
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}
