package pathfind

import (
	"fmt"

	"github.com/udisondev/gridnav/internal/geo"
)

// AStar is 8-directional A* with a Manhattan heuristic.
// The zero value is ready to use and safe for concurrent calls.
type AStar struct{}

// Name implements Strategy.
func (AStar) Name() string { return NameAStar }

// FindPath searches from the cell containing start to the cell containing
// target. The returned path holds cell centers, start cell first.
func (a AStar) FindPath(start, target geo.Vec2, oracle geo.Oracle, mapper geo.Mapper) Result {
	s, t, res, done := prepare(NameAStar, start, target, oracle, mapper)
	if done {
		return res
	}

	st := newSearchState()
	st.g[s] = 0
	st.open.upsert(s, manhattan(s, t))

	for st.open.Len() > 0 {
		cur := st.open.pop()
		st.expanded++

		if cur == t {
			path, cells := reconstruct(st.parent, t, mapper)
			return Success(NameAStar, path, cells, st.expanded)
		}
		st.closed[cur] = struct{}{}

		curG := st.g[cur]
		for _, off := range neighborOffsets {
			nb := cur.Add(off)
			if st.isClosed(nb) || !oracle.IsWalkable(nb) {
				continue
			}

			g := curG + stepCost(cur, nb)
			if old, seen := st.g[nb]; seen && g >= old {
				continue
			}

			st.g[nb] = g
			st.parent[nb] = cur
			st.open.upsert(nb, g+manhattan(nb, t))
		}
	}

	return Failure(NameAStar, ReasonNoPath, fmt.Sprintf("no path from %v to %v", s, t), st.expanded)
}
