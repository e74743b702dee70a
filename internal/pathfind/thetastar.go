package pathfind

import (
	"fmt"

	"github.com/udisondev/gridnav/internal/geo"
)

// ThetaStar is any-angle Theta* with a Euclidean heuristic. A neighbor is
// attached to its grandparent whenever the Bresenham line between them is
// walkable, which yields paths with few, straight segments.
// The zero value is ready to use and safe for concurrent calls.
type ThetaStar struct{}

// Name implements Strategy.
func (ThetaStar) Name() string { return NameThetaStar }

// FindPath searches from the cell containing start to the cell containing
// target. Waypoints are the corners of the any-angle path, start cell first.
func (ts ThetaStar) FindPath(start, target geo.Vec2, oracle geo.Oracle, mapper geo.Mapper) Result {
	s, t, res, done := prepare(NameThetaStar, start, target, oracle, mapper)
	if done {
		return res
	}

	st := newSearchState()
	st.g[s] = 0
	st.parent[s] = s // root sentinel
	st.open.upsert(s, euclidean(s, t))

	for st.open.Len() > 0 {
		cur := st.open.pop()
		st.expanded++

		if cur == t {
			path, cells := reconstruct(st.parent, t, mapper)
			return Success(NameThetaStar, path, cells, st.expanded)
		}
		st.closed[cur] = struct{}{}

		curG := st.g[cur]
		curParent := st.parent[cur]
		for _, off := range neighborOffsets {
			nb := cur.Add(off)
			if st.isClosed(nb) || !oracle.IsWalkable(nb) {
				continue
			}

			var (
				from geo.Cell
				g    float64
			)
			if curParent != cur && geo.HasLineOfSight(oracle, curParent, nb) {
				from = curParent
				g = st.g[curParent] + euclidean(curParent, nb)
			} else {
				from = cur
				g = curG + stepCost(cur, nb)
			}

			if old, seen := st.g[nb]; seen && g >= old {
				continue
			}

			st.g[nb] = g
			st.parent[nb] = from
			st.open.upsert(nb, g+euclidean(nb, t))
		}
	}

	return Failure(NameThetaStar, ReasonNoPath, fmt.Sprintf("no path from %v to %v", s, t), st.expanded)
}
