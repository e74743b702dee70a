package pathfind

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gridnav/internal/geo"
	"github.com/udisondev/gridnav/internal/testutil"
)

var (
	unitMapper = testutil.UnitMapper
	center     = testutil.Center
)

func gridWorld(t *testing.T, rows ...string) *geo.Snapshot {
	t.Helper()
	return testutil.Snapshot(t, rows...)
}

func openWorld(t *testing.T, w, h int) *geo.Snapshot {
	t.Helper()
	return testutil.Snapshot(t, testutil.OpenRows(w, h)...)
}

// gridCost sums 8-directional step costs along cells.
func gridCost(cells []geo.Cell) float64 {
	total := 0.0
	for i := 1; i < len(cells); i++ {
		total += stepCost(cells[i-1], cells[i])
	}
	return total
}

func allStrategies() []Strategy {
	return []Strategy{AStar{}, ThetaStar{}}
}

func TestFrontierTieBreak(t *testing.T) {
	a, b, c := geo.Cell{X: 1}, geo.Cell{X: 2}, geo.Cell{X: 3}

	t.Run("equal f pops in insertion order", func(t *testing.T) {
		fr := newFrontier()
		fr.upsert(a, 1)
		fr.upsert(b, 1)
		fr.upsert(c, 2)
		fr.upsert(c, 1) // keeps its original position
		require.Equal(t, 3, fr.Len())

		assert.Equal(t, a, fr.pop())
		assert.Equal(t, b, fr.pop())
		assert.Equal(t, c, fr.pop())
		assert.Equal(t, 0, fr.Len())
	})

	t.Run("update reorders", func(t *testing.T) {
		fr := newFrontier()
		fr.upsert(a, 1)
		fr.upsert(b, 2)
		fr.upsert(c, 3)
		fr.upsert(c, 0.5)

		assert.True(t, fr.contains(c))
		assert.Equal(t, c, fr.pop())
		assert.False(t, fr.contains(c))
		assert.Equal(t, a, fr.pop())
		assert.Equal(t, b, fr.pop())
	})

	t.Run("no duplicate entries", func(t *testing.T) {
		fr := newFrontier()
		for i := range 5 {
			fr.upsert(a, float64(5-i))
		}
		assert.Equal(t, 1, fr.Len())
	})
}

func TestHeuristics(t *testing.T) {
	a := geo.Cell{X: 1, Y: -2}
	b := geo.Cell{X: 4, Y: 2}

	assert.Equal(t, 7.0, manhattan(a, b))
	assert.InDelta(t, 5.0, euclidean(a, b), 1e-12)
	assert.Equal(t, 1.0, stepCost(geo.Cell{}, geo.Cell{X: 1}))
	assert.Equal(t, math.Sqrt2, stepCost(geo.Cell{}, geo.Cell{X: 1, Y: 1}))
}

func TestFindPathDegenerate(t *testing.T) {
	w := openWorld(t, 4, 4)

	for _, s := range allStrategies() {
		t.Run(s.Name(), func(t *testing.T) {
			// Two different positions inside the same cell.
			res := s.FindPath(geo.Vec2{X: 1.1, Y: 2.2}, geo.Vec2{X: 1.9, Y: 2.7}, w, unitMapper)
			require.True(t, res.OK())
			assert.Equal(t, []geo.Vec2{center(1, 2)}, res.Path())
			assert.Equal(t, 0.0, res.Length())
			assert.NoError(t, res.Err())
		})
	}
}

func TestFindPathInvalidReferences(t *testing.T) {
	w := openWorld(t, 4, 4)

	tests := []struct {
		name   string
		oracle geo.Oracle
		mapper geo.Mapper
	}{
		{"nil oracle", nil, unitMapper},
		{"nil mapper", w, nil},
		{"empty layer set", geo.Layers{}, unitMapper},
		{"empty world", geo.NewWorld(), unitMapper},
		{"unbounded snapshot", geo.NewSnapshot([]geo.NamedLayer{
			{Name: "walls", Layer: geo.NewSparse(geo.Cell{X: 2, Y: 2})},
		}), unitMapper},
	}

	for _, s := range allStrategies() {
		for _, tt := range tests {
			t.Run(s.Name()+"/"+tt.name, func(t *testing.T) {
				res := s.FindPath(center(0, 0), center(3, 3), tt.oracle, tt.mapper)
				require.False(t, res.OK())
				assert.Equal(t, ReasonInvalidReferences, res.Reason())
				assert.True(t, errors.Is(res.Err(), ErrInvalidReferences))
				assert.Empty(t, res.Path())
				assert.NotEmpty(t, res.Message())
			})
		}
	}
}

func TestFindPathUnwalkableEndpoint(t *testing.T) {
	w := gridWorld(t,
		"#...",
		"....",
		"...#",
	)

	for _, s := range allStrategies() {
		t.Run(s.Name()+"/start", func(t *testing.T) {
			res := s.FindPath(center(0, 0), center(2, 1), w, unitMapper)
			assert.Equal(t, ReasonUnwalkableEndpoint, res.Reason())
			assert.True(t, errors.Is(res.Err(), ErrUnwalkableEndpoint))
			assert.Contains(t, res.Message(), "start cell (0,0)")
		})
		t.Run(s.Name()+"/target", func(t *testing.T) {
			res := s.FindPath(center(1, 1), center(3, 2), w, unitMapper)
			assert.Equal(t, ReasonUnwalkableEndpoint, res.Reason())
			assert.Contains(t, res.Message(), "target cell (3,2)")
		})
		t.Run(s.Name()+"/outside bounds", func(t *testing.T) {
			res := s.FindPath(center(1, 1), center(10, 10), w, unitMapper)
			assert.Equal(t, ReasonUnwalkableEndpoint, res.Reason())
		})
	}
}

func TestFindPathEnclosedTarget(t *testing.T) {
	w := gridWorld(t,
		".......",
		"..###..",
		"..#.#..",
		"..###..",
		".......",
	)

	walkable := 0
	bounds, ok := w.Bounds()
	require.True(t, ok)
	for y := bounds.Min.Y; y <= bounds.Max.Y; y++ {
		for x := bounds.Min.X; x <= bounds.Max.X; x++ {
			if w.IsWalkable(geo.Cell{X: x, Y: y}) {
				walkable++
			}
		}
	}

	for _, s := range allStrategies() {
		t.Run(s.Name(), func(t *testing.T) {
			res := s.FindPath(center(0, 0), center(3, 2), w, unitMapper)
			require.False(t, res.OK())
			assert.Equal(t, ReasonNoPath, res.Reason())
			assert.True(t, errors.Is(res.Err(), ErrNoPath))
			assert.Positive(t, res.Expanded())
			assert.LessOrEqual(t, res.Expanded(), walkable)
		})
	}
}

func TestAStarOptimalOnOpenGrid(t *testing.T) {
	w := openWorld(t, 10, 10)

	tests := []struct {
		name     string
		from, to geo.Cell
		want     float64
	}{
		{"straight", geo.Cell{X: 0, Y: 0}, geo.Cell{X: 5, Y: 0}, 5},
		{"diagonal", geo.Cell{X: 0, Y: 0}, geo.Cell{X: 4, Y: 4}, 4 * math.Sqrt2},
		{"mixed short", geo.Cell{X: 0, Y: 0}, geo.Cell{X: 3, Y: 1}, 2 + math.Sqrt2},
		{"mixed", geo.Cell{X: 0, Y: 0}, geo.Cell{X: 4, Y: 2}, 2 + 2*math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := AStar{}.FindPath(unitMapper.CellCenter(tt.from), unitMapper.CellCenter(tt.to), w, unitMapper)
			require.True(t, res.OK(), res.Message())

			cells := res.Cells()
			assert.Equal(t, tt.from, cells[0])
			assert.Equal(t, tt.to, cells[len(cells)-1])
			assert.InDelta(t, tt.want, gridCost(cells), 1e-9)
			assert.InDelta(t, tt.want, res.Length(), 1e-9)
		})
	}
}

func TestAStarPathAdjacency(t *testing.T) {
	w := gridWorld(t,
		"..........",
		"..........",
		"....#.....",
		"....#.....",
		"....#.....",
		"..........",
	)

	res := AStar{}.FindPath(center(1, 3), center(8, 3), w, unitMapper)
	require.True(t, res.OK(), res.Message())

	cells := res.Cells()
	for i, c := range cells {
		assert.True(t, w.IsWalkable(c), "cell %v", c)
		if i == 0 {
			continue
		}
		d := c.Sub(cells[i-1])
		assert.LessOrEqual(t, max(abs(d.X), abs(d.Y)), int32(1), "step %d not adjacent", i)
		assert.NotEqual(t, geo.Cell{}, d, "repeated cell at %d", i)
	}
}

func TestThetaStarStraightOnOpenGrid(t *testing.T) {
	w := openWorld(t, 10, 10)

	res := ThetaStar{}.FindPath(center(0, 0), center(7, 3), w, unitMapper)
	require.True(t, res.OK(), res.Message())
	assert.Equal(t, []geo.Vec2{center(0, 0), center(7, 3)}, res.Path())
	assert.InDelta(t, math.Hypot(7, 3), res.Length(), 1e-9)
}

func TestThetaStarNotLongerThanAStar(t *testing.T) {
	open := openWorld(t, 12, 12)
	wall := gridWorld(t,
		"..........",
		"..........",
		"....#.....",
		"....#.....",
		"....#.....",
		"..........",
	)

	tests := []struct {
		name     string
		oracle   *geo.Snapshot
		from, to geo.Cell
	}{
		{"open near", open, geo.Cell{X: 0, Y: 0}, geo.Cell{X: 5, Y: 2}},
		{"open far", open, geo.Cell{X: 1, Y: 11}, geo.Cell{X: 11, Y: 0}},
		{"around wall", wall, geo.Cell{X: 1, Y: 3}, geo.Cell{X: 8, Y: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := unitMapper.CellCenter(tt.from), unitMapper.CellCenter(tt.to)
			a := AStar{}.FindPath(from, to, tt.oracle, unitMapper)
			th := ThetaStar{}.FindPath(from, to, tt.oracle, unitMapper)
			require.True(t, a.OK())
			require.True(t, th.OK())

			assert.LessOrEqual(t, th.Length(), a.Length()+1e-9)
			assert.LessOrEqual(t, th.Len(), a.Len())

			cells := th.Cells()
			for i := 1; i < len(cells); i++ {
				assert.True(t, geo.HasLineOfSight(tt.oracle, cells[i-1], cells[i]),
					"segment %v-%v crosses an obstacle", cells[i-1], cells[i])
			}
		})
	}
}

// xy builds a cell sequence from coordinate pairs.
func xy(coords ...int32) []geo.Cell {
	cells := make([]geo.Cell, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		cells = append(cells, geo.Cell{X: coords[i], Y: coords[i+1]})
	}
	return cells
}

func TestFindPathKeepsClosedCellsClosed(t *testing.T) {
	// (2,3) is closed via (2,4) with g = 3+sqrt2 before (1,4) offers it
	// g = 1+2*sqrt2; the offer is ignored, so A* returns the costlier route
	// through the first parent.
	w := gridWorld(t,
		"....",
		"....",
		".##.",
		"....",
		"#...",
		".#..",
		"....",
	)

	tests := []struct {
		name         string
		strategy     Strategy
		wantCells    []geo.Cell
		wantExpanded int
	}{
		{"astar", AStar{}, xy(0, 6, 1, 6, 2, 5, 2, 4, 2, 3, 3, 2, 2, 1, 2, 0), 14},
		{"thetastar", ThetaStar{}, xy(0, 6, 1, 4, 0, 2, 2, 0), 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.strategy.FindPath(center(0, 6), center(2, 0), w, unitMapper)
			require.True(t, res.OK(), res.Message())
			assert.Equal(t, tt.wantCells, res.Cells())
			assert.Equal(t, tt.wantExpanded, res.Expanded())
		})
	}

	t.Run("astar cost", func(t *testing.T) {
		res := AStar{}.FindPath(center(0, 6), center(2, 0), w, unitMapper)
		require.True(t, res.OK())
		assert.InDelta(t, 4+3*math.Sqrt2, gridCost(res.Cells()), 1e-9)
		// The route through (1,4), reachable only by re-opening (2,3).
		assert.Greater(t, gridCost(res.Cells()), 2+4*math.Sqrt2+1e-9)
	})
}

func TestThetaStarCornersAroundLWall(t *testing.T) {
	w := gridWorld(t,
		"..#...",
		"..#...",
		"..#...",
		"..###.",
		"......",
	)

	res := ThetaStar{}.FindPath(center(0, 0), center(4, 0), w, unitMapper)
	require.True(t, res.OK(), res.Message())

	// The start is its own parent: it appears once, as the first corner.
	assert.Equal(t, xy(0, 0, 2, 4, 4, 4, 5, 3, 4, 0), res.Cells())
	assert.Equal(t, 17, res.Expanded())

	a := AStar{}.FindPath(center(0, 0), center(4, 0), w, unitMapper)
	require.True(t, a.OK())
	assert.Equal(t, xy(0, 0, 1, 1, 1, 2, 1, 3, 2, 4, 3, 4, 4, 4, 5, 3, 4, 2, 4, 1, 4, 0), a.Cells())
	assert.Less(t, res.Length(), a.Length())
}

func TestFindPathDeterministic(t *testing.T) {
	w := gridWorld(t,
		"............",
		".####..####.",
		".#........#.",
		".#..####..#.",
		"....#..#....",
		".#..#..#..#.",
		".#........#.",
		".####..####.",
		"............",
	)

	for _, s := range allStrategies() {
		t.Run(s.Name(), func(t *testing.T) {
			first := s.FindPath(center(0, 0), center(5, 5), w, unitMapper)
			require.True(t, first.OK(), first.Message())
			for range 10 {
				again := s.FindPath(center(0, 0), center(5, 5), w, unitMapper)
				assert.Equal(t, first.Path(), again.Path())
				assert.Equal(t, first.Expanded(), again.Expanded())
			}
		})
	}
}

func TestFindPathConcurrent(t *testing.T) {
	w := openWorld(t, 20, 20)
	want := AStar{}.FindPath(center(0, 0), center(19, 13), w, unitMapper).Path()

	done := make(chan []geo.Vec2, 8)
	for range 8 {
		go func() {
			done <- AStar{}.FindPath(center(0, 0), center(19, 13), w, unitMapper).Path()
		}()
	}
	for range 8 {
		assert.Equal(t, want, <-done)
	}
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
