package pathfind

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/udisondev/gridnav/internal/geo"
)

// neighborOffsets lists the 8 candidate moves. The order is part of the
// observable tie-breaking: equal-f cells are expanded in discovery order.
var neighborOffsets = [8]geo.Cell{
	{X: -1, Y: 0},  // left
	{X: 1, Y: 0},   // right
	{X: 0, Y: 1},   // up
	{X: 0, Y: -1},  // down
	{X: -1, Y: 1},  // left-up
	{X: 1, Y: 1},   // right-up
	{X: -1, Y: -1}, // left-down
	{X: 1, Y: -1},  // right-down
}

const (
	costCardinal = 1.0
	costDiagonal = math.Sqrt2
)

// stepCost returns the cost of moving between adjacent cells.
func stepCost(from, to geo.Cell) float64 {
	if from.IsDiagonalTo(to) {
		return costDiagonal
	}
	return costCardinal
}

// manhattan is the A* heuristic.
func manhattan(a, b geo.Cell) float64 {
	dx := math.Abs(float64(a.X) - float64(b.X))
	dy := math.Abs(float64(a.Y) - float64(b.Y))
	return dx + dy
}

// euclidean is the Theta* heuristic and any-angle segment cost.
func euclidean(a, b geo.Cell) float64 {
	dx := float64(a.X) - float64(b.X)
	dy := float64(a.Y) - float64(b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// node is a frontier entry.
type node struct {
	cell  geo.Cell
	f     float64
	seq   uint64 // first-insertion order, tie-break for equal f
	index int    // heap index
}

// nodeHeap implements container/heap, min-heap by (f, seq).
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)   { n := x.(*node); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // GC
	item.index = -1
	*h = old[:n-1]
	return item
}

// frontier is the open set. A cell appears at most once; updates happen in
// place and keep the cell's original seq.
type frontier struct {
	heap    nodeHeap
	byCell  map[geo.Cell]*node
	nextSeq uint64
}

func newFrontier() *frontier {
	return &frontier{byCell: make(map[geo.Cell]*node, 64)}
}

func (fr *frontier) Len() int { return fr.heap.Len() }

func (fr *frontier) contains(c geo.Cell) bool {
	_, ok := fr.byCell[c]
	return ok
}

// upsert inserts c with priority f, or lowers/raises the priority of an
// existing entry without changing its tie-break position.
func (fr *frontier) upsert(c geo.Cell, f float64) {
	if n, ok := fr.byCell[c]; ok {
		n.f = f
		heap.Fix(&fr.heap, n.index)
		return
	}
	n := &node{cell: c, f: f, seq: fr.nextSeq}
	fr.nextSeq++
	heap.Push(&fr.heap, n)
	fr.byCell[c] = n
}

// pop removes and returns the lowest-(f, seq) cell.
func (fr *frontier) pop() geo.Cell {
	n := heap.Pop(&fr.heap).(*node)
	delete(fr.byCell, n.cell)
	return n.cell
}

// searchState is everything one FindPath call owns.
type searchState struct {
	open     *frontier
	closed   map[geo.Cell]struct{}
	g        map[geo.Cell]float64
	parent   map[geo.Cell]geo.Cell
	expanded int
}

func newSearchState() *searchState {
	return &searchState{
		open:   newFrontier(),
		closed: make(map[geo.Cell]struct{}, 256),
		g:      make(map[geo.Cell]float64, 256),
		parent: make(map[geo.Cell]geo.Cell, 256),
	}
}

func (s *searchState) isClosed(c geo.Cell) bool {
	_, ok := s.closed[c]
	return ok
}

// validator is implemented by oracles that can be malformed (empty layer set).
type validator interface {
	Validate() error
}

// prepare checks references and endpoints. done is true when res is final:
// a failure, or the single-point path for start and target in one cell.
func prepare(strategy string, start, target geo.Vec2, oracle geo.Oracle, mapper geo.Mapper) (s, t geo.Cell, res Result, done bool) {
	if oracle == nil || mapper == nil {
		return s, t, Failure(strategy, ReasonInvalidReferences, "missing oracle or mapper", 0), true
	}
	if v, ok := oracle.(validator); ok {
		if err := v.Validate(); err != nil {
			return s, t, Failure(strategy, ReasonInvalidReferences, fmt.Sprintf("invalid oracle: %v", err), 0), true
		}
	}

	s = mapper.WorldToCell(start)
	t = mapper.WorldToCell(target)

	if !oracle.IsWalkable(s) {
		return s, t, Failure(strategy, ReasonUnwalkableEndpoint, fmt.Sprintf("start cell %v is not walkable", s), 0), true
	}
	if !oracle.IsWalkable(t) {
		return s, t, Failure(strategy, ReasonUnwalkableEndpoint, fmt.Sprintf("target cell %v is not walkable", t), 0), true
	}

	if s == t {
		return s, t, Success(strategy, []geo.Vec2{mapper.CellCenter(s)}, []geo.Cell{s}, 0), true
	}
	return s, t, Result{}, false
}

// reconstruct walks parents back from target until a cell has no parent or
// is its own parent, then returns the start→target cells and world points.
func reconstruct(parent map[geo.Cell]geo.Cell, target geo.Cell, mapper geo.Mapper) ([]geo.Vec2, []geo.Cell) {
	cells := make([]geo.Cell, 0, 32)
	cells = append(cells, target)
	for cur := target; ; {
		prev, ok := parent[cur]
		if !ok || prev == cur {
			break
		}
		cells = append(cells, prev)
		cur = prev
	}

	// Reverse (built backward)
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}

	path := make([]geo.Vec2, len(cells))
	for i, c := range cells {
		path[i] = mapper.CellCenter(c)
	}
	return path, cells
}
