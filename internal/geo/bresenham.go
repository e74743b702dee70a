package geo

// LineIterator walks the cells of a 2D Bresenham line from start to end,
// both inclusive. Diagonal steps move both axes at once, so the walk is
// 8-connected.
type LineIterator struct {
	current Cell
	target  Cell
	deltaX  int32
	deltaY  int32
	stepX   int32
	stepY   int32
	err     int32
	started bool
}

// NewLineIterator creates an iterator from start to end.
func NewLineIterator(start, end Cell) *LineIterator {
	it := &LineIterator{
		current: start,
		target:  end,
		deltaX:  abs32(end.X - start.X),
		deltaY:  abs32(end.Y - start.Y),
		stepX:   1,
		stepY:   1,
	}
	if start.X > end.X {
		it.stepX = -1
	}
	if start.Y > end.Y {
		it.stepY = -1
	}
	it.err = it.deltaX - it.deltaY
	return it
}

// Next advances to the next cell. The first call yields the start cell.
// Returns false once the end cell has been yielded.
func (it *LineIterator) Next() bool {
	if !it.started {
		it.started = true
		return true
	}
	if it.current == it.target {
		return false
	}

	e2 := 2 * it.err
	if e2 > -it.deltaY {
		it.err -= it.deltaY
		it.current.X += it.stepX
	}
	if e2 < it.deltaX {
		it.err += it.deltaX
		it.current.Y += it.stepY
	}
	return true
}

// Cell returns the current cell.
func (it *LineIterator) Cell() Cell { return it.current }

// Line returns every cell on the line from start to end.
func Line(start, end Cell) []Cell {
	cells := make([]Cell, 0, max(abs32(end.X-start.X), abs32(end.Y-start.Y))+1)
	it := NewLineIterator(start, end)
	for it.Next() {
		cells = append(cells, it.Cell())
	}
	return cells
}

// HasLineOfSight reports whether every rasterized cell between a and b,
// inclusive, is walkable. An obstacle touched only between samples, such as
// a blocked corner beside a diagonal step, is not detected.
func HasLineOfSight(oracle Oracle, a, b Cell) bool {
	it := NewLineIterator(a, b)
	for it.Next() {
		if !oracle.IsWalkable(it.Cell()) {
			return false
		}
	}
	return true
}
