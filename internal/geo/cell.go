package geo

import "fmt"

// Cell is an integer grid coordinate. Value type, usable as a map key.
type Cell struct {
	X, Y int32
}

// Add returns c offset by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Sub returns the offset from o to c.
func (c Cell) Sub(o Cell) Cell {
	return Cell{X: c.X - o.X, Y: c.Y - o.Y}
}

// IsDiagonalTo reports whether both coordinate deltas to o are non-zero.
func (c Cell) IsDiagonalTo(o Cell) bool {
	return c.X != o.X && c.Y != o.Y
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
