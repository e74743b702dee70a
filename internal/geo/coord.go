package geo

import (
	"fmt"
	"math"
)

// Vec2 is a continuous world-space position.
type Vec2 struct {
	X, Y float64
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v*k.
func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// MoveTowards moves from toward to by at most maxDelta without overshooting.
func MoveTowards(from, to Vec2, maxDelta float64) Vec2 {
	d := to.Sub(from)
	dist := d.Len()
	if dist <= maxDelta || dist == 0 {
		return to
	}
	return from.Add(d.Scale(maxDelta / dist))
}

// PathLength returns the summed Euclidean length of consecutive segments.
func PathLength(path []Vec2) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i-1].Dist(path[i])
	}
	return total
}

// Mapper converts between world positions and grid cells.
// Implementations must satisfy WorldToCell(CellCenter(c)) == c.
type Mapper interface {
	WorldToCell(p Vec2) Cell
	CellCenter(c Cell) Vec2
}

// GridMapper is a uniform square-cell Mapper anchored at Origin.
type GridMapper struct {
	CellSize float64
	Origin   Vec2
}

// NewGridMapper creates a GridMapper. cellSize must be positive.
func NewGridMapper(cellSize float64, origin Vec2) (GridMapper, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return GridMapper{}, fmt.Errorf("invalid cell size %v", cellSize)
	}
	return GridMapper{CellSize: cellSize, Origin: origin}, nil
}

// WorldToCell returns the cell containing p.
func (m GridMapper) WorldToCell(p Vec2) Cell {
	return Cell{
		X: int32(math.Floor((p.X - m.Origin.X) / m.CellSize)),
		Y: int32(math.Floor((p.Y - m.Origin.Y) / m.CellSize)),
	}
}

// CellCenter returns the world-space center of c.
func (m GridMapper) CellCenter(c Cell) Vec2 {
	return Vec2{
		X: m.Origin.X + (float64(c.X)+0.5)*m.CellSize,
		Y: m.Origin.Y + (float64(c.Y)+0.5)*m.CellSize,
	}
}
