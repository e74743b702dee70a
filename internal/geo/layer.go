package geo

import (
	"fmt"
	"slices"
)

// Bounds blocks every cell outside the inclusive rectangle [Min, Max].
type Bounds struct {
	Min, Max Cell
}

// Blocked implements Layer.
func (b Bounds) Blocked(c Cell) bool {
	return !b.Contains(c)
}

// Contains reports whether c lies inside the rectangle.
func (b Bounds) Contains(c Cell) bool {
	return c.X >= b.Min.X && c.X <= b.Max.X && c.Y >= b.Min.Y && c.Y <= b.Max.Y
}

// Width returns the number of columns.
func (b Bounds) Width() int32 { return b.Max.X - b.Min.X + 1 }

// Height returns the number of rows.
func (b Bounds) Height() int32 { return b.Max.Y - b.Min.Y + 1 }

// Union returns the smallest rectangle containing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		Min: Cell{X: min(b.Min.X, o.Min.X), Y: min(b.Min.Y, o.Min.Y)},
		Max: Cell{X: max(b.Max.X, o.Max.X), Y: max(b.Max.Y, o.Max.Y)},
	}
}

// Fingerprint implements Fingerprinter.
func (b Bounds) Fingerprint() string {
	return fingerprintString(fmt.Sprintf("bounds:%d:%d:%d:%d", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y))
}

// Sparse is a set of individually blocked cells.
// Not safe for concurrent mutation; build it before handing it to a search.
type Sparse struct {
	cells map[Cell]struct{}
}

// NewSparse creates a Sparse layer blocking the given cells.
func NewSparse(cells ...Cell) *Sparse {
	s := &Sparse{cells: make(map[Cell]struct{}, len(cells))}
	for _, c := range cells {
		s.cells[c] = struct{}{}
	}
	return s
}

// Add blocks c.
func (s *Sparse) Add(c Cell) { s.cells[c] = struct{}{} }

// Remove unblocks c.
func (s *Sparse) Remove(c Cell) { delete(s.cells, c) }

// Len returns the number of blocked cells.
func (s *Sparse) Len() int { return len(s.cells) }

// Blocked implements Layer.
func (s *Sparse) Blocked(c Cell) bool {
	_, ok := s.cells[c]
	return ok
}

// Fingerprint implements Fingerprinter.
func (s *Sparse) Fingerprint() string {
	cells := make([]Cell, 0, len(s.cells))
	for c := range s.cells {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, func(a, b Cell) int {
		if a.Y != b.Y {
			return int(a.Y) - int(b.Y)
		}
		return int(a.X) - int(b.X)
	})
	h := newFingerprintHash()
	for _, c := range cells {
		writeInt32(h, c.X)
		writeInt32(h, c.Y)
	}
	return sumHex(h)
}

// Bitmap is a dense, bounded obstacle layer with one bit per cell.
// Cells outside the bitmap are reported as not blocked.
type Bitmap struct {
	origin Cell
	width  int32
	height int32
	bits   []uint64
}

// NewBitmap creates an all-open bitmap of width×height cells starting at origin.
func NewBitmap(origin Cell, width, height int32) (*Bitmap, error) {
	if width <= 0 || height <= 0 || width > maxBitmapSide || height > maxBitmapSide {
		return nil, fmt.Errorf("invalid bitmap size %dx%d", width, height)
	}
	n := int(width) * int(height)
	return &Bitmap{
		origin: origin,
		width:  width,
		height: height,
		bits:   make([]uint64, (n+63)/64),
	}, nil
}

// Bounds returns the rectangle covered by the bitmap.
func (b *Bitmap) Bounds() Bounds {
	return Bounds{
		Min: b.origin,
		Max: Cell{X: b.origin.X + b.width - 1, Y: b.origin.Y + b.height - 1},
	}
}

// Width returns the number of columns.
func (b *Bitmap) Width() int32 { return b.width }

// Height returns the number of rows.
func (b *Bitmap) Height() int32 { return b.height }

// Origin returns the minimum corner.
func (b *Bitmap) Origin() Cell { return b.origin }

func (b *Bitmap) index(c Cell) (int, bool) {
	lx := c.X - b.origin.X
	ly := c.Y - b.origin.Y
	if lx < 0 || ly < 0 || lx >= b.width || ly >= b.height {
		return 0, false
	}
	return int(ly)*int(b.width) + int(lx), true
}

// Set marks c as blocked or open. Cells outside the bitmap are ignored.
func (b *Bitmap) Set(c Cell, blocked bool) {
	i, ok := b.index(c)
	if !ok {
		return
	}
	if blocked {
		b.bits[i/64] |= 1 << (i % 64)
	} else {
		b.bits[i/64] &^= 1 << (i % 64)
	}
}

// Blocked implements Layer.
func (b *Bitmap) Blocked(c Cell) bool {
	i, ok := b.index(c)
	if !ok {
		return false
	}
	return b.bits[i/64]&(1<<(i%64)) != 0
}

// CountBlocked returns the number of blocked cells.
func (b *Bitmap) CountBlocked() int {
	n := 0
	for y := range b.height {
		for x := range b.width {
			if b.Blocked(Cell{X: b.origin.X + x, Y: b.origin.Y + y}) {
				n++
			}
		}
	}
	return n
}
