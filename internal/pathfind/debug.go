package pathfind

import (
	"strings"

	"github.com/udisondev/gridnav/internal/geo"
)

// Render glyphs.
const (
	GlyphWaypoint = '*'
	GlyphSegment  = 'o'
	GlyphStart    = 'S'
	GlyphTarget   = 'T'
)

// Render draws the region of oracle inside bounds as ASCII, one line per row
// with Y increasing downward like the .grid format. Waypoints are marked '*',
// cells crossed between consecutive waypoints 'o', endpoints 'S' and 'T'.
func Render(oracle geo.Oracle, bounds geo.Bounds, cells []geo.Cell) string {
	marks := make(map[geo.Cell]byte, len(cells)*2)
	for i := 1; i < len(cells); i++ {
		for _, c := range geo.Line(cells[i-1], cells[i]) {
			marks[c] = GlyphSegment
		}
	}
	for _, c := range cells {
		marks[c] = GlyphWaypoint
	}
	if len(cells) > 0 {
		marks[cells[0]] = GlyphStart
		marks[cells[len(cells)-1]] = GlyphTarget
	}

	var sb strings.Builder
	sb.Grow(int(bounds.Height()) * (int(bounds.Width()) + 1))
	for y := bounds.Min.Y; y <= bounds.Max.Y; y++ {
		for x := bounds.Min.X; x <= bounds.Max.X; x++ {
			c := geo.Cell{X: x, Y: y}
			if m, ok := marks[c]; ok {
				sb.WriteByte(m)
				continue
			}
			if oracle != nil && !oracle.IsWalkable(c) {
				sb.WriteByte(geo.GlyphBlocked)
			} else {
				sb.WriteByte(geo.GlyphOpen)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
