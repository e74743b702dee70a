package geo

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseBitmap reads an ASCII layer: one text line per row, '#' blocked,
// '.' or ' ' open. Row i maps to Y = origin.Y+i, column j to X = origin.X+j.
// Ragged lines are padded with open cells. Blank trailing lines are ignored.
func ParseBitmap(r io.Reader, origin Cell) (*Bitmap, error) {
	var rows []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		rows = append(rows, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading layer: %w", err)
	}
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("reading layer: no rows")
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return nil, fmt.Errorf("reading layer: no columns")
	}

	b, err := NewBitmap(origin, int32(width), int32(len(rows)))
	if err != nil {
		return nil, fmt.Errorf("reading layer: %w", err)
	}
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case GlyphBlocked:
				b.Set(Cell{X: origin.X + int32(x), Y: origin.Y + int32(y)}, true)
			case GlyphOpen, ' ':
			default:
				return nil, fmt.Errorf("reading layer: unexpected glyph %q at row %d col %d", row[x], y, x)
			}
		}
	}
	return b, nil
}

// ParseBitmapString is ParseBitmap over a string with origin (0,0).
func ParseBitmapString(s string) (*Bitmap, error) {
	return ParseBitmap(strings.NewReader(s), Cell{})
}

// String formats the bitmap in the ParseBitmap format.
func (b *Bitmap) String() string {
	var sb strings.Builder
	sb.Grow(int(b.height) * (int(b.width) + 1))
	for y := range b.height {
		for x := range b.width {
			if b.Blocked(Cell{X: b.origin.X + x, Y: b.origin.Y + y}) {
				sb.WriteByte(GlyphBlocked)
			} else {
				sb.WriteByte(GlyphOpen)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
