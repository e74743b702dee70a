package testutil

import (
	"strings"
	"testing"

	"github.com/udisondev/gridnav/internal/geo"
)

// UnitMapper maps one world unit to one cell with the origin at (0,0).
var UnitMapper = geo.GridMapper{CellSize: 1}

// Center returns the world-space center of cell (x, y) under UnitMapper.
func Center(x, y int32) geo.Vec2 {
	return UnitMapper.CellCenter(geo.Cell{X: x, Y: y})
}

// Bitmap parses ASCII rows ('#' blocked, '.' open) anchored at (0,0).
func Bitmap(tb testing.TB, rows ...string) *geo.Bitmap {
	tb.Helper()

	bm, err := geo.ParseBitmapString(strings.Join(rows, "\n"))
	if err != nil {
		tb.Fatalf("parsing grid rows: %v", err)
	}
	return bm
}

// Layers returns a "walls" layer built from rows plus a bounds layer
// so that cells outside the grid are blocked.
func Layers(tb testing.TB, rows ...string) []geo.NamedLayer {
	tb.Helper()
	return geo.WithBounds([]geo.NamedLayer{{Name: "walls", Layer: Bitmap(tb, rows...)}})
}

// Snapshot builds an immutable bounded oracle from rows.
func Snapshot(tb testing.TB, rows ...string) *geo.Snapshot {
	tb.Helper()
	return geo.NewSnapshot(Layers(tb, rows...))
}

// World builds a loaded world from rows.
func World(tb testing.TB, rows ...string) *geo.World {
	tb.Helper()

	w := geo.NewWorld()
	w.Replace(Layers(tb, rows...))
	return w
}

// OpenRows returns h rows of w open cells.
func OpenRows(w, h int) []string {
	rows := make([]string, h)
	for i := range rows {
		rows[i] = strings.Repeat(".", w)
	}
	return rows
}
