package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayersWalkability(t *testing.T) {
	walls := NewSparse(Cell{1, 1})
	water := NewSparse(Cell{2, 2})
	layers := Layers{walls, nil, water}

	assert.True(t, layers.IsWalkable(Cell{0, 0}))
	assert.False(t, layers.IsWalkable(Cell{1, 1}))
	assert.False(t, layers.IsWalkable(Cell{2, 2}))
	require.NoError(t, layers.Validate())
}

func TestLayersValidateEmpty(t *testing.T) {
	assert.ErrorIs(t, Layers{}.Validate(), ErrNoLayers)
	assert.ErrorIs(t, Layers(nil).Validate(), ErrNoLayers)
}

func TestBounds(t *testing.T) {
	b := Bounds{Min: Cell{-1, -1}, Max: Cell{2, 3}}

	assert.False(t, b.Blocked(Cell{-1, -1}))
	assert.False(t, b.Blocked(Cell{2, 3}))
	assert.True(t, b.Blocked(Cell{3, 0}))
	assert.True(t, b.Blocked(Cell{0, -2}))
	assert.Equal(t, int32(4), b.Width())
	assert.Equal(t, int32(5), b.Height())

	u := b.Union(Bounds{Min: Cell{5, 5}, Max: Cell{6, 6}})
	assert.Equal(t, Bounds{Min: Cell{-1, -1}, Max: Cell{6, 6}}, u)
}

func TestSparse(t *testing.T) {
	s := NewSparse(Cell{0, 0})
	s.Add(Cell{1, 0})
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Blocked(Cell{1, 0}))

	s.Remove(Cell{0, 0})
	assert.False(t, s.Blocked(Cell{0, 0}))
	assert.Equal(t, 1, s.Len())
}

func TestSparseFingerprintIgnoresInsertionOrder(t *testing.T) {
	a := NewSparse(Cell{1, 2}, Cell{3, 4}, Cell{-5, 0})
	b := NewSparse(Cell{-5, 0}, Cell{3, 4}, Cell{1, 2})
	c := NewSparse(Cell{1, 2})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestBitmapSetAndBlocked(t *testing.T) {
	b, err := NewBitmap(Cell{10, 20}, 5, 3)
	require.NoError(t, err)

	b.Set(Cell{10, 20}, true)
	b.Set(Cell{14, 22}, true)
	b.Set(Cell{100, 100}, true) // outside, ignored

	assert.True(t, b.Blocked(Cell{10, 20}))
	assert.True(t, b.Blocked(Cell{14, 22}))
	assert.False(t, b.Blocked(Cell{11, 20}))
	assert.False(t, b.Blocked(Cell{100, 100}))
	assert.Equal(t, 2, b.CountBlocked())

	b.Set(Cell{10, 20}, false)
	assert.False(t, b.Blocked(Cell{10, 20}))
	assert.Equal(t, Bounds{Min: Cell{10, 20}, Max: Cell{14, 22}}, b.Bounds())
}

func TestNewBitmapRejectsBadSize(t *testing.T) {
	_, err := NewBitmap(Cell{}, 0, 4)
	assert.Error(t, err)
	_, err = NewBitmap(Cell{}, 4, -1)
	assert.Error(t, err)
}

func TestParseBitmap(t *testing.T) {
	b, err := ParseBitmapString("..#\n#\n...\n\n")
	require.NoError(t, err)

	assert.Equal(t, int32(3), b.Width())
	assert.Equal(t, int32(3), b.Height())
	assert.True(t, b.Blocked(Cell{2, 0}))
	assert.True(t, b.Blocked(Cell{0, 1}))
	assert.False(t, b.Blocked(Cell{1, 1}))
	assert.Equal(t, "..#\n#..\n...\n", b.String())
}

func TestParseBitmapErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only blank lines", "\n\n"},
		{"bad glyph", "..x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBitmapString(tt.input)
			assert.Error(t, err)
		})
	}
}
