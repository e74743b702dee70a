package geo

// Grid mapping defaults.
const (
	DefaultCellSize = 1.0
)

// ASCII layer glyphs.
const (
	GlyphBlocked = '#'
	GlyphOpen    = '.'
)

// Layer file conventions.
const (
	GridFileExt = ".grid"
	// BoundsLayerName is the synthetic layer LoadDir adds around the union of
	// all loaded bitmaps.
	BoundsLayerName = "bounds"
)

// Bitmap binary format.
const (
	bitmapFormatVersion byte = 0x01
	bitmapHeaderSize         = 1 + 4*4 // version + originX + originY + width + height
	maxBitmapSide            = 1 << 15
)
