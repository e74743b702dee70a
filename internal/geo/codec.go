package geo

import (
	"encoding/binary"
	"fmt"
)

// MarshalBinary encodes the bitmap.
// Format (little-endian): 1 byte version, int32 originX, int32 originY,
// uint32 width, uint32 height, then ceil(width*height/8) bytes of cell bits
// in row-major order, LSB first.
func (b *Bitmap) MarshalBinary() ([]byte, error) {
	n := int(b.width) * int(b.height)
	data := make([]byte, bitmapHeaderSize, bitmapHeaderSize+(n+7)/8)
	data[0] = bitmapFormatVersion
	binary.LittleEndian.PutUint32(data[1:], uint32(b.origin.X))
	binary.LittleEndian.PutUint32(data[5:], uint32(b.origin.Y))
	binary.LittleEndian.PutUint32(data[9:], uint32(b.width))
	binary.LittleEndian.PutUint32(data[13:], uint32(b.height))

	packed := make([]byte, (n+7)/8)
	for i := range n {
		if b.bits[i/64]&(1<<(i%64)) != 0 {
			packed[i/8] |= 1 << (i % 8)
		}
	}
	return append(data, packed...), nil
}

// UnmarshalBinary decodes data produced by MarshalBinary into b.
func (b *Bitmap) UnmarshalBinary(data []byte) error {
	decoded, err := ParseBitmapBinary(data)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}

// ParseBitmapBinary decodes a bitmap from its binary form.
func ParseBitmapBinary(data []byte) (*Bitmap, error) {
	if len(data) < bitmapHeaderSize {
		return nil, fmt.Errorf("parse bitmap: header needs %d bytes, got %d", bitmapHeaderSize, len(data))
	}
	if data[0] != bitmapFormatVersion {
		return nil, fmt.Errorf("parse bitmap: unknown format version 0x%02X", data[0])
	}

	origin := Cell{
		X: int32(binary.LittleEndian.Uint32(data[1:])),
		Y: int32(binary.LittleEndian.Uint32(data[5:])),
	}
	width := binary.LittleEndian.Uint32(data[9:])
	height := binary.LittleEndian.Uint32(data[13:])
	if width == 0 || height == 0 || width > maxBitmapSide || height > maxBitmapSide {
		return nil, fmt.Errorf("parse bitmap: invalid size %dx%d", width, height)
	}

	b, err := NewBitmap(origin, int32(width), int32(height))
	if err != nil {
		return nil, fmt.Errorf("parse bitmap: %w", err)
	}

	n := int(width) * int(height)
	payload := data[bitmapHeaderSize:]
	if len(payload) != (n+7)/8 {
		return nil, fmt.Errorf("parse bitmap: payload has %d bytes, want %d", len(payload), (n+7)/8)
	}
	for i := range n {
		if payload[i/8]&(1<<(i%8)) != 0 {
			b.bits[i/64] |= 1 << (i % 64)
		}
	}
	return b, nil
}
