package geo

import (
	"encoding/binary"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Fingerprinter is implemented by layers that can summarize their content.
// Equal content yields equal fingerprints.
type Fingerprinter interface {
	Fingerprint() string
}

// fingerprintSize is the BLAKE2b digest size in bytes (128-bit keys).
const fingerprintSize = 16

func newFingerprintHash() hash.Hash {
	h, err := blake2b.New(fingerprintSize, nil)
	if err != nil {
		// Only fails for invalid size or key.
		panic(err)
	}
	return h
}

func sumHex(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

func writeInt32(h hash.Hash, v int32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	h.Write(buf[:])
}

func fingerprintString(s string) string {
	h := newFingerprintHash()
	h.Write([]byte(s))
	return sumHex(h)
}

// Fingerprint implements Fingerprinter over the binary encoding.
func (b *Bitmap) Fingerprint() string {
	data, _ := b.MarshalBinary()
	h := newFingerprintHash()
	h.Write(data)
	return sumHex(h)
}
