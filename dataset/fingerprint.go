package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
)

// canonicalNaN collapses every NaN bit pattern to a single value so that
// frames with the same missing cells fingerprint identically.
const canonicalNaN = 0x7FF8000000000000

// Fingerprint returns a sha256 hex digest over the frame's schema and cell
// values. Two frames fingerprint identically exactly when they have the same
// column names, kinds, level tables, and values, with all NaN cells treated
// as equal.
func (f *Frame) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(f.nrows))
	h.Write(buf[:])

	for _, c := range f.cols {
		h.Write([]byte(c.Name))
		h.Write([]byte{0, byte(c.Kind)})
		for _, level := range c.Levels {
			h.Write([]byte(level))
			h.Write([]byte{0})
		}
		for _, v := range c.Values {
			bits := math.Float64bits(v)
			if math.IsNaN(v) {
				bits = canonicalNaN
			}
			binary.LittleEndian.PutUint64(buf[:], bits)
			h.Write(buf[:])
		}
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}
