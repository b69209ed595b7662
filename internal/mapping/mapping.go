// Package mapping resolves, for every color pixel, the matching coordinate in
// depth-grid space.
package mapping

import (
	"errors"
	"math"

	"coordmap-compositor/internal/frame"
)

// ErrInvalidInput reports rasters whose pixel counts cannot be mapped.
var ErrInvalidInput = errors.New("mapping: invalid input")

// DepthPoint is a fractional coordinate in depth-grid space.
type DepthPoint struct {
	X float32
	Y float32
}

var negInf = float32(math.Inf(-1))

// Invalid marks a color pixel with no depth counterpart.
var Invalid = DepthPoint{X: negInf, Y: negInf}

// Valid reports whether p is a real coordinate. Only the exact (-inf, -inf)
// pair is invalid; any other value, however extreme, must still be
// bounds-checked by the caller.
func (p DepthPoint) Valid() bool {
	return !(p.X == negInf && p.Y == negInf)
}

// Map holds one DepthPoint per color pixel in row-major scan order.
type Map []DepthPoint

// NewMap allocates a map for n color pixels, all invalid.
func NewMap(n int) Map {
	m := make(Map, n)
	for i := range m {
		m[i] = Invalid
	}
	return m
}

// Lookup returns the depth coordinate for color pixel i, or false when the
// pixel has no correspondence.
func (m Map) Lookup(i int) (DepthPoint, bool) {
	p := m[i]
	return p, p.Valid()
}

// Mapper fills dst with the depth coordinate of every color pixel.
// Implementations overwrite every entry of dst on success.
type Mapper interface {
	MapColorToDepth(depth frame.DepthRaster, colorCount int, dst Map) error
}
