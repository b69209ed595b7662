// Package composite cuts tracked players out of the live color feed and
// places them over a static background.
package composite

import (
	"fmt"
	"math"

	"coordmap-compositor/internal/background"
	"coordmap-compositor/internal/frame"
	"coordmap-compositor/internal/mapping"
)

// Composite writes one output frame into dst. For every color pixel, the
// live color value is used when the mapped depth cell holds a tracked
// player; otherwise the background value is used.
//
// All inputs must have the fixed sensor dimensions. On a mismatch an error
// wrapping frame.ErrDimension is returned and dst is left untouched.
// On success every pixel of dst is overwritten.
func Composite(
	dst *frame.ColorRaster,
	bg *background.Background,
	color frame.ColorRaster,
	bodyIndex frame.BodyIndexRaster,
	m mapping.Map,
) error {
	if err := checkInputs(dst, bg, color, bodyIndex, m); err != nil {
		return err
	}
	compositeRange(dst.Pix, bg.Pix(), color.Pix, bodyIndex.Pix, m)
	return nil
}

func checkInputs(
	dst *frame.ColorRaster,
	bg *background.Background,
	color frame.ColorRaster,
	bodyIndex frame.BodyIndexRaster,
	m mapping.Map,
) error {
	if dst == nil {
		return fmt.Errorf("composite: nil output raster: %w", frame.ErrDimension)
	}
	if bg == nil {
		return fmt.Errorf("composite: nil background: %w", frame.ErrDimension)
	}
	if err := color.Validate(); err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	if color.Width != frame.ColorWidth || color.Height != frame.ColorHeight {
		return fmt.Errorf("composite: color is %dx%d, want %dx%d: %w",
			color.Width, color.Height, frame.ColorWidth, frame.ColorHeight, frame.ErrDimension)
	}
	if err := bodyIndex.Validate(); err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	if bodyIndex.Width != frame.DepthWidth || bodyIndex.Height != frame.DepthHeight {
		return fmt.Errorf("composite: body index is %dx%d, want %dx%d: %w",
			bodyIndex.Width, bodyIndex.Height, frame.DepthWidth, frame.DepthHeight, frame.ErrDimension)
	}
	if err := dst.Validate(); err != nil {
		return fmt.Errorf("composite: output: %w", err)
	}
	if dst.Width != frame.ColorWidth || dst.Height != frame.ColorHeight {
		return fmt.Errorf("composite: output is %dx%d, want %dx%d: %w",
			dst.Width, dst.Height, frame.ColorWidth, frame.ColorHeight, frame.ErrDimension)
	}
	if bg.Width() != frame.ColorWidth || bg.Height() != frame.ColorHeight ||
		len(bg.Pix()) != frame.ColorPixels*frame.BytesPerPixel {
		return fmt.Errorf("composite: background is %dx%d, want %dx%d: %w",
			bg.Width(), bg.Height(), frame.ColorWidth, frame.ColorHeight, frame.ErrDimension)
	}
	if len(m) != frame.ColorPixels {
		return fmt.Errorf("composite: map has %d entries, want %d: %w",
			len(m), frame.ColorPixels, frame.ErrDimension)
	}
	return nil
}

// compositeRange is the per-pixel kernel. It processes len(m) pixels; the
// other color buffers must hold at least that many. Body index lookups use
// the fixed depth grid stride.
func compositeRange(dst, bg, color, bodyIndex []uint8, m mapping.Map) {
	const bpp = frame.BytesPerPixel

	for i := range m {
		o := i * bpp
		src := bg
		if x, y, ok := depthCell(m[i]); ok {
			if bodyIndex[x+y*frame.DepthWidth] != frame.NoPlayer {
				src = color
			}
		}
		copy(dst[o:o+bpp], src[o:o+bpp])
	}
}

// depthCell rounds p half-up to the nearest depth cell and reports whether
// it falls inside the depth grid. The sentinel never does.
func depthCell(p mapping.DepthPoint) (x, y int, ok bool) {
	if !p.Valid() {
		return 0, 0, false
	}
	fx := math.Floor(float64(p.X) + 0.5)
	fy := math.Floor(float64(p.Y) + 0.5)
	// Compare in float space so NaN and huge values cannot overflow int.
	if !(fx >= 0 && fx < frame.DepthWidth && fy >= 0 && fy < frame.DepthHeight) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

// Coverage returns how many color pixels map onto a tracked player.
func Coverage(m mapping.Map, bodyIndex frame.BodyIndexRaster) int {
	if len(bodyIndex.Pix) < frame.DepthPixels {
		return 0
	}
	n := 0
	for _, p := range m {
		if x, y, ok := depthCell(p); ok && bodyIndex.Pix[x+y*frame.DepthWidth] != frame.NoPlayer {
			n++
		}
	}
	return n
}
