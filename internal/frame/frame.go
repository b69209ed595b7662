// Package frame defines the fixed sensor raster formats and the co-timed
// frame triple handed from acquisition to the compositor.
package frame

import (
	"errors"
	"fmt"
	"time"
)

// Sensor grid dimensions. These are fixed for the session.
const (
	DepthWidth  = 512
	DepthHeight = 424
	ColorWidth  = 1920
	ColorHeight = 1080

	DepthPixels = DepthWidth * DepthHeight
	ColorPixels = ColorWidth * ColorHeight
)

// BytesPerPixel is the color raster pixel size (B, G, R, X).
const BytesPerPixel = 4

// NoPlayer is the body index label for a depth cell with no tracked player.
const NoPlayer uint8 = 0xFF

// ErrDimension reports a raster whose dimensions or buffer length do not
// match what the pipeline expects. It is frame-fatal, never process-fatal.
var ErrDimension = errors.New("raster dimension mismatch")

// DepthRaster holds 16-bit depth readings in millimetres, row-major.
type DepthRaster struct {
	Width  int
	Height int
	Pix    []uint16 // len = W*H
}

// NewDepthRaster allocates a zeroed depth raster.
func NewDepthRaster(w, h int) DepthRaster {
	return DepthRaster{Width: w, Height: h, Pix: make([]uint16, w*h)}
}

// Validate checks that the buffer length matches the dimensions.
func (r DepthRaster) Validate() error {
	if r.Width <= 0 || r.Height <= 0 || len(r.Pix) != r.Width*r.Height {
		return fmt.Errorf("depth %dx%d with %d samples: %w", r.Width, r.Height, len(r.Pix), ErrDimension)
	}
	return nil
}

// At returns the depth reading at (x, y).
func (r DepthRaster) At(x, y int) uint16 {
	return r.Pix[y*r.Width+x]
}

// ColorRaster holds 32-bit pixels as BGRX interleaved bytes, row-major.
type ColorRaster struct {
	Width  int
	Height int
	Pix    []uint8 // len = W*H*4
}

// NewColorRaster allocates a zeroed color raster.
func NewColorRaster(w, h int) *ColorRaster {
	return &ColorRaster{Width: w, Height: h, Pix: make([]uint8, w*h*BytesPerPixel)}
}

// Validate checks that the buffer length matches the dimensions.
func (r ColorRaster) Validate() error {
	if r.Width <= 0 || r.Height <= 0 || len(r.Pix) != r.Width*r.Height*BytesPerPixel {
		return fmt.Errorf("color %dx%d with %d bytes: %w", r.Width, r.Height, len(r.Pix), ErrDimension)
	}
	return nil
}

// Len returns the number of pixels.
func (r ColorRaster) Len() int {
	return r.Width * r.Height
}

// BodyIndexRaster holds one player label per depth cell; NoPlayer marks
// cells with nobody tracked.
type BodyIndexRaster struct {
	Width  int
	Height int
	Pix    []uint8 // len = W*H
}

// NewBodyIndexRaster allocates a raster with every cell set to NoPlayer.
func NewBodyIndexRaster(w, h int) BodyIndexRaster {
	pix := make([]uint8, w*h)
	for i := range pix {
		pix[i] = NoPlayer
	}
	return BodyIndexRaster{Width: w, Height: h, Pix: pix}
}

// Validate checks that the buffer length matches the dimensions.
func (r BodyIndexRaster) Validate() error {
	if r.Width <= 0 || r.Height <= 0 || len(r.Pix) != r.Width*r.Height {
		return fmt.Errorf("body index %dx%d with %d labels: %w", r.Width, r.Height, len(r.Pix), ErrDimension)
	}
	return nil
}

// Frame is one co-timed capture from the sensor.
type Frame struct {
	Depth     DepthRaster
	Color     ColorRaster
	BodyIndex BodyIndexRaster
	Time      time.Duration // sensor-relative capture time
}

// New allocates an empty frame at the fixed sensor dimensions.
func New() Frame {
	return Frame{
		Depth:     NewDepthRaster(DepthWidth, DepthHeight),
		Color:     *NewColorRaster(ColorWidth, ColorHeight),
		BodyIndex: NewBodyIndexRaster(DepthWidth, DepthHeight),
	}
}

// Validate checks every raster against the fixed sensor dimensions.
func (f Frame) Validate() error {
	if err := f.Depth.Validate(); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	if f.Depth.Width != DepthWidth || f.Depth.Height != DepthHeight {
		return fmt.Errorf("frame: depth is %dx%d, want %dx%d: %w",
			f.Depth.Width, f.Depth.Height, DepthWidth, DepthHeight, ErrDimension)
	}
	if err := f.Color.Validate(); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	if f.Color.Width != ColorWidth || f.Color.Height != ColorHeight {
		return fmt.Errorf("frame: color is %dx%d, want %dx%d: %w",
			f.Color.Width, f.Color.Height, ColorWidth, ColorHeight, ErrDimension)
	}
	if err := f.BodyIndex.Validate(); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	if f.BodyIndex.Width != DepthWidth || f.BodyIndex.Height != DepthHeight {
		return fmt.Errorf("frame: body index is %dx%d, want %dx%d: %w",
			f.BodyIndex.Width, f.BodyIndex.Height, DepthWidth, DepthHeight, ErrDimension)
	}
	return nil
}
