package mapping

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"coordmap-compositor/internal/frame"
)

// Calibration describes a linear color-to-depth registration.
//
// Color pixel (cx, cy) lands at depth coordinate
// (cx*ScaleX + OffsetX, cy*ScaleY + OffsetY).
type Calibration struct {
	ColorWidth int     `json:"color_width"`
	ScaleX     float64 `json:"scale_x"`
	ScaleY     float64 `json:"scale_y"`
	OffsetX    float64 `json:"offset_x"`
	OffsetY    float64 `json:"offset_y"`

	// Readings outside [MinDepth, MaxDepth] mm have no usable correspondence.
	MinDepth uint16 `json:"min_depth"`
	MaxDepth uint16 `json:"max_depth"`

	// Margin is how far (in depth cells) a coordinate may fall outside the
	// depth grid before it is treated as outside the field of view.
	Margin float64 `json:"margin"`
}

// DefaultCalibration approximates the registration of a 1920x1080 color
// camera against a 512x424 time-of-flight depth camera: the color view is
// wider than the depth view, so its left and right edges map outside.
func DefaultCalibration() Calibration {
	return Calibration{
		ColorWidth: frame.ColorWidth,
		ScaleX:     612.0 / frame.ColorWidth,
		ScaleY:     344.0 / frame.ColorHeight,
		OffsetX:    -50,
		OffsetY:    40,
		MinDepth:   500,
		MaxDepth:   4500,
		Margin:     1,
	}
}

// LoadCalibration reads a JSON calibration. Fields absent from the file keep
// their DefaultCalibration values. The color row width must match the fixed
// color grid.
func LoadCalibration(path string) (Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("mapping: read %s: %w", path, err)
	}

	cal := DefaultCalibration()
	if err := json.Unmarshal(data, &cal); err != nil {
		return Calibration{}, fmt.Errorf("mapping: parse %s: %w", path, err)
	}
	if cal.ColorWidth != frame.ColorWidth {
		return Calibration{}, fmt.Errorf("mapping: %s: color_width %d, want %d: %w",
			path, cal.ColorWidth, frame.ColorWidth, ErrInvalidInput)
	}
	return cal, nil
}

// Affine is a Mapper driven by a fixed Calibration.
type Affine struct {
	cal Calibration
}

// NewAffine returns a mapper for the given calibration.
func NewAffine(cal Calibration) *Affine {
	return &Affine{cal: cal}
}

// Calibration returns the registration in use.
func (a *Affine) Calibration() Calibration {
	return a.cal
}

// MapColorToDepth implements Mapper.
func (a *Affine) MapColorToDepth(depth frame.DepthRaster, colorCount int, dst Map) error {
	if err := depth.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	cw := a.cal.ColorWidth
	if colorCount <= 0 || cw <= 0 || colorCount%cw != 0 {
		return fmt.Errorf("%w: %d color pixels for row width %d", ErrInvalidInput, colorCount, cw)
	}
	if len(dst) != colorCount {
		return fmt.Errorf("%w: map holds %d entries, want %d", ErrInvalidInput, len(dst), colorCount)
	}

	dw, dh := depth.Width, depth.Height
	minX, maxX := -a.cal.Margin, float64(dw-1)+a.cal.Margin
	minY, maxY := -a.cal.Margin, float64(dh-1)+a.cal.Margin

	ch := colorCount / cw
	for cy := 0; cy < ch; cy++ {
		dy := float64(cy)*a.cal.ScaleY + a.cal.OffsetY
		row := cy * cw
		if dy < minY || dy > maxY {
			for cx := 0; cx < cw; cx++ {
				dst[row+cx] = Invalid
			}
			continue
		}
		iy := clampCell(dy, dh)
		for cx := 0; cx < cw; cx++ {
			dx := float64(cx)*a.cal.ScaleX + a.cal.OffsetX
			if dx < minX || dx > maxX {
				dst[row+cx] = Invalid
				continue
			}
			d := depth.At(clampCell(dx, dw), iy)
			if d == 0 || d < a.cal.MinDepth || d > a.cal.MaxDepth {
				dst[row+cx] = Invalid
				continue
			}
			dst[row+cx] = DepthPoint{X: float32(dx), Y: float32(dy)}
		}
	}
	return nil
}

// clampCell returns the nearest cell index in [0, n).
func clampCell(v float64, n int) int {
	i := int(math.Floor(v + 0.5))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
