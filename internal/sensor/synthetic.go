package sensor

import (
	"io"
	"math"
	"time"

	"coordmap-compositor/internal/frame"
)

// Synthetic renders a deterministic scene: a wall at WallDepth with a single
// elliptical "player" walking left and right in front of it.
type Synthetic struct {
	// Frames is the number of frames to produce; zero means unlimited.
	Frames int
	// Interval is the capture time between consecutive frames.
	Interval time.Duration

	WallDepth   uint16
	PlayerDepth uint16

	n int
}

// NewSynthetic returns a 30 fps scene producing n frames.
func NewSynthetic(n int) *Synthetic {
	return &Synthetic{
		Frames:      n,
		Interval:    time.Second / 30,
		WallDepth:   3000,
		PlayerDepth: 1800,
	}
}

// Poll implements Source. A synthetic frame is always ready.
func (s *Synthetic) Poll() (frame.Frame, bool, error) {
	if s.Frames > 0 && s.n >= s.Frames {
		return frame.Frame{}, false, io.EOF
	}
	f := s.Render(s.n)
	s.n++
	return f, true, nil
}

// PlayerCentre returns the player's depth-grid centre in frame i.
func (s *Synthetic) PlayerCentre(i int) (cx, cy float64) {
	phase := float64(i) * 2 * math.Pi / 120
	return frame.DepthWidth/2 + 120*math.Sin(phase), frame.DepthHeight / 2
}

// Render draws frame i without advancing the source.
func (s *Synthetic) Render(i int) frame.Frame {
	f := frame.New()
	f.Time = time.Duration(i) * s.Interval

	cx, cy := s.PlayerCentre(i)
	const rx, ry = 40.0, 150.0
	for y := 0; y < frame.DepthHeight; y++ {
		for x := 0; x < frame.DepthWidth; x++ {
			o := y*frame.DepthWidth + x
			dx := (float64(x) - cx) / rx
			dy := (float64(y) - cy) / ry
			if dx*dx+dy*dy <= 1 {
				f.Depth.Pix[o] = s.PlayerDepth
				f.BodyIndex.Pix[o] = 0
			} else {
				f.Depth.Pix[o] = s.WallDepth
			}
		}
	}

	// Diagonal color ramp that shifts with time so frames are distinguishable.
	shift := i * 4
	for y := 0; y < frame.ColorHeight; y++ {
		row := y * frame.ColorWidth * frame.BytesPerPixel
		for x := 0; x < frame.ColorWidth; x++ {
			o := row + x*frame.BytesPerPixel
			f.Color.Pix[o] = uint8((x + shift) >> 3)
			f.Color.Pix[o+1] = uint8((y + shift) >> 2)
			f.Color.Pix[o+2] = uint8((x + y) >> 4)
			f.Color.Pix[o+3] = 255
		}
	}
	return f
}
