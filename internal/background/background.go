// Package background provisions the static backdrop shown wherever no
// tracked player is present.
package background

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/ftrvxmtrx/tga"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"coordmap-compositor/internal/frame"
)

// Fallback is used when no background image can be loaded.
var Fallback = color.NRGBA{R: 0, G: 255, B: 0, A: 255}

// Background is a BGRX raster that never changes after construction.
// It is safe to share across goroutines.
type Background struct {
	width  int
	height int
	pix    []uint8
}

// Width returns the raster width in pixels.
func (b *Background) Width() int { return b.width }

// Height returns the raster height in pixels.
func (b *Background) Height() int { return b.height }

// Pix returns the BGRX bytes. Callers must not modify them.
func (b *Background) Pix() []uint8 { return b.pix }

// Solid returns a w x h background filled with c.
func Solid(w, h int, c color.NRGBA) *Background {
	r := frame.NewColorRaster(w, h)
	r.Fill(c)
	return &Background{width: w, height: h, pix: r.Pix}
}

// Load decodes the image at path and rescales it to exactly w x h.
func Load(path string, w, h int) (*Background, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("background: read %s: %w", path, err)
	}
	return Decode(raw, w, h)
}

// Decode decodes an encoded image (PNG, JPEG, GIF, BMP, TGA or WebP) and
// rescales it to exactly w x h.
func Decode(data []byte, w, h int) (*Background, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("background: decode: %w", err)
	}

	scaled := Scale(img, w, h)
	sb := scaled.Bounds()
	if sb.Dx() != w || sb.Dy() != h {
		return nil, fmt.Errorf("background: %s scaled to %dx%d, want %dx%d", format, sb.Dx(), sb.Dy(), w, h)
	}

	r := frame.ColorFromImage(scaled)
	return &Background{width: w, height: h, pix: r.Pix}, nil
}

// Scale resizes img to w x h with cubic (Catmull-Rom) filtering. Images that
// already have the target size are returned as-is.
func Scale(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Provision loads the background at path, falling back to a solid fill on
// any failure. It never returns nil.
func Provision(path string, w, h int, fallback color.NRGBA, log logrus.FieldLogger) *Background {
	if path == "" {
		log.WithField("color", hexOf(fallback)).Info("No background image configured, using solid fill")
		return Solid(w, h, fallback)
	}

	bg, err := Load(path, w, h)
	if err != nil {
		log.WithFields(logrus.Fields{
			"path":  path,
			"color": hexOf(fallback),
			"error": err.Error(),
		}).Warn("Background image unavailable, using solid fill")
		return Solid(w, h, fallback)
	}

	log.WithFields(logrus.Fields{
		"path":   path,
		"width":  w,
		"height": h,
	}).Info("Background image loaded")
	return bg
}

// ParseColor parses a hex color such as "#00ff00". An empty string yields
// Fallback.
func ParseColor(s string) (color.NRGBA, error) {
	if s == "" {
		return Fallback, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("background: color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func hexOf(c color.NRGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
