// Package output persists and presents composited frames.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"

	"coordmap-compositor/internal/frame"
)

// Format selects the on-disk encoding of a saved frame.
type Format string

const (
	FormatBMP  Format = "bmp"
	FormatWebP Format = "webp"
)

// ParseFormat accepts "bmp" or "webp" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatBMP:
		return FormatBMP, nil
	case FormatWebP:
		return FormatWebP, nil
	}
	return "", fmt.Errorf("output: unknown format %q", s)
}

// Encode writes r to w in the given format.
func Encode(w io.Writer, r *frame.ColorRaster, format Format) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	img := r.ToNRGBA()
	switch format {
	case FormatBMP:
		if err := bmp.Encode(w, img); err != nil {
			return fmt.Errorf("output: bmp encode: %w", err)
		}
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("output: webp encode: %w", err)
		}
	default:
		return fmt.Errorf("output: unknown format %q", format)
	}
	return nil
}

// Save writes r to path, replacing any existing file. The file only appears
// under its final name once fully written.
func Save(path string, r *frame.ColorRaster, format Format) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".frame-*")
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, r, format); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("output: close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("output: rename %s: %w", path, err)
	}
	return nil
}

// SaveBitmap writes r to path as a BMP file.
func SaveBitmap(path string, r *frame.ColorRaster) error {
	return Save(path, r, FormatBMP)
}

// SaveWebP writes r to path as a lossless WebP file.
func SaveWebP(path string, r *frame.ColorRaster) error {
	return Save(path, r, FormatWebP)
}

// ScreenshotPath returns dir/Screenshot-CoordinateMapping-HH-MM-SS.<format>.
func ScreenshotPath(dir string, now time.Time, format Format) string {
	name := fmt.Sprintf("Screenshot-CoordinateMapping-%s.%s", now.Format("15-04-05"), format)
	return filepath.Join(dir, name)
}
