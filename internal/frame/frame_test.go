package frame

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrameIsValid(t *testing.T) {
	f := New()
	require.NoError(t, f.Validate())
	assert.Len(t, f.Color.Pix, ColorPixels*BytesPerPixel)
	assert.Len(t, f.Depth.Pix, DepthPixels)
	for _, l := range f.BodyIndex.Pix {
		if l != NoPlayer {
			t.Fatalf("new body index raster has label %#x", l)
		}
	}
}

func TestFrameValidateRejectsMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Frame)
	}{
		{"color reported 1x1", func(f *Frame) { f.Color.Width, f.Color.Height = 1, 1 }},
		{"short color buffer", func(f *Frame) { f.Color.Pix = f.Color.Pix[:len(f.Color.Pix)-1] }},
		{"nil depth", func(f *Frame) { f.Depth.Pix = nil }},
		{"depth wrong size", func(f *Frame) { f.Depth = NewDepthRaster(640, 480) }},
		{"body index wrong size", func(f *Frame) { f.BodyIndex = NewBodyIndexRaster(DepthHeight, DepthWidth) }},
		{"nil body index", func(f *Frame) { f.BodyIndex.Pix = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			tt.mutate(&f)
			err := f.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDimension))
		})
	}
}

func TestColorImageRoundTrip(t *testing.T) {
	r := NewColorRaster(2, 1)
	copy(r.Pix, []uint8{10, 20, 30, 0, 40, 50, 60, 0})

	img := r.ToNRGBA()
	assert.Equal(t, color.NRGBA{R: 30, G: 20, B: 10, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 60, G: 50, B: 40, A: 255}, img.NRGBAAt(1, 0))

	back := ColorFromImage(img)
	assert.Equal(t, []uint8{10, 20, 30, 255, 40, 50, 60, 255}, back.Pix)
}

func TestColorFromImageHonoursBoundsOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.Set(5, 5, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	img.Set(6, 5, color.RGBA{R: 4, G: 5, B: 6, A: 255})

	r := ColorFromImage(img)
	assert.Equal(t, 2, r.Width)
	assert.Equal(t, 1, r.Height)
	assert.Equal(t, []uint8{3, 2, 1, 255, 6, 5, 4, 255}, r.Pix)
}

func TestFill(t *testing.T) {
	r := NewColorRaster(3, 2)
	r.Fill(color.NRGBA{G: 255})
	for i := 0; i < len(r.Pix); i += BytesPerPixel {
		assert.Equal(t, []uint8{0, 255, 0, 255}, r.Pix[i:i+BytesPerPixel])
	}
}
