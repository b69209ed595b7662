package background

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func uniformImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestLoadRescalesPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, uniformImage(8, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 255})))
	path := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	bg, err := Load(path, 16, 9)
	require.NoError(t, err)
	assert.Equal(t, 16, bg.Width())
	assert.Equal(t, 9, bg.Height())
	require.Len(t, bg.Pix(), 16*9*4)
	// Uniform input stays uniform after cubic scaling, up to rounding.
	want := []uint8{50, 100, 200, 255}
	for i, v := range bg.Pix() {
		assert.InDelta(t, want[i%4], v, 1, "byte %d", i)
	}
}

func TestDecodeBMPAtTargetSize(t *testing.T) {
	img := uniformImage(4, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	img.SetNRGBA(3, 1, color.NRGBA{R: 9, G: 8, B: 7, A: 255})
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))

	bg, err := Decode(buf.Bytes(), 4, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{3, 2, 1, 255}, bg.Pix()[:4])
	assert.Equal(t, []uint8{7, 8, 9, 255}, bg.Pix()[7*4:8*4])
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not an image"), 4, 4)
	assert.Error(t, err)
}

func TestProvisionFallsBackOnMissingFile(t *testing.T) {
	log, hook := logtest.NewNullLogger()

	bg := Provision(filepath.Join(t.TempDir(), "nope.png"), 3, 2, Fallback, log)
	require.NotNil(t, bg)
	require.Len(t, bg.Pix(), 3*2*4)
	for i := 0; i < len(bg.Pix()); i += 4 {
		assert.Equal(t, []uint8{0, 255, 0, 255}, bg.Pix()[i:i+4])
	}

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "#00ff00", hook.LastEntry().Data["color"])
}

func TestProvisionWithoutPathUsesFill(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	bg := Provision("", 1, 1, color.NRGBA{R: 255, A: 255}, log)
	assert.Equal(t, []uint8{0, 0, 255, 255}, bg.Pix())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("")
	require.NoError(t, err)
	assert.Equal(t, Fallback, c)

	c, err = ParseColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}, c)

	_, err = ParseColor("green")
	assert.Error(t, err)
}
