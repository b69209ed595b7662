package output

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"coordmap-compositor/internal/frame"
)

func testRaster() *frame.ColorRaster {
	r := frame.NewColorRaster(4, 2)
	r.Fill(color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	copy(r.Pix[5*4:6*4], []uint8{200, 150, 100, 0})
	return r
}

func TestSaveBitmapRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shots", "a.bmp")
	require.NoError(t, SaveBitmap(path, testRaster()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := bmp.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{10, 20, 30}, []uint32{r >> 8, g >> 8, b >> 8})
	r, g, b, _ = img.At(1, 1).RGBA()
	assert.Equal(t, []uint32{100, 150, 200}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestEncodeWebPIsLossless(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testRaster(), FormatWebP))

	img, err := webp.Decode(&buf)
	require.NoError(t, err)
	back := frame.ColorFromImage(img)
	assert.Equal(t, testRaster().Pix[:5*4], back.Pix[:5*4])
	assert.Equal(t, []uint8{200, 150, 100, 255}, back.Pix[5*4:6*4])
}

func TestEncodeRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, &frame.ColorRaster{Width: 2, Height: 2}, FormatBMP))
	assert.Error(t, Encode(&buf, testRaster(), Format("tiff")))
}

func TestSaveFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bmp")
	assert.Error(t, SaveBitmap(path, &frame.ColorRaster{Width: 1, Height: 1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("WebP")
	require.NoError(t, err)
	assert.Equal(t, FormatWebP, f)

	f, err = ParseFormat("bmp")
	require.NoError(t, err)
	assert.Equal(t, FormatBMP, f)

	_, err = ParseFormat("png")
	assert.Error(t, err)
}

func TestScreenshotPath(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 5, 9, 0, time.Local)
	got := ScreenshotPath("/tmp/pics", now, FormatBMP)
	assert.Equal(t, filepath.Join("/tmp/pics", "Screenshot-CoordinateMapping-14-05-09.bmp"), got)
}

func TestPreviewWriterThrottles(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	path := filepath.Join(t.TempDir(), "preview.webp")
	p := NewPreviewWriter(path, time.Second, log)

	clock := time.Unix(1000, 0)
	p.now = func() time.Time { return clock }

	require.NoError(t, p.Present(testRaster()))
	first, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	clock = clock.Add(500 * time.Millisecond)
	require.NoError(t, p.Present(testRaster()))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "second frame inside the interval must be skipped")

	clock = clock.Add(600 * time.Millisecond)
	require.NoError(t, p.Present(testRaster()))
	second, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, first.Size(), second.Size())
}

func TestPresenterFunc(t *testing.T) {
	var got *frame.ColorRaster
	p := PresenterFunc(func(r *frame.ColorRaster) error {
		got = r
		return nil
	})
	r := testRaster()
	require.NoError(t, p.Present(r))
	assert.Same(t, r, got)
	assert.NoError(t, Discard.Present(r))
}
