package composite

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coordmap-compositor/internal/background"
	"coordmap-compositor/internal/frame"
	"coordmap-compositor/internal/mapping"
)

// pointMapper maps every color pixel to the same depth cell.
type pointMapper struct {
	p     mapping.DepthPoint
	err   error
	calls int
}

func (m *pointMapper) MapColorToDepth(_ frame.DepthRaster, colorCount int, dst mapping.Map) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	for i := 0; i < colorCount; i++ {
		dst[i] = m.p
	}
	return nil
}

func liveFrame() frame.Frame {
	f := frame.New()
	f.Color.Fill(liveColor)
	return f
}

func TestCompositorProcess(t *testing.T) {
	mapper := &pointMapper{p: mapping.DepthPoint{X: 7, Y: 8}}
	c := New(mapper, background.Solid(frame.ColorWidth, frame.ColorHeight, bgColor))

	f := liveFrame()
	out, err := c.Process(f)
	require.NoError(t, err)
	assert.Equal(t, bgra(bgColor), out.Pix[:4])
	assert.Equal(t, 0, c.Coverage(f.BodyIndex))

	f.BodyIndex.Pix[7+8*frame.DepthWidth] = 0
	again, err := c.Process(f)
	require.NoError(t, err)
	assert.Same(t, out, again, "output storage is reused")
	assert.Equal(t, bgra(liveColor), again.Pix[:4])
	assert.Equal(t, frame.ColorPixels, c.Coverage(f.BodyIndex))
	assert.Equal(t, 2, mapper.calls)
}

func TestCompositorDropsFrameOnMapperFailure(t *testing.T) {
	mapper := &pointMapper{err: mapping.ErrInvalidInput}
	c := New(mapper, background.Solid(frame.ColorWidth, frame.ColorHeight, bgColor))

	out, err := c.Process(liveFrame())
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, mapping.ErrInvalidInput))
}

func TestCompositorRejectsMisSizedFrame(t *testing.T) {
	mapper := &pointMapper{}
	c := New(mapper, background.Solid(frame.ColorWidth, frame.ColorHeight, bgColor))

	f := liveFrame()
	f.Color.Width, f.Color.Height = 1, 1
	out, err := c.Process(f)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, frame.ErrDimension))
	assert.Equal(t, 0, mapper.calls, "mapper must not run on an invalid frame")
}
