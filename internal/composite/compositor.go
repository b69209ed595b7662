package composite

import (
	"fmt"

	"coordmap-compositor/internal/background"
	"coordmap-compositor/internal/frame"
	"coordmap-compositor/internal/mapping"
)

// Compositor owns the per-frame scratch storage (correspondence map and
// output raster) and reuses it across frames. Both are fully overwritten by
// every successful Process call. A Compositor is not safe for concurrent use;
// give each goroutine its own.
type Compositor struct {
	mapper mapping.Mapper
	bg     *background.Background
	coords mapping.Map
	out    *frame.ColorRaster
}

// New creates a Compositor. bg is shared read-only.
func New(mapper mapping.Mapper, bg *background.Background) *Compositor {
	return &Compositor{
		mapper: mapper,
		bg:     bg,
		coords: mapping.NewMap(frame.ColorPixels),
		out:    frame.NewColorRaster(frame.ColorWidth, frame.ColorHeight),
	}
}

// Process maps and composites one frame. The returned raster is owned by
// the Compositor and is only valid until the next call; readers must not
// modify it. On error no output is produced.
func (c *Compositor) Process(f frame.Frame) (*frame.ColorRaster, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}
	if err := c.mapper.MapColorToDepth(f.Depth, f.Color.Len(), c.coords); err != nil {
		return nil, fmt.Errorf("composite: map color to depth: %w", err)
	}
	if err := Composite(c.out, c.bg, f.Color, f.BodyIndex, c.coords); err != nil {
		return nil, err
	}
	return c.out, nil
}

// Coverage reports how many pixels of the last processed frame came from
// the live feed.
func (c *Compositor) Coverage(bodyIndex frame.BodyIndexRaster) int {
	return Coverage(c.coords, bodyIndex)
}
