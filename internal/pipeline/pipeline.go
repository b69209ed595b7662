// Package pipeline drives the per-frame acquire, map, composite and present
// loop on a single goroutine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"coordmap-compositor/internal/composite"
	"coordmap-compositor/internal/frame"
	"coordmap-compositor/internal/output"
	"coordmap-compositor/internal/sensor"
	"coordmap-compositor/internal/status"
)

// Status message display times.
const (
	screenshotStatusTime = 5 * time.Second
)

// Config wires the collaborators of a Pipeline.
type Config struct {
	Source     sensor.Source
	Compositor *composite.Compositor
	Presenter  output.Presenter
	Status     *status.Reporter
	Log        logrus.FieldLogger

	ScreenshotDir    string
	ScreenshotFormat output.Format

	// IdleWait is how long Run sleeps after a "not ready" poll.
	IdleWait time.Duration

	// Now is the wall clock used for screenshot names.
	Now func() time.Time
}

// Stats counts what happened to polled frames.
type Stats struct {
	Composited int
	Dropped    int
	NotReady   int
	Presented  int
	Shots      int
	ShotErrors int
}

// Pipeline processes one frame at a time. Step and Run must be called from a
// single goroutine; RequestScreenshot may be called from any goroutine.
type Pipeline struct {
	cfg   Config
	fps   *status.FPSCounter
	shot  atomic.Bool
	stats Stats
}

// New creates a Pipeline. Missing optional collaborators get defaults.
func New(cfg Config) *Pipeline {
	if cfg.Presenter == nil {
		cfg.Presenter = output.Discard
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if cfg.Status == nil {
		cfg.Status = status.NewReporter(cfg.Log)
	}
	if cfg.ScreenshotFormat == "" {
		cfg.ScreenshotFormat = output.FormatBMP
	}
	if cfg.IdleWait <= 0 {
		cfg.IdleWait = 5 * time.Millisecond
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{cfg: cfg, fps: status.NewFPSCounter()}
}

// RequestScreenshot asks for the next composited frame to be saved.
func (p *Pipeline) RequestScreenshot() {
	p.shot.Store(true)
}

// Stats returns the running counters.
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Step polls the source once and, if a frame is ready, processes it.
// It reports whether a frame was polled. Invalid frames are dropped and are
// not an error; only source failures (including io.EOF) are returned.
func (p *Pipeline) Step() (bool, error) {
	f, ok, err := p.cfg.Source.Poll()
	if err != nil {
		return false, err
	}
	if !ok {
		p.stats.NotReady++
		return false, nil
	}

	p.fps.Frame(f.Time, p.cfg.Status)

	out, err := p.cfg.Compositor.Process(f)
	if err != nil {
		p.stats.Dropped++
		p.cfg.Log.WithFields(logrus.Fields{
			"time":  f.Time,
			"error": err.Error(),
		}).Debug("Frame dropped")
		return true, nil
	}
	p.stats.Composited++

	if err := p.cfg.Presenter.Present(out); err != nil {
		p.cfg.Log.WithError(err).Warn("Present failed")
	} else {
		p.stats.Presented++
	}

	if p.shot.Swap(false) {
		p.saveScreenshot(out)
	}
	return true, nil
}

func (p *Pipeline) saveScreenshot(out *frame.ColorRaster) {
	path := output.ScreenshotPath(p.cfg.ScreenshotDir, p.cfg.Now(), p.cfg.ScreenshotFormat)
	if err := output.Save(path, out, p.cfg.ScreenshotFormat); err != nil {
		p.stats.ShotErrors++
		p.cfg.Log.WithError(err).Debug("Screenshot failed")
		p.cfg.Status.Set(fmt.Sprintf("Failed to write screenshot to %s", path), screenshotStatusTime, true)
		return
	}
	p.stats.Shots++
	p.cfg.Status.Set(fmt.Sprintf("Screenshot saved to %s", path), screenshotStatusTime, true)
}

// Run steps until ctx is cancelled or the source is exhausted. Exhaustion
// (io.EOF) is a normal end and returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		polled, err := p.Step()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
		if !polled {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.cfg.IdleWait):
			}
		}
	}
}
