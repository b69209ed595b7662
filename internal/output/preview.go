package output

import (
	"time"

	"github.com/sirupsen/logrus"

	"coordmap-compositor/internal/frame"
)

// Presenter receives every composited frame. Implementations must treat the
// raster as read-only and must not retain it past the call.
type Presenter interface {
	Present(r *frame.ColorRaster) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(r *frame.ColorRaster) error

// Present implements Presenter.
func (f PresenterFunc) Present(r *frame.ColorRaster) error { return f(r) }

// Discard is a Presenter that drops every frame.
var Discard Presenter = PresenterFunc(func(*frame.ColorRaster) error { return nil })

// PreviewWriter is a Presenter that keeps a WebP snapshot of the most recent
// frame on disk, rewritten at most once per interval.
type PreviewWriter struct {
	Path     string
	Interval time.Duration
	Log      logrus.FieldLogger

	now  func() time.Time
	next time.Time
}

// NewPreviewWriter creates a preview presenter writing to path.
func NewPreviewWriter(path string, interval time.Duration, log logrus.FieldLogger) *PreviewWriter {
	return &PreviewWriter{Path: path, Interval: interval, Log: log, now: time.Now}
}

// Present implements Presenter.
func (p *PreviewWriter) Present(r *frame.ColorRaster) error {
	now := p.now()
	if now.Before(p.next) {
		return nil
	}
	p.next = now.Add(p.Interval)

	start := time.Now()
	if err := SaveWebP(p.Path, r); err != nil {
		return err
	}
	p.Log.WithFields(logrus.Fields{
		"path":    p.Path,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("Preview written")
	return nil
}
