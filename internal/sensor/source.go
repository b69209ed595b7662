// Package sensor provides frame sources that stand in for a depth camera:
// recorded sessions and a synthetic scene.
package sensor

import "coordmap-compositor/internal/frame"

// Source yields co-timed frames. Poll never blocks: ok is false when no
// new frame is ready yet. A source that has no more frames returns io.EOF.
type Source interface {
	Poll() (f frame.Frame, ok bool, err error)
}
