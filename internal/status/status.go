// Package status implements the throttled, informational status line shown
// alongside the composited video.
package status

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Reporter publishes status messages, dropping non-forced messages that
// arrive before the previous message's display time has elapsed.
type Reporter struct {
	log logrus.FieldLogger
	now func() time.Time

	mu      sync.Mutex
	next    time.Time
	current string
}

// NewReporter creates a Reporter that writes accepted messages to log.
func NewReporter(log logrus.FieldLogger) *Reporter {
	return &Reporter{log: log, now: time.Now}
}

// WithClock replaces the time source. Intended for tests and replays.
func (r *Reporter) WithClock(now func() time.Time) *Reporter {
	r.now = now
	return r
}

// Set shows msg for at least showFor unless a later forced message replaces
// it. It reports whether the message was accepted.
func (r *Reporter) Set(msg string, showFor time.Duration, force bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !force && now.Before(r.next) {
		return false
	}
	r.next = now.Add(showFor)
	r.current = msg
	r.log.WithField("forced", force).Info(msg)
	return true
}

// Current returns the last accepted message.
func (r *Reporter) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// FPSCounter derives a frame rate from the frames seen between accepted
// status updates.
type FPSCounter struct {
	now func() time.Time

	started   bool
	startTime time.Duration
	last      time.Time
	frames    int
}

// NewFPSCounter creates a counter using the wall clock.
func NewFPSCounter() *FPSCounter {
	return &FPSCounter{now: time.Now}
}

// WithClock replaces the time source.
func (c *FPSCounter) WithClock(now func() time.Time) *FPSCounter {
	c.now = now
	return c
}

// Frame records a frame captured at sensor time t and publishes the rate
// through r with a one second throttle. The frame tally restarts only when
// the message is accepted.
func (c *FPSCounter) Frame(t time.Duration, r *Reporter) {
	if !c.started {
		c.started = true
		c.startTime = t
	}

	now := c.now()
	fps := 0.0
	if !c.last.IsZero() {
		c.frames++
		if elapsed := now.Sub(c.last); elapsed > 0 {
			fps = float64(c.frames) / elapsed.Seconds()
		}
	}

	msg := fmt.Sprintf(" FPS = %0.2f    Time = %d", fps, int64((t-c.startTime)/100))
	if r.Set(msg, time.Second, false) {
		c.last = now
		c.frames = 0
	}
}
