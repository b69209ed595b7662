package main

import (
	"coordmap-compositor/internal/frame"
	"coordmap-compositor/internal/sensor"
)

// countingSource counts the frames it hands out and lets a hook run before
// each one reaches the pipeline.
type countingSource struct {
	sensor.Source
	n      int
	before func(n int)
}

func (s *countingSource) Poll() (frame.Frame, bool, error) {
	f, ok, err := s.Source.Poll()
	if ok && err == nil {
		s.n++
		if s.before != nil {
			s.before(s.n)
		}
	}
	return f, ok, err
}
