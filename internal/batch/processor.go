package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"coordmap-compositor/internal/background"
	"coordmap-compositor/internal/composite"
	"coordmap-compositor/internal/frame"
	"coordmap-compositor/internal/mapping"
	"coordmap-compositor/internal/output"
	"coordmap-compositor/internal/sensor"
)

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir  string
	Background *background.Background
	// NewMapper returns a mapper for one worker. Mappers are not shared.
	NewMapper func() mapping.Mapper
	Format    output.Format
	Workers   int
	Log       logrus.FieldLogger
}

// Result holds the outcome of processing one frame.
type Result struct {
	Index    int
	Time     time.Duration
	Image    string
	Coverage int
	Success  bool
	Error    string
}

type job struct {
	index int
	frame frame.Frame
}

// Run composites every frame from src using a worker pool and writes each
// result to OutputDir. Frames are read sequentially on the calling goroutine;
// each worker owns its own Compositor. Results are ordered by frame index.
func Run(cfg Config, src sensor.Source) ([]Result, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if cfg.Format == "" {
		cfg.Format = output.FormatWebP
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("batch: mkdir %s: %w", cfg.OutputDir, err)
	}

	var (
		mu        sync.Mutex
		results   []Result
		processed atomic.Int64
	)
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					cfg.Log.WithFields(logrus.Fields{
						"frames": p,
						"rate":   fmt.Sprintf("%.1f/s", float64(p)/elapsed),
					}).Info("Batch progress")
				}
			}
		}
	}()

	// Worker pool
	jobs := make(chan job, cfg.Workers)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := composite.New(cfg.NewMapper(), cfg.Background)
			for j := range jobs {
				r := processFrame(cfg, c, j)
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
				processed.Add(1)
			}
		}()
	}

	// Send work
	var srcErr error
	for i := 0; ; {
		f, ok, err := src.Poll()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			srcErr = fmt.Errorf("batch: frame %d: %w", i, err)
			break
		}
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		jobs <- job{index: i, frame: f}
		i++
	}
	close(jobs)

	wg.Wait()
	close(done)

	sort.Slice(results, func(a, b int) bool { return results[a].Index < results[b].Index })
	return results, srcErr
}

func processFrame(cfg Config, c *composite.Compositor, j job) Result {
	res := Result{Index: j.index, Time: j.frame.Time}

	out, err := c.Process(j.frame)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Coverage = c.Coverage(j.frame.BodyIndex)

	name := fmt.Sprintf("%06d.%s", j.index, cfg.Format)
	if err := output.Save(filepath.Join(cfg.OutputDir, name), out, cfg.Format); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Image = name
	res.Success = true
	return res
}
