package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"coordmap-compositor/internal/background"
	"coordmap-compositor/internal/batch"
	"coordmap-compositor/internal/composite"
	"coordmap-compositor/internal/config"
	"coordmap-compositor/internal/frame"
	"coordmap-compositor/internal/mapping"
	"coordmap-compositor/internal/output"
	"coordmap-compositor/internal/pipeline"
	"coordmap-compositor/internal/sensor"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	dataDir := flag.String("data", "", "Base directory for relative paths (default: cwd)")
	recording := flag.String("recording", "", "Recording to replay (default: synthetic scene)")
	synthetic := flag.Int("synthetic", 300, "Frames to generate when no recording is given (0 = unlimited)")
	bgPath := flag.String("background", "", "Background image (default: solid fill)")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	format := flag.String("format", "", "Screenshot/batch format: bmp or webp")
	workers := flag.Int("workers", 0, "Batch worker goroutines (default: NumCPU)")
	batchMode := flag.Bool("batch", false, "Composite every frame to files instead of running live")
	shotEvery := flag.Int("screenshot-every", 0, "Request a screenshot every N frames (0 = off)")
	logLevel := flag.String("log-level", "", "Log level (default: info)")
	paced := flag.Bool("paced", false, "Replay recordings at capture speed")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		BaseDir:    *dataDir,
		Recording:  *recording,
		Background: *bgPath,
		OutputDir:  *outputDir,
		Format:     *format,
		Workers:    *workers,
		LogLevel:   *logLevel,
	})

	if *paced {
		cfg.Paced = true
	}

	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	shotFormat, err := output.ParseFormat(cfg.ScreenshotFormat)
	if err != nil {
		log.Fatal(err)
	}

	fill, err := background.ParseColor(cfg.FallbackColor)
	if err != nil {
		log.Fatal(err)
	}

	cal := mapping.DefaultCalibration()
	if cfg.Calibration != "" {
		cal, err = mapping.LoadCalibration(cfg.Calibration)
		if err != nil {
			log.Fatal(err)
		}
	}

	// Background is loaded once and shared read-only from here on.
	bg := background.Provision(cfg.Background, frame.ColorWidth, frame.ColorHeight, fill, log)

	src, closeSrc, err := openSource(cfg, *synthetic)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Depth-matte compositor (%dx%d color, %dx%d depth)\n",
		frame.ColorWidth, frame.ColorHeight, frame.DepthWidth, frame.DepthHeight)
	fmt.Printf("Source: %s\n", describeSource(cfg))
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	var code int
	if *batchMode {
		code = runBatch(cfg, log, bg, cal, src, shotFormat, start)
	} else {
		code = runLive(cfg, log, bg, cal, src, shotFormat, *shotEvery, start)
	}
	closeSrc()
	os.Exit(code)
}

func openSource(cfg config.Config, synthetic int) (sensor.Source, func(), error) {
	if cfg.Recording == "" {
		return sensor.NewSynthetic(synthetic), func() {}, nil
	}
	r, err := sensor.Open(cfg.Recording, cfg.Paced)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { r.Close() }, nil
}

func describeSource(cfg config.Config) string {
	if cfg.Recording == "" {
		return "synthetic scene"
	}
	return cfg.Recording
}

func runLive(
	cfg config.Config,
	log *logrus.Logger,
	bg *background.Background,
	cal mapping.Calibration,
	src sensor.Source,
	format output.Format,
	shotEvery int,
	start time.Time,
) int {
	var presenter output.Presenter = output.Discard
	if cfg.Preview != "" {
		every, err := cfg.PreviewEvery()
		if err != nil {
			log.Error(err)
			return 1
		}
		presenter = output.NewPreviewWriter(cfg.Preview, every, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cs := &countingSource{Source: src}
	p := pipeline.New(pipeline.Config{
		Source:           cs,
		Compositor:       composite.New(mapping.NewAffine(cal), bg),
		Presenter:        presenter,
		Log:              log,
		ScreenshotDir:    cfg.ScreenshotDir,
		ScreenshotFormat: format,
	})
	watchScreenshotSignal(ctx, p.RequestScreenshot)

	if shotEvery > 0 {
		cs.before = func(n int) {
			if n%shotEvery == 0 {
				p.RequestScreenshot()
			}
		}
	}

	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("Pipeline stopped")
		return 1
	}

	st := p.Stats()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
	fmt.Printf("Composited: %d, dropped: %d, screenshots: %d (%d failed)\n",
		st.Composited, st.Dropped, st.Shots, st.ShotErrors)
	return 0
}

func runBatch(
	cfg config.Config,
	log *logrus.Logger,
	bg *background.Background,
	cal mapping.Calibration,
	src sensor.Source,
	format output.Format,
	start time.Time,
) int {
	results, err := batch.Run(batch.Config{
		OutputDir:  cfg.OutputDir,
		Background: bg,
		NewMapper:  func() mapping.Mapper { return mapping.NewAffine(cal) },
		Format:     format,
		Workers:    cfg.Workers,
		Log:        log,
	}, src)
	if err != nil {
		log.WithError(err).Error("Batch aborted")
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			if failed <= 20 {
				fmt.Printf("  frame %d: %s\n", r.Index, r.Error)
			}
		}
	}
	fmt.Printf("Rendered: %d/%d\n", len(results)-failed, len(results))

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results, frame.ColorPixels); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 || err != nil {
		return 1
	}
	return 0
}
