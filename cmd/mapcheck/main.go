package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"coordmap-compositor/internal/composite"
	"coordmap-compositor/internal/frame"
	"coordmap-compositor/internal/mapping"
	"coordmap-compositor/internal/sensor"
)

// Prints, per frame, how the color grid maps onto the depth grid: pixels with
// no correspondence, pixels mapped outside the depth grid, and pixels on a
// tracked player.
func main() {
	calPath := flag.String("calibration", "", "Calibration JSON (default: built-in)")
	limit := flag.Int("n", 0, "Only inspect the first N frames")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mapcheck [-calibration cal.json] [-n N] recording.dmrc")
		os.Exit(2)
	}

	cal := mapping.DefaultCalibration()
	if *calPath != "" {
		var err error
		cal, err = mapping.LoadCalibration(*calPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	rec, err := sensor.Open(flag.Arg(0), false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rec.Close()

	mapper := mapping.NewAffine(cal)
	m := mapping.NewMap(frame.ColorPixels)

	in := mapper.Calibration()
	fmt.Printf("Recording: %s (%d frames)\n", flag.Arg(0), rec.Len())
	fmt.Printf("Calibration: scale=(%.4f, %.4f) offset=(%.1f, %.1f) depth=%d..%dmm margin=%.1f\n",
		in.ScaleX, in.ScaleY, in.OffsetX, in.OffsetY, in.MinDepth, in.MaxDepth, in.Margin)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("%6s %10s %9s %9s %9s\n", "frame", "time", "unmapped", "outside", "player")

	for i := 0; *limit <= 0 || i < *limit; i++ {
		f, _, err := rec.Poll()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := mapper.MapColorToDepth(f.Depth, f.Color.Len(), m); err != nil {
			fmt.Printf("%6d %10s  mapping failed: %v\n", i, f.Time, err)
			continue
		}

		unmapped, outside := 0, 0
		for _, p := range m {
			if !p.Valid() {
				unmapped++
				continue
			}
			if p.X < -0.5 || p.Y < -0.5 || p.X >= frame.DepthWidth-0.5 || p.Y >= frame.DepthHeight-0.5 {
				outside++
			}
		}
		player := composite.Coverage(m, f.BodyIndex)

		fmt.Printf("%6d %10s %8.1f%% %8.1f%% %8.1f%%\n", i, f.Time,
			pct(unmapped), pct(outside), pct(player))
	}
}

func pct(n int) float64 {
	return 100 * float64(n) / float64(frame.ColorPixels)
}
