package main

import (
	"flag"
	"fmt"
	"os"

	"coordmap-compositor/internal/sensor"
)

func main() {
	out := flag.String("o", "session.dmrc", "Recording file to write")
	n := flag.Int("n", 60, "Number of frames")
	flag.Parse()

	if *n <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -n must be positive")
		os.Exit(1)
	}

	w, err := sensor.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	syn := sensor.NewSynthetic(*n)
	for i := 0; i < *n; i++ {
		if err := w.Write(syn.Render(i)); err != nil {
			w.Close()
			fmt.Fprintf(os.Stderr, "Error: frame %d: %v\n", i, err)
			os.Exit(1)
		}
		if (i+1)%10 == 0 {
			fmt.Printf("  [%d/%d]\n", i+1, *n)
		}
	}
	if err := w.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d frames to %s\n", *n, *out)
}
