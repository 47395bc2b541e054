// Command synthlattice generates a synthetic two-sublattice STEM test frame
// with a known, uniform sublattice-B displacement, plus ground-truth CSVs.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"stem-strain/internal/export"
	"stem-strain/internal/imaging"
	"stem-strain/pkg/geometry"
)

func main() {
	width := flag.Int("width", 100, "Frame width in pixels")
	height := flag.Int("height", 100, "Frame height in pixels")
	separation := flag.Float64("separation", 10, "Lattice separation in pixels")
	sigma := flag.Float64("sigma", 1.2, "Atom column gaussian width in pixels")
	offsetX := flag.Float64("dx", 0.3, "Sublattice-B x offset from cell centers, in pixels")
	offsetY := flag.Float64("dy", -0.2, "Sublattice-B y offset from cell centers, in pixels")
	ratio := flag.Float64("ratio", 0.5, "Sublattice-B intensity relative to sublattice A")
	outDir := flag.String("out", "synthlattice-out", "Output directory")
	flag.Parse()

	margin := *separation
	a := imaging.SquareLattice(*width, *height, *separation, margin)
	frame := imaging.RenderLattice(*width, *height, a, *sigma, 1.0)

	centers := imaging.SquareLattice(*width, *height, *separation, margin+*separation/2)
	b := make(geometry.PointSet, len(centers))
	for i, p := range centers {
		b[i] = p.Add(geometry.NewPoint2D(*offsetX, *offsetY))
	}
	shifted := imaging.RenderLattice(*width, *height, b, *sigma, *ratio)
	for i := range frame.Data {
		frame.Data[i] += shifted.Data[i]
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output dir: %v\n", err)
		os.Exit(1)
	}

	framePath := filepath.Join(*outDir, "frame.png")
	f, err := os.Create(framePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create frame file: %v\n", err)
		os.Exit(1)
	}
	if err := png.Encode(f, frame.Normalize().ToImage()); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Failed to encode frame: %v\n", err)
		os.Exit(1)
	}
	f.Close()

	if err := export.WritePositionsCSV(filepath.Join(*outDir, "truth_a.csv"), a); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write truth_a.csv: %v\n", err)
		os.Exit(1)
	}
	if err := export.WritePositionsCSV(filepath.Join(*outDir, "truth_b.csv"), b); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write truth_b.csv: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %dx%d frame with %d A atoms and %d B atoms to %s\n",
		*width, *height, len(a), len(b), framePath)
	fmt.Printf("Planted B offset: (%.2f, %.2f) px\n", *offsetX, *offsetY)
}
