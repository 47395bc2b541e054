// Package imaging provides the float64 raster type the analysis pipeline
// operates on, plus loading and preprocessing of STEM frames.
package imaging

import (
	"fmt"
	"math"

	"stem-strain/pkg/geometry"
)

// Grid is a dense 2D raster of float64 intensity samples, row-major.
// Pixel (x, y) is column x of row y. Grids are treated as immutable by the
// pipeline stages: preprocessing returns fresh instances.
type Grid struct {
	Width  int
	Height int
	Data   []float64
}

// NewGrid allocates a zero-filled grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}
}

// At returns the sample at column x, row y.
func (g *Grid) At(x, y int) float64 {
	return g.Data[y*g.Width+x]
}

// Set stores a sample at column x, row y.
func (g *Grid) Set(x, y int, v float64) {
	g.Data[y*g.Width+x] = v
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.Width, g.Height)
	copy(out.Data, g.Data)
	return out
}

// MinMax returns the minimum and maximum sample values.
func (g *Grid) MinMax() (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range g.Data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Normalize returns a fresh grid rescaled to [0, 1]. A constant grid
// normalizes to all zeros.
func (g *Grid) Normalize() *Grid {
	out := g.Clone()
	min, max := g.MinMax()
	span := max - min
	if span <= 0 {
		for i := range out.Data {
			out.Data[i] = 0
		}
		return out
	}
	for i, v := range g.Data {
		out.Data[i] = (v - min) / span
	}
	return out
}

// Crop returns a fresh grid holding the region [x0,x1)×[y0,y1).
func (g *Grid) Crop(x0, y0, x1, y1 int) (*Grid, error) {
	if x0 < 0 || y0 < 0 || x1 > g.Width || y1 > g.Height || x0 >= x1 || y0 >= y1 {
		return nil, fmt.Errorf("invalid crop region (%d,%d)-(%d,%d) for %dx%d grid",
			x0, y0, x1, y1, g.Width, g.Height)
	}
	out := NewGrid(x1-x0, y1-y0)
	for y := y0; y < y1; y++ {
		copy(out.Data[(y-y0)*out.Width:(y-y0+1)*out.Width],
			g.Data[y*g.Width+x0:y*g.Width+x1])
	}
	return out, nil
}

// Bounds returns the grid extent as a geometry rectangle anchored at the origin.
func (g *Grid) Bounds() geometry.Rect {
	return geometry.NewRect(0, 0, float64(g.Width), float64(g.Height))
}
