package imaging

import (
	"math"

	"stem-strain/pkg/geometry"
)

// RenderLattice draws gaussian spots of the given width at each position onto
// a fresh width×height grid. Used by the synthetic-image generator and the
// test suite to produce frames with a known ground truth.
func RenderLattice(width, height int, positions geometry.PointSet, sigma, amplitude float64) *Grid {
	g := NewGrid(width, height)
	if sigma <= 0 {
		sigma = 1
	}
	// Only evaluate each spot within 4 sigma of its center.
	radius := int(math.Ceil(4 * sigma))
	inv := 1.0 / (2 * sigma * sigma)

	for _, p := range positions {
		cx := int(math.Round(p.X))
		cy := int(math.Round(p.Y))
		for y := cy - radius; y <= cy+radius; y++ {
			if y < 0 || y >= height {
				continue
			}
			for x := cx - radius; x <= cx+radius; x++ {
				if x < 0 || x >= width {
					continue
				}
				dx := float64(x) - p.X
				dy := float64(y) - p.Y
				g.Data[y*width+x] += amplitude * math.Exp(-(dx*dx+dy*dy)*inv)
			}
		}
	}
	return g
}

// SquareLattice returns positions on a regular square lattice with the given
// separation, inset by margin from the frame edges.
func SquareLattice(width, height int, separation, margin float64) geometry.PointSet {
	var out geometry.PointSet
	for y := margin; y <= float64(height)-margin; y += separation {
		for x := margin; x <= float64(width)-margin; x += separation {
			out = append(out, geometry.NewPoint2D(x, y))
		}
	}
	return out
}
