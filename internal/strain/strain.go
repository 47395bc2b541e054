// Package strain resamples scattered per-atom displacements onto a regular
// grid and derives the strain tensor and lattice rotation fields from its
// spatial gradients.
package strain

import (
	"errors"
	"fmt"
	"math"

	"stem-strain/internal/monitoring"
	"stem-strain/pkg/geometry"
)

// ErrNoSourcePoints means strain computation was attempted with no scattered
// samples at all.
var ErrNoSourcePoints = errors.New("strain: no source points")

// Options configures the strain grid.
type Options struct {
	GridSize     int     // samples per axis
	Margin       float64 // fractional grid margin beyond the image extent, per side
	ShrinkMargin float64 // fractional inward hull shrink for the validity mask
}

// DefaultOptions returns the strain grid defaults.
func DefaultOptions() Options {
	return Options{GridSize: 200, Margin: 0.01, ShrinkMargin: 0.10}
}

// Field is a gridded strain tensor. All grids are indexed [row][col], rows
// following GridY and columns GridX. Cells where Mask is false lie outside
// the shrunk convex hull of the source points and must be blanked downstream.
type Field struct {
	GridX, GridY []float64 // axis sample coordinates, in pixels

	U, V [][]float64 // interpolated x and y displacement

	Exx, Eyy, Exy [][]float64
	Rot, RotDeg   [][]float64

	Mask           [][]bool
	MaskDegenerate bool // mask fell back to all-valid (too few or collinear points)

	SourcePoints geometry.PointSet
}

// Compute interpolates the scattered displacements onto a regular grid over
// the image extent plus margin and derives exx, eyy, exy and rotation from
// the interpolated fields' gradients. height and width are the source image
// shape in pixels.
func Compute(points geometry.PointSet, dx, dy []float64, height, width int, opts Options) (*Field, error) {
	if len(points) == 0 {
		return nil, ErrNoSourcePoints
	}
	if len(dx) != len(points) || len(dy) != len(points) {
		return nil, fmt.Errorf("strain: %d points but %d dx and %d dy values", len(points), len(dx), len(dy))
	}
	if opts.GridSize < 2 {
		opts.GridSize = DefaultOptions().GridSize
	}

	w, h := float64(width), float64(height)
	gx := axis(-opts.Margin*w, (1+opts.Margin)*w, opts.GridSize)
	gy := axis(-opts.Margin*h, (1+opts.Margin)*h, opts.GridSize)

	u := interpolate(points, dx, gx, gy)
	v := interpolate(points, dy, gx, gy)

	// Gradient spacing follows the nominal image extent per axis.
	hx := w / float64(opts.GridSize-1)
	hy := h / float64(opts.GridSize-1)

	dudx, dudy := gradient(u, hx, hy)
	dvdx, dvdy := gradient(v, hx, hy)

	f := &Field{
		GridX:        gx,
		GridY:        gy,
		U:            u,
		V:            v,
		Exx:          dudx,
		Eyy:          dvdy,
		SourcePoints: points.Clone(),
	}
	f.Exy = make([][]float64, opts.GridSize)
	f.Rot = make([][]float64, opts.GridSize)
	f.RotDeg = make([][]float64, opts.GridSize)
	for j := 0; j < opts.GridSize; j++ {
		f.Exy[j] = make([]float64, opts.GridSize)
		f.Rot[j] = make([]float64, opts.GridSize)
		f.RotDeg[j] = make([]float64, opts.GridSize)
		for i := 0; i < opts.GridSize; i++ {
			f.Exy[j][i] = 0.5 * (dudy[j][i] + dvdx[j][i])
			f.Rot[j][i] = 0.5 * (dvdx[j][i] - dudy[j][i])
			f.RotDeg[j][i] = f.Rot[j][i] * 180 / math.Pi
		}
	}

	f.Mask, f.MaskDegenerate = validityMask(points, gx, gy, opts.ShrinkMargin)
	if f.MaskDegenerate {
		monitoring.Logf("strain: degenerate source hull (%d points), validity mask is permissive", len(points))
	}
	return f, nil
}

// axis returns n uniformly spaced samples spanning [lo, hi] inclusive.
func axis(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// gradient computes per-cell partial derivatives of a [row][col] grid with
// central differences in the interior and one-sided differences at the
// boundaries. hx is the column spacing, hy the row spacing.
func gradient(g [][]float64, hx, hy float64) (ddx, ddy [][]float64) {
	rows := len(g)
	cols := len(g[0])
	ddx = make([][]float64, rows)
	ddy = make([][]float64, rows)
	for j := 0; j < rows; j++ {
		ddx[j] = make([]float64, cols)
		ddy[j] = make([]float64, cols)
		for i := 0; i < cols; i++ {
			switch {
			case i == 0:
				ddx[j][i] = (g[j][1] - g[j][0]) / hx
			case i == cols-1:
				ddx[j][i] = (g[j][cols-1] - g[j][cols-2]) / hx
			default:
				ddx[j][i] = (g[j][i+1] - g[j][i-1]) / (2 * hx)
			}
			switch {
			case j == 0:
				ddy[j][i] = (g[1][i] - g[0][i]) / hy
			case j == rows-1:
				ddy[j][i] = (g[rows-1][i] - g[rows-2][i]) / hy
			default:
				ddy[j][i] = (g[j+1][i] - g[j-1][i]) / (2 * hy)
			}
		}
	}
	return ddx, ddy
}

// validityMask marks the grid cells inside the shrunk convex hull of the
// source points. With fewer than 4 points or a collinear set the hull cannot
// be built; the mask then falls back to all-valid and the degenerate flag is
// raised so consumers can lower their confidence.
func validityMask(points geometry.PointSet, gx, gy []float64, shrinkMargin float64) ([][]bool, bool) {
	mask := make([][]bool, len(gy))
	for j := range mask {
		mask[j] = make([]bool, len(gx))
	}

	var region *geometry.HullRegion
	if len(points) >= 4 {
		hull := geometry.ConvexHull(points)
		region = geometry.NewHullRegion(geometry.ShrinkHull(hull, shrinkMargin))
	}
	if region == nil {
		for j := range mask {
			for i := range mask[j] {
				mask[j][i] = true
			}
		}
		return mask, true
	}

	for j, y := range gy {
		for i, x := range gx {
			mask[j][i] = region.Contains(geometry.NewPoint2D(x, y))
		}
	}
	return mask, false
}
