package lattice

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"stem-strain/internal/imaging"
	"stem-strain/internal/monitoring"
	"stem-strain/pkg/geometry"
)

// Refiner improves an integer-accurate atom position to sub-pixel accuracy
// using the intensity inside a window of the given radius around it.
type Refiner interface {
	Name() string
	Refine(p geometry.Point2D, g *imaging.Grid, radius float64) (geometry.Point2D, error)
}

// CenterOfMass refines positions by the intensity-weighted centroid of the
// window, with the local minimum subtracted so background does not drag the
// centroid toward the window center.
type CenterOfMass struct{}

func (CenterOfMass) Name() string { return "center_of_mass" }

func (CenterOfMass) Refine(p geometry.Point2D, g *imaging.Grid, radius float64) (geometry.Point2D, error) {
	x0, y0, x1, y1 := window(p, g, radius)
	if x1 <= x0 || y1 <= y0 {
		return geometry.Point2D{}, fmt.Errorf("refine %s at (%.1f, %.1f): %w", "center_of_mass", p.X, p.Y, ErrRefinementFailed)
	}

	localMin := math.Inf(1)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if v := g.At(x, y); v < localMin {
				localMin = v
			}
		}
	}

	var sumW, sumX, sumY float64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			w := g.At(x, y) - localMin
			if w <= 0 {
				continue
			}
			sumW += w
			sumX += w * float64(x)
			sumY += w * float64(y)
		}
	}
	if sumW == 0 {
		// Flat window, nothing to weight by. Keep the input position.
		return p, nil
	}
	return geometry.NewPoint2D(sumX/sumW, sumY/sumW), nil
}

// Gaussian2D refines positions by fitting a symmetric 2D gaussian with offset
// to the window via Nelder-Mead, seeded from the center-of-mass estimate.
// Fits that fail to converge or whose center escapes the window report
// ErrRefinementFailed.
type Gaussian2D struct{}

func (Gaussian2D) Name() string { return "gaussian_2d" }

func (Gaussian2D) Refine(p geometry.Point2D, g *imaging.Grid, radius float64) (geometry.Point2D, error) {
	x0, y0, x1, y1 := window(p, g, radius)
	if x1-x0 < 3 || y1-y0 < 3 {
		return geometry.Point2D{}, fmt.Errorf("refine %s at (%.1f, %.1f): window too small: %w", "gaussian_2d", p.X, p.Y, ErrRefinementFailed)
	}

	seed, err := CenterOfMass{}.Refine(p, g, radius)
	if err != nil {
		seed = p
	}

	localMin, localMax := math.Inf(1), math.Inf(-1)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			v := g.At(x, y)
			if v < localMin {
				localMin = v
			}
			if v > localMax {
				localMax = v
			}
		}
	}

	// Parameters: center x, center y, sigma, amplitude, offset.
	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			cx, cy := params[0], params[1]
			sigma, amp, off := params[2], params[3], params[4]
			if sigma <= 0 {
				return math.Inf(1)
			}
			inv := 1.0 / (2 * sigma * sigma)
			var ss float64
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					dx := float64(x) - cx
					dy := float64(y) - cy
					model := off + amp*math.Exp(-(dx*dx+dy*dy)*inv)
					r := g.At(x, y) - model
					ss += r * r
				}
			}
			return ss
		},
	}

	init := []float64{seed.X, seed.Y, radius / 2, localMax - localMin, localMin}
	result, err := optimize.Minimize(problem, init, nil, &optimize.NelderMead{})
	if err != nil {
		return geometry.Point2D{}, fmt.Errorf("refine %s at (%.1f, %.1f): %v: %w", "gaussian_2d", p.X, p.Y, err, ErrRefinementFailed)
	}
	if status := result.Status; status != optimize.GradientThreshold && status != optimize.FunctionConvergence && status != optimize.Success {
		return geometry.Point2D{}, fmt.Errorf("refine %s at (%.1f, %.1f): status %v: %w", "gaussian_2d", p.X, p.Y, status, ErrRefinementFailed)
	}

	fit := geometry.NewPoint2D(result.X[0], result.X[1])
	if fit.Distance(p) > radius {
		return geometry.Point2D{}, fmt.Errorf("refine %s at (%.1f, %.1f): fit escaped window: %w", "gaussian_2d", p.X, p.Y, ErrRefinementFailed)
	}
	return fit, nil
}

// RefineAll refines every position in the set with the given refiner. A
// position whose refinement fails is kept unrefined; the failure count is
// returned alongside the refined set.
func RefineAll(r Refiner, points geometry.PointSet, g *imaging.Grid, radius float64) (geometry.PointSet, int) {
	out := make(geometry.PointSet, len(points))
	failed := 0
	for i, p := range points {
		q, err := r.Refine(p, g, radius)
		if err != nil {
			out[i] = p
			failed++
			continue
		}
		out[i] = q
	}
	if failed > 0 {
		monitoring.Logf("refine %s: %d of %d positions kept unrefined", r.Name(), failed, len(points))
	}
	return out, failed
}

// FallbackRefiner tries each refiner in order and returns the first success.
type FallbackRefiner []Refiner

func (f FallbackRefiner) Name() string {
	if len(f) == 0 {
		return "none"
	}
	return f[0].Name() + "_with_fallback"
}

func (f FallbackRefiner) Refine(p geometry.Point2D, g *imaging.Grid, radius float64) (geometry.Point2D, error) {
	var err error
	for _, r := range f {
		var q geometry.Point2D
		q, err = r.Refine(p, g, radius)
		if err == nil {
			return q, nil
		}
	}
	if err == nil {
		err = ErrRefinementFailed
	}
	return geometry.Point2D{}, err
}

// window clips the square window of the given radius around p to the grid and
// returns half-open pixel bounds.
func window(p geometry.Point2D, g *imaging.Grid, radius float64) (x0, y0, x1, y1 int) {
	r := int(math.Ceil(radius))
	x0 = int(math.Round(p.X)) - r
	y0 = int(math.Round(p.Y)) - r
	x1 = int(math.Round(p.X)) + r + 1
	y1 = int(math.Round(p.Y)) + r + 1
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > g.Width {
		x1 = g.Width
	}
	if y1 > g.Height {
		y1 = g.Height
	}
	return x0, y0, x1, y1
}
