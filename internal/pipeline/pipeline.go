// Package pipeline runs the full strain-mapping analysis on one frame:
// preprocessing, lattice construction, position refinement, displacement
// matching, strain interpolation and summary statistics.
package pipeline

import (
	"fmt"

	"stem-strain/internal/displacement"
	"stem-strain/internal/imaging"
	"stem-strain/internal/lattice"
	"stem-strain/internal/monitoring"
	"stem-strain/internal/stats"
	"stem-strain/internal/strain"
	"stem-strain/pkg/geometry"
)

// Event kinds reported through Options.Events.
const (
	WarnDegenerateHull   = "degenerate_hull"
	WarnRefinementFailed = "refinement_failed"
)

// Event is a non-fatal anomaly noticed during a run.
type Event struct {
	Kind    string
	Message string
}

// Options configures one analysis run.
type Options struct {
	// Separation is the lattice period in pixels. Zero means estimate it
	// from the frame's FFT.
	Separation float64

	// PeakThreshold is the relative intensity floor for peak detection.
	PeakThreshold float64

	// RefineRadiusFraction sets the refinement window radius as a fraction
	// of the lattice separation.
	RefineRadiusFraction float64

	// Scale is the physical length of one pixel; zero disables
	// physical-unit reporting.
	Scale float64

	Preprocess imaging.PreprocessOptions
	Strain     strain.Options

	// Events receives non-fatal anomalies. May be nil.
	Events func(Event)
}

// DefaultOptions returns the run defaults.
func DefaultOptions() Options {
	return Options{
		PeakThreshold:        0.1,
		RefineRadiusFraction: 0.25,
		Preprocess:           imaging.DefaultPreprocessOptions(),
		Strain:               strain.DefaultOptions(),
	}
}

// WithSeparation returns a copy with an explicit lattice separation.
func (o Options) WithSeparation(sep float64) Options {
	o.Separation = sep
	return o
}

// WithPeakThreshold returns a copy with the given peak detection threshold.
func (o Options) WithPeakThreshold(t float64) Options {
	o.PeakThreshold = t
	return o
}

// WithScale returns a copy reporting physical units at the given
// length-per-pixel.
func (o Options) WithScale(scale float64) Options {
	o.Scale = scale
	return o
}

// Result carries everything a run produced.
type Result struct {
	Separation float64

	SublatticeA *lattice.Sublattice
	IdealB      geometry.PointSet
	RefinedB    geometry.PointSet

	Displacement *displacement.Field
	Strain       *strain.Field
	Summary      *stats.Summary
}

// Run analyzes one frame. Stages with a safe fallback (refinement, hull
// masking) recover locally and report an event; stages without one
// (estimation, zone axes, empty reference) fail the run.
func Run(frame *imaging.Grid, opts Options) (*Result, error) {
	if opts.PeakThreshold <= 0 {
		opts.PeakThreshold = DefaultOptions().PeakThreshold
	}
	if opts.RefineRadiusFraction <= 0 {
		opts.RefineRadiusFraction = DefaultOptions().RefineRadiusFraction
	}
	if opts.Strain.GridSize == 0 {
		opts.Strain = strain.DefaultOptions()
	}

	g, err := imaging.Preprocess(frame, opts.Preprocess)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	res := &Result{Separation: opts.Separation}
	if res.Separation <= 0 {
		res.Separation, err = lattice.EstimateSeparation(g, lattice.DefaultSeparationOptions())
		if err != nil {
			return nil, err
		}
		monitoring.Logf("pipeline: estimated lattice separation %.2f px", res.Separation)
	}

	peaks, err := lattice.FindPeaks(g, lattice.PeakOptions{
		Separation: res.Separation / 2,
		Threshold:  opts.PeakThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("peak detection: %w", err)
	}

	res.SublatticeA = lattice.NewSublattice(peaks, res.Separation)
	if err := res.SublatticeA.ConstructZoneAxes(); err != nil {
		return nil, err
	}

	res.IdealB, err = res.SublatticeA.IdealSecondLattice()
	if err != nil {
		return nil, err
	}

	radius := opts.RefineRadiusFraction * res.Separation
	refiner := lattice.FallbackRefiner{lattice.Gaussian2D{}, lattice.CenterOfMass{}}
	var failed int
	res.RefinedB, failed = lattice.RefineAll(refiner, res.IdealB, g, radius)
	if failed > 0 {
		opts.emit(Event{
			Kind:    WarnRefinementFailed,
			Message: fmt.Sprintf("%d of %d positions kept unrefined", failed, len(res.IdealB)),
		})
	}

	res.Displacement, err = displacement.Compute(res.RefinedB, res.IdealB)
	if err != nil {
		return nil, err
	}

	res.Strain, err = strain.Compute(res.Displacement.Observed, res.Displacement.DX, res.Displacement.DY, g.Height, g.Width, opts.Strain)
	if err != nil {
		return nil, err
	}
	if res.Strain.MaskDegenerate {
		opts.emit(Event{
			Kind:    WarnDegenerateHull,
			Message: "validity mask fell back to all-valid",
		})
	}

	res.Summary, err = stats.Compute(res.Displacement.DX, res.Displacement.DY, opts.Scale)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (o Options) emit(e Event) {
	monitoring.Logf("pipeline: %s: %s", e.Kind, e.Message)
	if o.Events != nil {
		o.Events(e)
	}
}
