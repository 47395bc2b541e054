// Package profile samples scattered per-atom values along a line, for
// distance plots of displacement or strain across a feature such as an
// interface or a dislocation.
package profile

import (
	"errors"
	"fmt"

	"stem-strain/internal/spatial"
	"stem-strain/pkg/geometry"
)

// ErrNoSamples means a profile was requested over an empty sample set.
var ErrNoSamples = errors.New("profile: no sample points")

// Options configures line-profile sampling.
type Options struct {
	NumSamples   int     // positions along the line
	SearchRadius float64 // neighbor radius per position; 0 = line length / 10
}

// DefaultOptions returns the sampling defaults.
func DefaultOptions() Options {
	return Options{NumSamples: 100}
}

// Line is a sampled profile. Distances measure from the start point, in
// pixels; Positions and Values are aligned with Distances.
type Line struct {
	Start, End geometry.Point2D

	Distances []float64
	Positions geometry.PointSet
	Values    []float64
}

// Compute samples scattered values along the start-to-end line. At each
// sample position the value is the inverse-distance-weighted average of all
// data points within the search radius; positions with no neighbor in range
// fall back to the single nearest data point.
func Compute(points geometry.PointSet, values []float64, start, end geometry.Point2D, opts Options) (*Line, error) {
	if len(points) == 0 {
		return nil, ErrNoSamples
	}
	if len(values) != len(points) {
		return nil, fmt.Errorf("profile: %d points but %d values", len(points), len(values))
	}
	if opts.NumSamples < 2 {
		opts.NumSamples = DefaultOptions().NumSamples
	}

	vec := end.Sub(start)
	length := vec.Norm()
	radius := opts.SearchRadius
	if radius <= 0 {
		radius = length / 10
	}

	ix := spatial.NewIndex(points)
	line := &Line{
		Start:     start,
		End:       end,
		Distances: make([]float64, opts.NumSamples),
		Positions: make(geometry.PointSet, opts.NumSamples),
		Values:    make([]float64, opts.NumSamples),
	}

	for i := 0; i < opts.NumSamples; i++ {
		t := float64(i) / float64(opts.NumSamples-1)
		pos := start.Add(vec.Scale(t))
		line.Distances[i] = t * length
		line.Positions[i] = pos
		line.Values[i] = sampleAt(ix, values, pos, radius)
	}
	return line, nil
}

// sampleAt averages the values of all indexed points within radius of pos,
// weighted by inverse distance. The epsilon keeps a sample sitting exactly
// on a data point from dividing by zero while still dominating the average.
func sampleAt(ix *spatial.Index, values []float64, pos geometry.Point2D, radius float64) float64 {
	const eps = 1e-10

	neighbors := ix.Within(pos, radius)
	if len(neighbors) == 0 {
		nearest, _ := ix.Nearest(pos)
		return values[nearest]
	}

	var sumW, sumWV float64
	for _, n := range neighbors {
		w := 1.0 / (pos.Distance(ix.At(n)) + eps)
		sumW += w
		sumWV += w * values[n]
	}
	return sumWV / sumW
}
