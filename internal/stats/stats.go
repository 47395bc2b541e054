// Package stats summarizes displacement fields with scalar and circular
// statistics.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ErrEmptyField means statistics were requested for a displacement field
// with no atoms.
var ErrEmptyField = errors.New("stats: empty displacement field")

// Moments are scalar summary statistics of the displacement magnitudes. Std
// is the population standard deviation.
type Moments struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Summary describes a displacement field. Angles follow atan2(dy, dx) in
// degrees; the mean direction is the direction of the vector mean rather
// than the mean of angles, which would suffer wraparound bias.
type Summary struct {
	Count     int     `json:"count"`
	Magnitude Moments `json:"magnitude_px"`

	// MagnitudePhysical is Magnitude scaled by the length-per-pixel factor.
	// Nil when no scale was supplied.
	MagnitudePhysical *Moments `json:"magnitude_physical,omitempty"`

	AngleMeanDeg float64 `json:"angle_mean_deg"`
	AngleStdDeg  float64 `json:"angle_std_deg"`
}

// Compute summarizes per-atom displacements. scale is the physical length of
// one pixel; pass 0 to skip physical-unit reporting.
func Compute(dx, dy []float64, scale float64) (*Summary, error) {
	if len(dx) == 0 {
		return nil, ErrEmptyField
	}
	if len(dx) != len(dy) {
		return nil, fmt.Errorf("stats: %d dx and %d dy values", len(dx), len(dy))
	}
	n := len(dx)

	mags := make([]float64, n)
	var sumX, sumY float64
	var sumCos, sumSin float64
	for i := range dx {
		mags[i] = math.Hypot(dx[i], dy[i])
		sumX += dx[i]
		sumY += dy[i]
		a := math.Atan2(dy[i], dx[i])
		sumCos += math.Cos(a)
		sumSin += math.Sin(a)
	}

	s := &Summary{
		Count:        n,
		Magnitude:    moments(mags),
		AngleMeanDeg: math.Atan2(sumY, sumX) * 180 / math.Pi,
	}

	// Circular spread from the mean resultant length.
	r := math.Hypot(sumCos, sumSin) / float64(n)
	if r > 1 {
		r = 1
	}
	if r > 0 {
		s.AngleStdDeg = math.Sqrt(-2*math.Log(r)) * 180 / math.Pi
	} else {
		s.AngleStdDeg = math.Inf(1)
	}

	if scale > 0 {
		p := Moments{
			Mean:   s.Magnitude.Mean * scale,
			Std:    s.Magnitude.Std * scale,
			Min:    s.Magnitude.Min * scale,
			Max:    s.Magnitude.Max * scale,
			Median: s.Magnitude.Median * scale,
		}
		s.MagnitudePhysical = &p
	}
	return s, nil
}

func moments(values []float64) Moments {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = 0.5 * (sorted[n/2-1] + sorted[n/2])
	}

	return Moments{
		Mean:   stat.Mean(values, nil),
		Std:    math.Sqrt(stat.PopVariance(values, nil)),
		Min:    sorted[0],
		Max:    sorted[n-1],
		Median: median,
	}
}
