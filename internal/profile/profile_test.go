package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stem-strain/pkg/geometry"
)

func TestComputeEmpty(t *testing.T) {
	_, err := Compute(nil, nil, geometry.Point2D{}, geometry.NewPoint2D(10, 0), DefaultOptions())
	assert.ErrorIs(t, err, ErrNoSamples)
}

func TestComputeLengthMismatch(t *testing.T) {
	points := geometry.PointSet{{X: 0, Y: 0}, {X: 1, Y: 1}}
	_, err := Compute(points, []float64{1}, geometry.Point2D{}, geometry.NewPoint2D(10, 0), DefaultOptions())
	assert.Error(t, err)
}

func TestComputeSamplesAlongLine(t *testing.T) {
	// Dense column of points at x = 0..10 carrying value = x.
	var points geometry.PointSet
	var values []float64
	for x := 0; x <= 10; x++ {
		for y := -1; y <= 1; y++ {
			points = append(points, geometry.NewPoint2D(float64(x), float64(y)))
			values = append(values, float64(x))
		}
	}

	opts := Options{NumSamples: 11, SearchRadius: 0.4}
	line, err := Compute(points, values, geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0), opts)
	require.NoError(t, err)
	require.Len(t, line.Values, 11)

	assert.Equal(t, 0.0, line.Distances[0])
	assert.InDelta(t, 10.0, line.Distances[10], 1e-12)
	assert.Equal(t, geometry.NewPoint2D(5, 0), line.Positions[5])

	// Sample positions sit on data points, so the on-point value dominates
	// the inverse-distance average.
	for i, v := range line.Values {
		assert.InDelta(t, float64(i), v, 1e-6)
	}
}

func TestComputeNearestFallback(t *testing.T) {
	points := geometry.PointSet{{X: 0, Y: 50}, {X: 100, Y: 50}}
	values := []float64{-1, 7}

	// A tiny radius leaves every sample without neighbors in range.
	opts := Options{NumSamples: 5, SearchRadius: 0.001}
	line, err := Compute(points, values, geometry.NewPoint2D(0, 50), geometry.NewPoint2D(100, 50), opts)
	require.NoError(t, err)

	assert.InDelta(t, -1.0, line.Values[1], 1e-12) // closer to the left point
	assert.InDelta(t, 7.0, line.Values[3], 1e-12)  // closer to the right point
}

func TestComputeDefaultRadius(t *testing.T) {
	points := geometry.PointSet{{X: 5, Y: 0}}
	values := []float64{2.5}

	line, err := Compute(points, values, geometry.Point2D{}, geometry.NewPoint2D(10, 0), Options{NumSamples: 3})
	require.NoError(t, err)
	for _, v := range line.Values {
		assert.Equal(t, 2.5, v)
	}
}
