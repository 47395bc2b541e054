package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEmpty(t *testing.T) {
	_, err := Compute(nil, nil, 0)
	assert.ErrorIs(t, err, ErrEmptyField)
}

func TestComputeLengthMismatch(t *testing.T) {
	_, err := Compute([]float64{1}, []float64{1, 2}, 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyField)
	assert.Contains(t, err.Error(), "1 dx and 2 dy")
}

func TestComputeAllZero(t *testing.T) {
	dx := make([]float64, 10)
	dy := make([]float64, 10)

	s, err := Compute(dx, dy, 0)
	require.NoError(t, err)

	assert.Equal(t, 10, s.Count)
	assert.Equal(t, 0.0, s.Magnitude.Mean)
	assert.Equal(t, 0.0, s.Magnitude.Std)
	assert.Equal(t, 0.0, s.Magnitude.Min)
	assert.Equal(t, 0.0, s.Magnitude.Max)
	assert.Equal(t, 0.0, s.Magnitude.Median)
	assert.Equal(t, 0.0, s.AngleStdDeg)
	assert.Nil(t, s.MagnitudePhysical)
}

func TestComputeUniformOffset(t *testing.T) {
	n := 64
	dx := make([]float64, n)
	dy := make([]float64, n)
	for i := range dx {
		dx[i] = 0.3
		dy[i] = -0.2
	}

	s, err := Compute(dx, dy, 0)
	require.NoError(t, err)

	assert.InDelta(t, math.Hypot(0.3, 0.2), s.Magnitude.Mean, 1e-12)
	assert.InDelta(t, 0.0, s.Magnitude.Std, 1e-12)
	assert.InDelta(t, s.Magnitude.Mean, s.Magnitude.Median, 1e-12)
	assert.InDelta(t, math.Atan2(-0.2, 0.3)*180/math.Pi, s.AngleMeanDeg, 1e-9)
	assert.InDelta(t, 0.0, s.AngleStdDeg, 1e-9)
}

func TestComputeMedianEvenCount(t *testing.T) {
	// Magnitudes 1, 2, 3, 4 along the x axis.
	dx := []float64{3, 1, 4, 2}
	dy := []float64{0, 0, 0, 0}

	s, err := Compute(dx, dy, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, s.Magnitude.Median, 1e-12)
	assert.Equal(t, 1.0, s.Magnitude.Min)
	assert.Equal(t, 4.0, s.Magnitude.Max)
}

func TestComputePhysicalUnits(t *testing.T) {
	dx := []float64{0.3, 0.3}
	dy := []float64{-0.2, -0.2}

	s, err := Compute(dx, dy, 0.05)
	require.NoError(t, err)
	require.NotNil(t, s.MagnitudePhysical)
	assert.InDelta(t, s.Magnitude.Mean*0.05, s.MagnitudePhysical.Mean, 1e-12)
	assert.InDelta(t, s.Magnitude.Median*0.05, s.MagnitudePhysical.Median, 1e-12)
}

func TestComputeOpposedVectorsSpread(t *testing.T) {
	// Two opposite unit vectors: zero resultant, maximal circular spread.
	s, err := Compute([]float64{1, -1}, []float64{0, 0}, 0)
	require.NoError(t, err)
	assert.True(t, math.IsInf(s.AngleStdDeg, 1))
}
