package strain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stem-strain/internal/imaging"
	"stem-strain/pkg/geometry"
)

func TestComputeNoPoints(t *testing.T) {
	_, err := Compute(nil, nil, nil, 100, 100, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoSourcePoints)
}

func TestComputeLengthMismatch(t *testing.T) {
	points := geometry.PointSet{{1, 1}, {2, 2}}
	_, err := Compute(points, []float64{0}, []float64{0, 0}, 100, 100, DefaultOptions())
	assert.Error(t, err)
}

func TestZeroDisplacementGivesZeroStrain(t *testing.T) {
	points := imaging.SquareLattice(100, 100, 10, 10)
	dx := make([]float64, len(points))
	dy := make([]float64, len(points))

	opts := DefaultOptions()
	opts.GridSize = 50
	f, err := Compute(points, dx, dy, 100, 100, opts)
	require.NoError(t, err)
	require.False(t, f.MaskDegenerate)

	for j := range f.Mask {
		for i := range f.Mask[j] {
			if !f.Mask[j][i] {
				continue
			}
			assert.InDelta(t, 0.0, f.Exx[j][i], 1e-9)
			assert.InDelta(t, 0.0, f.Eyy[j][i], 1e-9)
			assert.InDelta(t, 0.0, f.Exy[j][i], 1e-9)
			assert.InDelta(t, 0.0, f.Rot[j][i], 1e-9)
		}
	}
}

func TestUniformDisplacementGivesZeroStrain(t *testing.T) {
	points := imaging.SquareLattice(100, 100, 10, 10)
	dx := make([]float64, len(points))
	dy := make([]float64, len(points))
	for i := range dx {
		dx[i] = 0.3
		dy[i] = -0.2
	}

	opts := DefaultOptions()
	opts.GridSize = 50
	f, err := Compute(points, dx, dy, 100, 100, opts)
	require.NoError(t, err)

	for j := range f.Mask {
		for i := range f.Mask[j] {
			if !f.Mask[j][i] {
				continue
			}
			assert.InDelta(t, 0.3, f.U[j][i], 1e-9)
			assert.InDelta(t, -0.2, f.V[j][i], 1e-9)
			assert.InDelta(t, 0.0, f.Exx[j][i], 1e-9)
			assert.InDelta(t, 0.0, f.RotDeg[j][i], 1e-9)
		}
	}
}

func TestValidityMaskSquare(t *testing.T) {
	square := geometry.PointSet{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	zeros := make([]float64, 4)

	opts := DefaultOptions()
	opts.GridSize = 41
	opts.ShrinkMargin = 0
	f, err := Compute(square, zeros, zeros, 10, 10, opts)
	require.NoError(t, err)
	require.False(t, f.MaskDegenerate)

	assert.True(t, maskAt(f, 5, 5))
	assert.False(t, maskAt(f, -0.1, 5))
	assert.False(t, maskAt(f, 5, 10.1))

	opts.ShrinkMargin = 0.5
	fs, err := Compute(square, zeros, zeros, 10, 10, opts)
	require.NoError(t, err)

	// Shrinking by half leaves only the central [2.5, 7.5] square valid.
	assert.True(t, maskAt(fs, 5, 5))
	assert.False(t, maskAt(fs, 1, 1))
	assert.Less(t, countValid(fs), countValid(f))
}

func TestValidityMaskDegenerate(t *testing.T) {
	collinear := geometry.PointSet{{0, 0}, {5, 5}, {10, 10}, {15, 15}}
	zeros := make([]float64, 4)

	opts := DefaultOptions()
	opts.GridSize = 20
	f, err := Compute(collinear, zeros, zeros, 20, 20, opts)
	require.NoError(t, err)

	assert.True(t, f.MaskDegenerate)
	assert.Equal(t, opts.GridSize*opts.GridSize, countValid(f))
}

func TestGradientPlane(t *testing.T) {
	// A plane f(x, y) = 2x + 3y has exact central and one-sided differences.
	g := make([][]float64, 5)
	for j := range g {
		g[j] = make([]float64, 5)
		for i := range g[j] {
			g[j][i] = 2*float64(i) + 3*float64(j)
		}
	}
	ddx, ddy := gradient(g, 1, 1)
	for j := 0; j < 5; j++ {
		for i := 0; i < 5; i++ {
			assert.InDelta(t, 2.0, ddx[j][i], 1e-12)
			assert.InDelta(t, 3.0, ddy[j][i], 1e-12)
		}
	}
}

// maskAt reads the mask at the grid cell closest to (x, y).
func maskAt(f *Field, x, y float64) bool {
	return f.Mask[nearestIndex(f.GridY, y)][nearestIndex(f.GridX, x)]
}

func nearestIndex(axis []float64, v float64) int {
	best := 0
	for i := range axis {
		if abs(axis[i]-v) < abs(axis[best]-v) {
			best = i
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func countValid(f *Field) int {
	n := 0
	for j := range f.Mask {
		for i := range f.Mask[j] {
			if f.Mask[j][i] {
				n++
			}
		}
	}
	return n
}
