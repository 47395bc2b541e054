package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stem-strain/internal/imaging"
	"stem-strain/internal/lattice"
	"stem-strain/pkg/geometry"
)

// syntheticFrame renders a 100x100 frame with a bright 81-atom sublattice on
// a separation-10 grid and a dimmer 64-atom sublattice displaced (0.3, -0.2)
// px from the cell centers.
func syntheticFrame() *imaging.Grid {
	a := imaging.SquareLattice(100, 100, 10, 10)
	g := imaging.RenderLattice(100, 100, a, 1.2, 1.0)

	b := imaging.SquareLattice(100, 100, 10, 15)
	offset := make(geometry.PointSet, len(b))
	for i, p := range b {
		offset[i] = p.Add(geometry.NewPoint2D(0.3, -0.2))
	}
	shifted := imaging.RenderLattice(100, 100, offset, 1.2, 0.5)
	for i := range g.Data {
		g.Data[i] += shifted.Data[i]
	}
	return g
}

func TestRunFullScenario(t *testing.T) {
	// Threshold 0.6 keeps the dim sublattice out of peak detection.
	opts := DefaultOptions().WithSeparation(10).WithPeakThreshold(0.6)

	var events []Event
	opts.Events = func(e Event) { events = append(events, e) }

	res, err := Run(syntheticFrame(), opts)
	require.NoError(t, err)

	assert.Equal(t, 10.0, res.Separation)
	assert.Len(t, res.SublatticeA.Positions, 81)
	assert.GreaterOrEqual(t, len(res.SublatticeA.ZoneAxes), 2)
	require.Len(t, res.IdealB, 64)
	require.Len(t, res.RefinedB, 64)

	// Refinement must recover the planted offset at every site.
	for i := range res.Displacement.DX {
		assert.InDelta(t, 0.3, res.Displacement.DX[i], 0.1)
		assert.InDelta(t, -0.2, res.Displacement.DY[i], 0.1)
	}

	require.NotNil(t, res.Summary)
	assert.Equal(t, 64, res.Summary.Count)
	assert.InDelta(t, math.Hypot(0.3, 0.2), res.Summary.Magnitude.Mean, 0.1)

	require.NotNil(t, res.Strain)
	assert.False(t, res.Strain.MaskDegenerate)

	// A uniform offset is pure translation: no strain inside the mask.
	for j := range res.Strain.Mask {
		for i := range res.Strain.Mask[j] {
			if res.Strain.Mask[j][i] {
				assert.InDelta(t, 0.0, res.Strain.Exx[j][i], 0.05)
			}
		}
	}
}

func TestRunEstimatesSeparation(t *testing.T) {
	a := imaging.SquareLattice(100, 100, 10, 10)
	g := imaging.RenderLattice(100, 100, a, 1.5, 1.0)

	opts := DefaultOptions().WithPeakThreshold(0.3)

	res, err := Run(g, opts)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, res.Separation, 2.0)
}

func TestRunSparseFrameFails(t *testing.T) {
	g := imaging.RenderLattice(50, 50, geometry.PointSet{{25, 25}}, 1.5, 1.0)

	_, err := Run(g, DefaultOptions().WithSeparation(10))
	assert.ErrorIs(t, err, lattice.ErrInsufficientZoneAxes)
}

func TestRunPhysicalScale(t *testing.T) {
	opts := DefaultOptions().WithSeparation(10).WithPeakThreshold(0.6).WithScale(0.05)

	res, err := Run(syntheticFrame(), opts)
	require.NoError(t, err)
	require.NotNil(t, res.Summary.MagnitudePhysical)
	assert.InDelta(t, res.Summary.Magnitude.Mean*0.05, res.Summary.MagnitudePhysical.Mean, 1e-12)
}
