package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stem-strain/internal/displacement"
	"stem-strain/internal/imaging"
	"stem-strain/internal/profile"
	"stem-strain/internal/strain"
	"stem-strain/pkg/geometry"
)

func testField(t *testing.T) *strain.Field {
	t.Helper()
	points := imaging.SquareLattice(50, 50, 10, 10)
	dx := make([]float64, len(points))
	dy := make([]float64, len(points))
	opts := strain.DefaultOptions()
	opts.GridSize = 20
	f, err := strain.Compute(points, dx, dy, 50, 50, opts)
	require.NoError(t, err)
	return f
}

func TestSaveHeatmap(t *testing.T) {
	f := testField(t)
	path := filepath.Join(t.TempDir(), "exx.png")

	require.NoError(t, SaveHeatmap(f, ComponentExx, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveHeatmapUnknownComponent(t *testing.T) {
	f := testField(t)
	err := SaveHeatmap(f, "ezz", filepath.Join(t.TempDir(), "ezz.png"))
	assert.Error(t, err)
}

func TestSaveMagnitudeHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.png")
	dx := []float64{0.1, 0.2, 0.3, 0.4}
	dy := []float64{0, -0.1, 0.1, 0}

	require.NoError(t, SaveMagnitudeHistogram(dx, dy, 8, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveOverlay(t *testing.T) {
	positions := imaging.SquareLattice(50, 50, 10, 10)
	g := imaging.RenderLattice(50, 50, positions, 1.5, 1.0)

	observed := positions.Clone()
	for i := range observed {
		observed[i].X += 0.3
		observed[i].Y -= 0.2
	}
	f, err := displacement.Compute(observed, positions)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "overlay.png")
	require.NoError(t, SaveOverlay(g, f, 10, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveLineProfile(t *testing.T) {
	points := imaging.SquareLattice(50, 50, 10, 10)
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.X * 0.01
	}
	line, err := profile.Compute(points, values, geometry.NewPoint2D(5, 25), geometry.NewPoint2D(45, 25), profile.DefaultOptions())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "profile.png")
	require.NoError(t, SaveLineProfile(line, "magnitude (px)", 0, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
