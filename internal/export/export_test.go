package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stem-strain/internal/displacement"
	"stem-strain/internal/profile"
	"stem-strain/internal/stats"
	"stem-strain/pkg/geometry"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWritePositionsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.csv")
	points := geometry.PointSet{{X: 1.5, Y: 2}, {X: 3, Y: 4.25}}

	require.NoError(t, WritePositionsCSV(path, points))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"x", "y"}, rows[0])
	assert.Equal(t, []string{"1.5", "2"}, rows[1])
	assert.Equal(t, []string{"3", "4.25"}, rows[2])
}

func TestWriteDisplacementsCSV(t *testing.T) {
	f := &displacement.Field{
		Base:     geometry.PointSet{{X: 10, Y: 10}},
		Observed: geometry.PointSet{{X: 10.3, Y: 9.8}},
		Index:    []int{0},
		DX:       []float64{0.3},
		DY:       []float64{-0.2},
	}

	path := filepath.Join(t.TempDir(), "disp.csv")
	require.NoError(t, WriteDisplacementsCSV(path, f, 0))
	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"x", "y", "dx_px", "dy_px"}, rows[0])
	assert.Equal(t, "0.3", rows[1][2])

	scaled := filepath.Join(t.TempDir(), "disp_phys.csv")
	require.NoError(t, WriteDisplacementsCSV(scaled, f, 0.05))
	rows = readCSV(t, scaled)
	assert.Len(t, rows[0], 6)
	assert.Equal(t, "0.015", rows[1][4])
}

func TestWriteSummaryJSON(t *testing.T) {
	dx := []float64{0.3, 0.3}
	dy := []float64{-0.2, -0.2}
	s, err := stats.Compute(dx, dy, 0)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, WriteSummaryJSON(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"count\": 2")
	assert.Contains(t, string(data), "magnitude_px")
}

func TestWriteProfileCSV(t *testing.T) {
	points := geometry.PointSet{{X: 0, Y: 0}, {X: 10, Y: 0}}
	values := []float64{1, 3}
	line, err := profile.Compute(points, values, geometry.NewPoint2D(0, 0), geometry.NewPoint2D(10, 0), profile.Options{NumSamples: 3, SearchRadius: 0.5})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "profile.csv")
	require.NoError(t, WriteProfileCSV(path, line, "magnitude_px"))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"distance", "x", "y", "magnitude_px"}, rows[0])
	assert.Equal(t, "0", rows[1][0])
	assert.Equal(t, "10", rows[3][0])
	assert.Equal(t, "3", rows[3][3])
}

func TestWriteSummaryText(t *testing.T) {
	s, err := stats.Compute([]float64{0.3, 0.3}, []float64{-0.2, -0.2}, 0.05)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "summary.txt")
	require.NoError(t, WriteSummaryText(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Displacement Statistics Summary")
	assert.Contains(t, text, "count: 2")
	assert.Contains(t, text, "magnitude_mean_px: 0.360555")
	assert.Contains(t, text, "magnitude_mean_physical: 0.018028")
}
