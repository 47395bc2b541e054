package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stem-strain/internal/stats"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)

	summary, err := stats.Compute([]float64{0.3}, []float64{-0.2}, 0)
	require.NoError(t, err)

	id, err := s.SaveRun(Run{
		ImagePath:  "frames/a.tiff",
		Separation: 10,
		AtomCountA: 81,
		AtomCountB: 64,
		Summary:    summary,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, "frames/a.tiff", got.ImagePath)
	assert.Equal(t, 10.0, got.Separation)
	assert.Equal(t, 81, got.AtomCountA)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 1, got.Summary.Count)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun("no-such-run")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)

	for _, path := range []string{"a.tiff", "b.tiff", "c.tiff"} {
		_, err := s.SaveRun(Run{ImagePath: path, Separation: 10})
		require.NoError(t, err)
	}

	runs, err := s.ListRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
