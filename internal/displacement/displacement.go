// Package displacement matches observed atom positions to their ideal lattice
// sites and derives per-atom displacement vectors.
package displacement

import (
	"errors"
	"math"

	"stem-strain/internal/spatial"
	"stem-strain/pkg/geometry"
)

// ErrEmptyReference means nearest-site matching was attempted against an
// empty ideal-position set. This is a caller precondition violation.
var ErrEmptyReference = errors.New("displacement: ideal position set is empty")

// Field pairs observed atom positions with their nearest ideal sites. DX and
// DY are aligned with Observed, in pixels.
type Field struct {
	Base     geometry.PointSet // ideal sites, as supplied
	Observed geometry.PointSet // refined positions, as supplied
	Index    []int             // Index[i] is the ideal site matched to Observed[i]
	DX, DY   []float64
}

// Compute matches every observed position to its nearest ideal site and
// returns the displacement observed - ideal per atom, preserving observed
// order. Distance ties resolve to the lowest ideal-site index so repeated
// runs agree. Returns ErrEmptyReference if ideal is empty.
func Compute(observed, ideal geometry.PointSet) (*Field, error) {
	if len(ideal) == 0 {
		return nil, ErrEmptyReference
	}

	ix := spatial.NewIndex(ideal)
	f := &Field{
		Base:     ideal.Clone(),
		Observed: observed.Clone(),
		Index:    make([]int, len(observed)),
		DX:       make([]float64, len(observed)),
		DY:       make([]float64, len(observed)),
	}
	for i, p := range observed {
		j := ix.NearestLowestIndex(p)
		f.Index[i] = j
		f.DX[i] = p.X - ideal[j].X
		f.DY[i] = p.Y - ideal[j].Y
	}
	return f, nil
}

// Physical returns copies of the displacement components multiplied by a
// length-per-pixel scale factor. The pixel values in the field stay the
// source of truth.
func (f *Field) Physical(scale float64) (dx, dy []float64) {
	dx = make([]float64, len(f.DX))
	dy = make([]float64, len(f.DY))
	for i := range f.DX {
		dx[i] = f.DX[i] * scale
		dy[i] = f.DY[i] * scale
	}
	return dx, dy
}

// Magnitudes returns per-atom displacement magnitudes aligned with Observed.
func (f *Field) Magnitudes() []float64 {
	out := make([]float64, len(f.DX))
	for i := range f.DX {
		out[i] = math.Hypot(f.DX[i], f.DY[i])
	}
	return out
}
