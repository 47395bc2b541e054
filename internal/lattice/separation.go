// Package lattice locates atomic sublattices in STEM intensity grids: FFT
// periodicity estimation, peak finding, zone-axis construction, derivation of
// ideal second-sublattice positions, and sub-pixel position refinement.
package lattice

import (
	"container/heap"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"stem-strain/internal/imaging"
)

// SeparationOptions configures the FFT-based lattice period estimator.
type SeparationOptions struct {
	NumPeaks  int     // number of strongest FFT bins to consider
	MinRadius float64 // DC-suppression radius around the spectrum center, in bins
}

// DefaultSeparationOptions returns the estimator defaults.
func DefaultSeparationOptions() SeparationOptions {
	return SeparationOptions{NumPeaks: 6, MinRadius: 5}
}

// EstimateSeparation estimates the real-space lattice period of a frame in
// pixels from the strongest peaks of its centered 2D FFT magnitude. Each
// surviving peak at distance d from the spectrum center contributes the two
// candidate periods H/d and W/d; the result is their arithmetic mean.
// Returns ErrEstimationFailed if no peak survives the DC filter.
func EstimateSeparation(g *imaging.Grid, opts SeparationOptions) (float64, error) {
	if opts.NumPeaks <= 0 {
		opts.NumPeaks = DefaultSeparationOptions().NumPeaks
	}
	if opts.MinRadius <= 0 {
		opts.MinRadius = DefaultSeparationOptions().MinRadius
	}

	mag := fftMagnitude(g)
	h, w := g.Height, g.Width
	cy, cx := h/2, w/2

	// Suppress the DC peak: zero everything within MinRadius of center.
	r2 := opts.MinRadius * opts.MinRadius
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x - cx)
			dy := float64(y - cy)
			if dx*dx+dy*dy <= r2 {
				mag[y*w+x] = 0
			}
		}
	}

	peaks := topBins(mag, w, opts.NumPeaks)

	var periods []float64
	for _, p := range peaks {
		if p.value <= 0 {
			continue
		}
		d := math.Hypot(float64(p.x-cx), float64(p.y-cy))
		if d == 0 {
			continue
		}
		// The transform is anisotropic for non-square frames: consider
		// both axis scalings.
		periods = append(periods, float64(h)/d, float64(w)/d)
	}
	if len(periods) == 0 {
		return 0, ErrEstimationFailed
	}

	var sum float64
	for _, p := range periods {
		sum += p
	}
	return sum / float64(len(periods)), nil
}

// fftMagnitude computes the centered 2D FFT magnitude of a grid: row
// transforms followed by column transforms, shifted so DC sits at
// (W/2, H/2), matching the usual fftshift convention.
func fftMagnitude(g *imaging.Grid) []float64 {
	h, w := g.Height, g.Width

	freq := make([]complex128, h*w)
	rowFFT := fourier.NewCmplxFFT(w)
	row := make([]complex128, w)
	rowOut := make([]complex128, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			row[x] = complex(g.At(x, y), 0)
		}
		rowOut = rowFFT.Coefficients(rowOut, row)
		copy(freq[y*w:(y+1)*w], rowOut)
	}

	colFFT := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	colOut := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = freq[y*w+x]
		}
		colOut = colFFT.Coefficients(colOut, col)
		for y := 0; y < h; y++ {
			freq[y*w+x] = colOut[y]
		}
	}

	cy, cx := h/2, w/2
	mag := make([]float64, h*w)
	for y := 0; y < h; y++ {
		sy := ((y-cy)%h + h) % h
		for x := 0; x < w; x++ {
			sx := ((x-cx)%w + w) % w
			mag[y*w+x] = cmplx.Abs(freq[sy*w+sx])
		}
	}
	return mag
}

// bin is one FFT magnitude sample with its spectrum coordinates.
type bin struct {
	value float64
	x, y  int
}

// binHeap is a min-heap over bin values, used for partial top-k selection so
// the whole spectrum never needs sorting.
type binHeap []bin

func (h binHeap) Len() int            { return len(h) }
func (h binHeap) Less(i, j int) bool  { return h[i].value < h[j].value }
func (h binHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *binHeap) Push(x interface{}) { *h = append(*h, x.(bin)) }
func (h *binHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// topBins returns the k largest magnitude bins in deterministic scan order.
func topBins(mag []float64, width, k int) []bin {
	h := make(binHeap, 0, k+1)
	heap.Init(&h)
	for i, v := range mag {
		if len(h) < k {
			heap.Push(&h, bin{value: v, x: i % width, y: i / width})
			continue
		}
		if v > h[0].value {
			h[0] = bin{value: v, x: i % width, y: i / width}
			heap.Fix(&h, 0)
		}
	}
	return h
}
