package lattice

import (
	"fmt"
	"sort"

	"stem-strain/internal/imaging"
	"stem-strain/pkg/geometry"
)

// PeakOptions configures atom-column peak detection.
type PeakOptions struct {
	Separation float64 // minimum distance between accepted peaks, in pixels
	Threshold  float64 // relative intensity threshold in [0,1); 0 disables
}

// FindPeaks detects atom-column candidates as intensity maxima that dominate
// their 3x3 neighborhood, then greedily enforces the minimum separation in
// descending intensity order. Equal intensities resolve by scan order, so
// repeated runs on identical input agree.
func FindPeaks(g *imaging.Grid, opts PeakOptions) (geometry.PointSet, error) {
	if opts.Separation <= 0 {
		return nil, fmt.Errorf("peak detection: separation must be positive, got %g", opts.Separation)
	}

	_, max := g.MinMax()
	floor := opts.Threshold * max

	type candidate struct {
		x, y int
		v    float64
	}
	var cands []candidate
	for y := 1; y < g.Height-1; y++ {
		for x := 1; x < g.Width-1; x++ {
			v := g.At(x, y)
			if v < floor || v <= 0 {
				continue
			}
			if !isLocalMax(g, x, y, v) {
				continue
			}
			cands = append(cands, candidate{x: x, y: y, v: v})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].v > cands[j].v })

	minDistSq := opts.Separation * opts.Separation
	var peaks geometry.PointSet
	for _, c := range cands {
		p := geometry.NewPoint2D(float64(c.x), float64(c.y))
		ok := true
		for _, q := range peaks {
			if p.DistanceSq(q) < minDistSq {
				ok = false
				break
			}
		}
		if ok {
			peaks = append(peaks, p)
		}
	}
	return peaks, nil
}

// isLocalMax reports whether (x, y) is at least as large as all 8 neighbors
// and strictly larger than at least one (flat plateaus keep their first
// scan-order pixel).
func isLocalMax(g *imaging.Grid, x, y int, v float64) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := g.At(x+dx, y+dy)
			if n > v {
				return false
			}
			// Break plateau ties toward the earlier pixel in scan order.
			if n == v && (dy < 0 || (dy == 0 && dx < 0)) {
				return false
			}
		}
	}
	return true
}
