package strain

import (
	"math"
	"sort"
	"sync"

	"github.com/fogleman/delaunay"

	"stem-strain/internal/monitoring"
	"stem-strain/internal/spatial"
	"stem-strain/pkg/geometry"
)

// interpolate resamples scattered per-atom values onto the regular grid given
// by the gx/gy axis coordinates. Values inside the Delaunay triangulation of
// the points are filled by barycentric linear interpolation; cells outside
// the triangulated support fall back to the nearest sample so the grid is
// fully populated.
func interpolate(points geometry.PointSet, values []float64, gx, gy []float64) [][]float64 {
	grid := make([][]float64, len(gy))
	for j := range grid {
		grid[j] = make([]float64, len(gx))
		for i := range grid[j] {
			grid[j][i] = math.NaN()
		}
	}

	tri, err := triangulate(points)
	if err != nil {
		monitoring.Logf("strain: triangulation failed (%v), using nearest-sample fill only", err)
	} else {
		fillLinear(grid, tri, points, values, gx, gy)
	}
	fillNearest(grid, points, values, gx, gy)
	return grid
}

func triangulate(points geometry.PointSet) (*delaunay.Triangulation, error) {
	dp := make([]delaunay.Point, len(points))
	for i, p := range points {
		dp[i] = delaunay.Point{X: p.X, Y: p.Y}
	}
	return delaunay.Triangulate(dp)
}

// fillLinear rasterizes every triangle of the triangulation over the grid
// cells inside its bounding box, writing barycentric-weighted values.
func fillLinear(grid [][]float64, tri *delaunay.Triangulation, points geometry.PointSet, values []float64, gx, gy []float64) {
	const eps = 1e-12

	for t := 0; t < len(tri.Triangles); t += 3 {
		ia, ib, ic := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
		a, b, c := points[ia], points[ib], points[ic]

		den := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
		if den == 0 {
			continue
		}

		minX := math.Min(a.X, math.Min(b.X, c.X))
		maxX := math.Max(a.X, math.Max(b.X, c.X))
		minY := math.Min(a.Y, math.Min(b.Y, c.Y))
		maxY := math.Max(a.Y, math.Max(b.Y, c.Y))

		i0, i1 := axisRange(gx, minX, maxX)
		j0, j1 := axisRange(gy, minY, maxY)

		for j := j0; j <= j1; j++ {
			for i := i0; i <= i1; i++ {
				px, py := gx[i], gy[j]
				l1 := ((b.Y-c.Y)*(px-c.X) + (c.X-b.X)*(py-c.Y)) / den
				l2 := ((c.Y-a.Y)*(px-c.X) + (a.X-c.X)*(py-c.Y)) / den
				l3 := 1 - l1 - l2
				if l1 < -eps || l2 < -eps || l3 < -eps {
					continue
				}
				grid[j][i] = l1*values[ia] + l2*values[ib] + l3*values[ic]
			}
		}
	}
}

// axisRange returns the inclusive index range of a sorted uniform axis that
// falls inside [lo, hi], clamped to the axis.
func axisRange(axis []float64, lo, hi float64) (int, int) {
	i0 := sort.SearchFloat64s(axis, lo)
	i1 := sort.SearchFloat64s(axis, hi)
	if i1 >= len(axis) || axis[i1] > hi {
		i1--
	}
	if i1 >= len(axis) {
		i1 = len(axis) - 1
	}
	if i0 > i1 {
		return 0, -1
	}
	return i0, i1
}

// fillNearest replaces remaining NaN cells with the value of the nearest
// scattered sample. Rows are independent, so they are filled in parallel.
func fillNearest(grid [][]float64, points geometry.PointSet, values []float64, gx, gy []float64) {
	ix := spatial.NewIndex(points)

	var wg sync.WaitGroup
	for j := range grid {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			for i := range grid[j] {
				if !math.IsNaN(grid[j][i]) {
					continue
				}
				nearest, _ := ix.Nearest(geometry.NewPoint2D(gx[i], gy[j]))
				grid[j][i] = values[nearest]
			}
		}(j)
	}
	wg.Wait()
}
