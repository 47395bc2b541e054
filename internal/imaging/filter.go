package imaging

import (
	"image"

	"gocv.io/x/gocv"
)

// Smooth returns a gaussian-smoothed copy of the grid. The kernel size is
// derived from sigma by OpenCV.
func Smooth(g *Grid, sigma float64) *Grid {
	if sigma <= 0 {
		return g.Clone()
	}
	src := matFromGrid(g)
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.GaussianBlur(src, &dst, image.Point{}, sigma, sigma, gocv.BorderDefault)

	return gridFromMat(dst)
}

// RemoveBackground subtracts a heavily-blurred copy of the grid from itself
// and re-anchors the minimum at zero. Sigma should be large relative to the
// lattice period so atomic columns survive the subtraction.
func RemoveBackground(g *Grid, sigma float64) *Grid {
	blurred := Smooth(g, sigma)
	out := NewGrid(g.Width, g.Height)
	for i := range g.Data {
		out.Data[i] = g.Data[i] - blurred.Data[i]
	}
	min, _ := out.MinMax()
	for i := range out.Data {
		out.Data[i] -= min
	}
	return out
}

// matFromGrid copies a grid into a CV64F Mat. Callers own the returned Mat.
func matFromGrid(g *Grid) gocv.Mat {
	mat := gocv.NewMatWithSize(g.Height, g.Width, gocv.MatTypeCV64F)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			mat.SetDoubleAt(y, x, g.At(x, y))
		}
	}
	return mat
}

// gridFromMat copies a CV64F Mat back into a grid.
func gridFromMat(mat gocv.Mat) *Grid {
	g := NewGrid(mat.Cols(), mat.Rows())
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			g.Set(x, y, mat.GetDoubleAt(y, x))
		}
	}
	return g
}
