package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"stem-strain/internal/displacement"
	"stem-strain/internal/imaging"
)

var arrowColor = color.RGBA{R: 255, G: 64, B: 32, A: 255}

// SaveOverlay writes the source frame as PNG with displacement vectors drawn
// on top. Arrows start at the ideal site and end at the observed position,
// exaggerated by the given factor so sub-pixel displacements stay visible.
func SaveOverlay(g *imaging.Grid, f *displacement.Field, exaggeration float64, path string) error {
	if exaggeration <= 0 {
		exaggeration = 1
	}

	base := g.ToImage()
	rgba := image.NewRGBA(base.Bounds())
	draw.Draw(rgba, rgba.Bounds(), base, image.Point{}, draw.Src)

	for i := range f.Observed {
		site := f.Base[f.Index[i]]
		tipX := site.X + f.DX[i]*exaggeration
		tipY := site.Y + f.DY[i]*exaggeration
		drawLine(rgba, site.X, site.Y, tipX, tipY, arrowColor)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save overlay: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, rgba); err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}
	return nil
}

// drawLine rasterizes a line segment with simple uniform stepping.
func drawLine(img *image.RGBA, x0, y0, x1, y1 float64, c color.RGBA) {
	steps := int(math.Ceil(math.Hypot(x1-x0, y1-y0))) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := int(math.Round(x0 + t*(x1-x0)))
		y := int(math.Round(y0 + t*(y1-y0)))
		if image.Pt(x, y).In(img.Bounds()) {
			img.SetRGBA(x, y, c)
		}
	}
}
