package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"stem-strain/internal/profile"
)

// SaveLineProfile renders a sampled line profile as value versus distance
// from the line start. scale is the physical length of one pixel; pass 0 to
// keep the distance axis in pixels.
func SaveLineProfile(line *profile.Line, valueLabel string, scale float64, path string) error {
	xys := make(plotter.XYs, len(line.Distances))
	for i := range line.Distances {
		d := line.Distances[i]
		if scale > 0 {
			d *= scale
		}
		xys[i].X = d
		xys[i].Y = line.Values[i]
	}

	p := plot.New()
	p.Title.Text = "line profile"
	if scale > 0 {
		p.X.Label.Text = "distance (physical)"
	} else {
		p.X.Label.Text = "distance (px)"
	}
	p.Y.Label.Text = valueLabel
	p.Add(plotter.NewGrid())

	l, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("render profile: %w", err)
	}
	p.Add(l)

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
