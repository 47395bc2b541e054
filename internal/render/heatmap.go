// Package render produces diagnostic images from analysis results: strain
// component heatmaps, displacement histograms and arrow overlays.
package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"stem-strain/internal/strain"
)

// Component names accepted by SaveHeatmap.
const (
	ComponentExx      = "exx"
	ComponentEyy      = "eyy"
	ComponentExy      = "exy"
	ComponentRotation = "rotation"
)

// SaveHeatmap renders one strain tensor component as a heatmap. Cells
// outside the validity mask are left blank. The output format follows the
// file extension (png, pdf, svg).
func SaveHeatmap(f *strain.Field, component, path string) error {
	comp, err := selectComponent(f, component)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("strain %s", component)
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"

	hm := plotter.NewHeatMap(&maskedGrid{field: f, comp: comp}, palette.Heat(32, 1))
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save heatmap %s: %w", component, err)
	}
	return nil
}

func selectComponent(f *strain.Field, component string) ([][]float64, error) {
	switch component {
	case ComponentExx:
		return f.Exx, nil
	case ComponentEyy:
		return f.Eyy, nil
	case ComponentExy:
		return f.Exy, nil
	case ComponentRotation:
		return f.RotDeg, nil
	default:
		return nil, fmt.Errorf("render: unknown strain component %q", component)
	}
}

// maskedGrid adapts one strain component to plotter.GridXYZ, reporting NaN
// for masked-out cells so the heatmap leaves them blank.
type maskedGrid struct {
	field *strain.Field
	comp  [][]float64
}

func (g *maskedGrid) Dims() (c, r int) { return len(g.field.GridX), len(g.field.GridY) }
func (g *maskedGrid) X(c int) float64  { return g.field.GridX[c] }
func (g *maskedGrid) Y(r int) float64  { return g.field.GridY[r] }

func (g *maskedGrid) Z(c, r int) float64 {
	if !g.field.Mask[r][c] {
		return math.NaN()
	}
	return g.comp[r][c]
}

// SaveMagnitudeHistogram renders the distribution of displacement magnitudes.
func SaveMagnitudeHistogram(dx, dy []float64, bins int, path string) error {
	if len(dx) == 0 || len(dx) != len(dy) {
		return fmt.Errorf("render: %d dx and %d dy values", len(dx), len(dy))
	}
	if bins <= 0 {
		bins = 16
	}

	vals := make(plotter.Values, len(dx))
	for i := range dx {
		vals[i] = math.Hypot(dx[i], dy[i])
	}

	p := plot.New()
	p.Title.Text = "displacement magnitude"
	p.X.Label.Text = "magnitude (px)"
	p.Y.Label.Text = "atoms"

	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return fmt.Errorf("render histogram: %w", err)
	}
	p.Add(h)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram: %w", err)
	}
	return nil
}
