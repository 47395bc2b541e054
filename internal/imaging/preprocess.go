package imaging

import (
	"fmt"
)

// PreprocessOptions configures frame preprocessing. Zero values disable the
// corresponding step.
type PreprocessOptions struct {
	GaussianSigma   float64 // smoothing sigma in pixels
	BackgroundSigma float64 // background-removal blur sigma in pixels
	ROI             *ROI    // optional crop applied before filtering
}

// ROI is a crop region in pixel coordinates, half-open on the high edges.
type ROI struct {
	X0, Y0, X1, Y1 int
}

// DefaultPreprocessOptions returns the preprocessing used for typical HAADF
// frames: light smoothing, no background removal, full frame.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{GaussianSigma: 1.0}
}

// Preprocess applies ROI crop, background removal, and smoothing in that
// order, then normalizes to [0, 1]. The input grid is never modified.
func Preprocess(g *Grid, opts PreprocessOptions) (*Grid, error) {
	out := g
	if opts.ROI != nil {
		cropped, err := g.Crop(opts.ROI.X0, opts.ROI.Y0, opts.ROI.X1, opts.ROI.Y1)
		if err != nil {
			return nil, fmt.Errorf("preprocess: %w", err)
		}
		out = cropped
	}
	if opts.BackgroundSigma > 0 {
		out = RemoveBackground(out, opts.BackgroundSigma)
	}
	if opts.GaussianSigma > 0 {
		out = Smooth(out, opts.GaussianSigma)
	}
	return out.Normalize(), nil
}
