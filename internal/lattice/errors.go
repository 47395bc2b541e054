package lattice

import "errors"

// Sentinel errors for the lattice-construction stages. Estimation and
// zone-axis failures are fatal to the current run; refinement failures are
// recovered by falling back to a simpler strategy.
var (
	// ErrEstimationFailed means no usable FFT peaks survived filtering and
	// the caller must supply an explicit separation.
	ErrEstimationFailed = errors.New("lattice: separation estimation failed, no FFT peaks found")

	// ErrInsufficientZoneAxes means fewer than two lattice translation
	// directions were detected, usually from bad peak-finding parameters.
	ErrInsufficientZoneAxes = errors.New("lattice: fewer than 2 zone axes detected")

	// ErrRefinementFailed marks a numerically-failed position refinement
	// (non-convergence or a fit escaping its window). The refinement chain
	// recovers from it; it only surfaces if every strategy fails.
	ErrRefinementFailed = errors.New("lattice: position refinement failed to converge")
)
