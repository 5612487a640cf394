package models

import "errors"

// Error kinds shared by every stage of the fabric pipeline. Stages wrap them
// with fmt.Errorf("context: %w", ErrX) and callers match with errors.Is.
var (
	// ErrConfiguration reports an invalid run configuration, e.g. an ROI
	// larger than the grid spacing or an unknown surface extraction method.
	// It is always detected before any sample is processed.
	ErrConfiguration = errors.New("fabric: invalid configuration")

	// ErrInvalidInput reports unusable input data: an empty point cloud, a
	// volume holding NaN or Inf, or a mask whose shape does not match.
	ErrInvalidInput = errors.New("fabric: invalid input")

	// ErrDegenerateFit reports an ellipsoid fit that is singular,
	// ill-conditioned or produced non-finite values.
	ErrDegenerateFit = errors.New("fabric: degenerate ellipsoid fit")
)
