// Package sampling applies the fabric pipeline across a volume: once over
// the whole volume, at an arbitrary set of points, or on a regular grid.
//
// Every sample runs the same chain: autocorrelation of the ROI, optional
// zoom of the ACF centre, envelope extraction, ellipsoid fit and tensor
// assembly. Samples are independent and are processed by a fixed pool of
// workers, each writing only its own result slot.
package sampling

import (
	"fmt"
	"math"
	"runtime"

	"fabrictensor/internal/models"
	"fabrictensor/pkg/envelope"
	"fabrictensor/pkg/zoom"
)

// ProgressCallback is a function that reports progress during a batch.
// Calls are serialised, so it does not need to be safe for concurrent use.
type ProgressCallback func(completed, total int, message string)

// ZoomParams controls the ACF centre zoom.
type ZoomParams struct {
	Enabled bool

	// Size is the edge of the cropped ACF cube; zero means half the
	// smallest ACF dimension.
	Size int

	// Factor is the upsampling factor; zero means zoom.DefaultFactor.
	Factor float64
}

// EffectiveFactor is the scale between ROI voxels and envelope voxels. A
// disabled zoom has factor 1.
func (z ZoomParams) EffectiveFactor() float64 {
	if !z.Enabled {
		return 1
	}
	return z.options().EffectiveFactor()
}

func (z ZoomParams) options() zoom.Options {
	return zoom.Options{Size: z.Size, Factor: z.Factor}
}

// Params holds the configuration shared by all sampling strategies.
type Params struct {
	// Threshold is the normalised ACF level of the envelope, in [0, 1].
	Threshold float64

	// ROISize is the edge of the cubic region analysed around each centre,
	// in voxels. It also sets the outlier bound on the fitted radii.
	ROISize int

	// ROISpacing is the grid step used by GridScan.
	ROISpacing int

	Zoom ZoomParams

	Method envelope.Method

	// Workers is the number of concurrent samples; zero means one per CPU.
	Workers int

	// AbortOnFitFailure makes the first failing sample abort the batch.
	// By default failures are recorded in the Result and the sample is
	// NaN-filled.
	AbortOnFitFailure bool

	// Mask optionally restricts GridScan to ROIs lying fully inside it.
	Mask *models.Mask

	Progress ProgressCallback
}

// DefaultParams returns parameters with the documented defaults. ROISize and
// ROISpacing have no sensible default and must be set for PointSet and
// GridScan.
func DefaultParams() Params {
	return Params{
		Threshold: envelope.DefaultThreshold,
		Zoom: ZoomParams{
			Enabled: false,
			Factor:  zoom.DefaultFactor,
		},
		Method:  envelope.MarchingCubes,
		Workers: runtime.NumCPU(),
	}
}

// Validate checks the settings shared by every strategy.
func (p Params) Validate() error {
	if math.IsNaN(p.Threshold) || p.Threshold < 0 || p.Threshold > 1 {
		return fmt.Errorf("threshold %v outside [0, 1]: %w", p.Threshold, models.ErrConfiguration)
	}
	if _, err := envelope.ParseMethod(string(p.Method)); err != nil {
		return err
	}
	if p.ROISize < 0 {
		return fmt.Errorf("ROI size %d must not be negative: %w", p.ROISize, models.ErrConfiguration)
	}
	if p.ROISpacing < 0 {
		return fmt.Errorf("ROI spacing %d must not be negative: %w", p.ROISpacing, models.ErrConfiguration)
	}
	if p.Workers < 0 {
		return fmt.Errorf("worker count %d must not be negative: %w", p.Workers, models.ErrConfiguration)
	}
	if p.Zoom.Enabled {
		if p.Zoom.Size < 0 {
			return fmt.Errorf("zoom size %d must not be negative: %w", p.Zoom.Size, models.ErrConfiguration)
		}
		if f := p.Zoom.EffectiveFactor(); f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("zoom factor %v must be positive: %w", p.Zoom.Factor, models.ErrConfiguration)
		}
	}
	return nil
}

func (p Params) workers() int {
	if p.Workers <= 0 {
		return runtime.NumCPU()
	}
	return p.Workers
}

func (p Params) requireROI() error {
	if p.ROISize <= 0 {
		return fmt.Errorf("ROI size must be positive, got %d: %w", p.ROISize, models.ErrConfiguration)
	}
	return nil
}
