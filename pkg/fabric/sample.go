// Package fabric turns a fitted ellipsoid into a fabric tensor, its six
// independent components and the degree of anisotropy (DA).
//
// A sample is either fully populated or fully NaN. Radii that cannot come
// from the analysed region (larger than half the zoomed ROI, where the
// envelope has leaked into the background) or that are below one voxel are
// rejected as a whole.
package fabric

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinRadius is the smallest accepted radius, in voxels.
const MinRadius = 1.0

// Bounds holds the outlier limits applied to fitted radii.
type Bounds struct {
	// Max is the largest accepted radius, ROI size × zoom factor / 2.
	Max float64
}

// BoundsFor returns the limits for an ROI of edge roiSize analysed with the
// given zoom factor. A disabled zoom counts as factor 1.
func BoundsFor(roiSize int, zoomFactor float64) Bounds {
	return Bounds{Max: float64(roiSize) * zoomFactor / 2}
}

// Accepts reports whether a radius magnitude lies inside the limits.
func (b Bounds) Accepts(r float64) bool {
	return r >= MinRadius && r <= b.Max
}

// Sample is the fabric measurement at one location.
type Sample struct {
	// Axes holds the principal directions as columns, in (x, y, z).
	Axes [3][3]float64

	// Radii are the absolute ellipsoid radii matching the Axes columns.
	Radii [3]float64

	// Eigenvalues are 1 / Radii².
	Eigenvalues [3]float64

	// Components are the tensor entries XX, YY, ZZ, XY, YZ, XZ.
	Components [6]float64

	// DA is max(Radii) / min(Radii).
	DA float64
}

// NaNSample returns a sample with every field set to NaN.
func NaNSample() Sample {
	nan := math.NaN()
	var s Sample
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s.Axes[i][j] = nan
		}
		s.Radii[i] = nan
		s.Eigenvalues[i] = nan
	}
	for i := range s.Components {
		s.Components[i] = nan
	}
	s.DA = nan
	return s
}

// Rejected reports whether the sample was voided.
func (s Sample) Rejected() bool {
	return math.IsNaN(s.DA)
}

// Direction returns the i-th principal direction.
func (s Sample) Direction(i int) r3.Vec {
	return r3.Vec{X: s.Axes[0][i], Y: s.Axes[1][i], Z: s.Axes[2][i]}
}

// Tensor rebuilds the fabric tensor from the stored components.
func (s Sample) Tensor() Tensor {
	return TensorFromComponents(s.Components)
}

// Assemble builds a sample from fitted principal directions (columns of
// axes) and signed radii. Any radius magnitude outside b, or any non-finite
// input, voids the whole sample.
func Assemble(axes mat.Matrix, radii [3]float64, b Bounds) Sample {
	if r, c := axes.Dims(); r != 3 || c != 3 {
		return NaNSample()
	}

	var s Sample
	for i, r := range radii {
		r = math.Abs(r)
		if math.IsNaN(r) || !b.Accepts(r) {
			return NaNSample()
		}
		s.Radii[i] = r
		s.Eigenvalues[i] = 1 / (r * r)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			x := axes.At(i, j)
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return NaNSample()
			}
			s.Axes[i][j] = x
		}
	}

	t := NewTensor(axes, s.Eigenvalues)
	s.Components = t.Components()

	lo, hi := s.Radii[0], s.Radii[0]
	for _, r := range s.Radii[1:] {
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}
	s.DA = hi / lo
	return s
}
