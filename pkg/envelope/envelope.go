// Package envelope turns a scalar field into the point cloud of its
// thresholded envelope: the field is normalised to [0, 1], binarised at a
// threshold and an isosurface of the binary mask is extracted at level 0.5.
//
// Volumes are indexed (depth, row, column); the returned vertices are in
// (x, y, z) order, with the conversion done by models.ToXYZ right before
// surface extraction.
package envelope

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"fabrictensor/internal/models"
)

// Method names an isosurface extraction algorithm.
type Method string

const (
	// MarchingCubes returns the vertices of the marching cubes isosurface:
	// one per grid edge crossing the level, linearly interpolated.
	MarchingCubes Method = "marching_cubes"

	// MarchingCubesSearch refines every crossing by bisection on the
	// trilinear interpolation of the mask (github.com/unixpickle/model3d).
	MarchingCubesSearch Method = "marching_cubes_search"
)

// DefaultThreshold is the normalised ACF level used when none is configured.
const DefaultThreshold = 0.5

// ParseMethod validates a method name. The empty string selects MarchingCubes.
func ParseMethod(name string) (Method, error) {
	switch m := Method(name); m {
	case "":
		return MarchingCubes, nil
	case MarchingCubes, MarchingCubesSearch:
		return m, nil
	}
	return "", fmt.Errorf("unknown envelope method %q: %w", name, models.ErrConfiguration)
}

// Normalize rescales v to the [0, 1] range with (x - min) / (max - min).
// A constant field cannot be normalised and yields ErrInvalidInput.
func Normalize(v models.Volume) (models.Volume, error) {
	if err := v.CheckShape(); err != nil {
		return models.Volume{}, fmt.Errorf("normalize: %w", err)
	}
	if floats.HasNaN(v.Data) {
		return models.Volume{}, fmt.Errorf("normalize: NaN in field: %w", models.ErrInvalidInput)
	}

	lo, hi := floats.Min(v.Data), floats.Max(v.Data)
	span := hi - lo
	if span == 0 || math.IsInf(span, 0) {
		return models.Volume{}, fmt.Errorf("normalize: field range [%g, %g] is degenerate: %w", lo, hi, models.ErrInvalidInput)
	}

	out := models.NewVolume(v.Depth, v.Rows, v.Cols)
	for i, x := range v.Data {
		out.Data[i] = (x - lo) / span
	}
	return out, nil
}

// Binarize marks voxels strictly above t.
func Binarize(v models.Volume, t float64) models.Mask {
	m := models.NewMask(v.Depth, v.Rows, v.Cols)
	for i, x := range v.Data {
		m.Data[i] = x > t
	}
	return m
}

// Envelope normalises field, binarises it at t and extracts the isosurface
// vertices with the given method.
func Envelope(field models.Volume, t float64, method Method) ([]r3.Vec, error) {
	if t < 0 || t > 1 || math.IsNaN(t) {
		return nil, fmt.Errorf("threshold %v outside [0, 1]: %w", t, models.ErrConfiguration)
	}
	normalized, err := Normalize(field)
	if err != nil {
		return nil, err
	}
	return Extract(Binarize(normalized, t), method)
}

// Extract returns the isosurface vertices of mask viewed as a density field
// at level 0.5. The vertex order is deterministic. A mask without any
// transition produces an empty cloud.
func Extract(mask models.Mask, method Method) ([]r3.Vec, error) {
	if mask.Depth < 2 || mask.Rows < 2 || mask.Cols < 2 {
		return nil, fmt.Errorf("mask %v too small for surface extraction: %w", mask.Shape(), models.ErrInvalidInput)
	}
	if len(mask.Data) != mask.Depth*mask.Rows*mask.Cols {
		return nil, fmt.Errorf("mask data does not match shape %v: %w", mask.Shape(), models.ErrInvalidInput)
	}

	density := models.NewVolume(mask.Depth, mask.Rows, mask.Cols)
	for i, b := range mask.Data {
		if b {
			density.Data[i] = 1
		}
	}

	switch method {
	case MarchingCubes, "":
		return crossingVertices(density, 0.5), nil
	case MarchingCubesSearch:
		return searchVertices(density, 0.5), nil
	}
	return nil, fmt.Errorf("unknown envelope method %q: %w", method, models.ErrConfiguration)
}
