package models

import (
	"fmt"
	"math"
)

// Volume represents a dense 3D scalar image.
//
// Data is stored as a flat array in row-major order with axis order
// (depth, row, column): the column index varies fastest. Depth, Rows and
// Cols are the extents along those axes in voxels.
type Volume struct {
	// Data holds Depth*Rows*Cols voxel values
	Data []float64

	// Depth is the number of slices (slowest axis, maps to z)
	Depth int

	// Rows is the number of rows per slice (maps to y)
	Rows int

	// Cols is the number of columns per row (fastest axis, maps to x)
	Cols int
}

// NewVolume allocates a zero-filled volume with the given extents.
func NewVolume(depth, rows, cols int) Volume {
	if depth < 0 || rows < 0 || cols < 0 {
		depth, rows, cols = 0, 0, 0
	}
	return Volume{
		Data:  make([]float64, depth*rows*cols),
		Depth: depth,
		Rows:  rows,
		Cols:  cols,
	}
}

// Shape returns the extents in (depth, row, column) order.
func (v Volume) Shape() [3]int {
	return [3]int{v.Depth, v.Rows, v.Cols}
}

// Len returns the number of voxels.
func (v Volume) Len() int {
	return v.Depth * v.Rows * v.Cols
}

// Index converts a (depth, row, column) position to a flat offset into Data.
func (v Volume) Index(d, r, c int) int {
	return (d*v.Rows+r)*v.Cols + c
}

// At returns the voxel value at (d, r, c).
func (v Volume) At(d, r, c int) float64 {
	return v.Data[v.Index(d, r, c)]
}

// Set stores a voxel value at (d, r, c).
func (v Volume) Set(d, r, c int, value float64) {
	v.Data[v.Index(d, r, c)] = value
}

// Clone returns a deep copy of the volume.
func (v Volume) Clone() Volume {
	data := make([]float64, len(v.Data))
	copy(data, v.Data)
	return Volume{Data: data, Depth: v.Depth, Rows: v.Rows, Cols: v.Cols}
}

// CheckShape reports whether the extents are positive and agree with the
// length of Data.
func (v Volume) CheckShape() error {
	if v.Depth <= 0 || v.Rows <= 0 || v.Cols <= 0 {
		return fmt.Errorf("volume shape %v must be positive: %w", v.Shape(), ErrInvalidInput)
	}
	if len(v.Data) != v.Len() {
		return fmt.Errorf("volume shape %v needs %d voxels, got %d: %w",
			v.Shape(), v.Len(), len(v.Data), ErrInvalidInput)
	}
	return nil
}

// Validate checks the shape and rejects volumes holding NaN or Inf values.
func (v Volume) Validate() error {
	if err := v.CheckShape(); err != nil {
		return err
	}
	for i, x := range v.Data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			d, r, c := v.Position(i)
			return fmt.Errorf("non-finite voxel %v at (%d, %d, %d): %w", x, d, r, c, ErrInvalidInput)
		}
	}
	return nil
}

// Position converts a flat offset back to (depth, row, column).
func (v Volume) Position(i int) (d, r, c int) {
	c = i % v.Cols
	r = (i / v.Cols) % v.Rows
	d = i / (v.Cols * v.Rows)
	return d, r, c
}

// Crop copies the voxels inside roi into a new volume. The ROI must lie
// within the volume; use ROI.Clamp first for arbitrary boxes.
func (v Volume) Crop(roi ROI) (Volume, error) {
	if !roi.Within(v.Shape()) {
		return Volume{}, fmt.Errorf("roi %v outside volume %v: %w", roi, v.Shape(), ErrInvalidInput)
	}
	size := roi.Size()
	if size[0] == 0 || size[1] == 0 || size[2] == 0 {
		return Volume{}, fmt.Errorf("roi %v is empty: %w", roi, ErrInvalidInput)
	}

	out := NewVolume(size[0], size[1], size[2])
	for d := 0; d < size[0]; d++ {
		for r := 0; r < size[1]; r++ {
			src := v.Index(roi.Start[0]+d, roi.Start[1]+r, roi.Start[2])
			dst := out.Index(d, r, 0)
			copy(out.Data[dst:dst+size[2]], v.Data[src:src+size[2]])
		}
	}
	return out, nil
}

// Center returns the index of the center voxel, dim/2 along each axis.
func (v Volume) Center() [3]int {
	return [3]int{v.Depth / 2, v.Rows / 2, v.Cols / 2}
}
