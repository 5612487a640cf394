package models

import "fmt"

// Mask is a dense boolean volume sharing the (depth, row, column) layout
// of Volume.
type Mask struct {
	Data  []bool
	Depth int
	Rows  int
	Cols  int
}

// NewMask allocates an all-false mask.
func NewMask(depth, rows, cols int) Mask {
	return Mask{
		Data:  make([]bool, depth*rows*cols),
		Depth: depth,
		Rows:  rows,
		Cols:  cols,
	}
}

// Shape returns the extents in (depth, row, column) order.
func (m Mask) Shape() [3]int {
	return [3]int{m.Depth, m.Rows, m.Cols}
}

// Index converts a (depth, row, column) position to a flat offset.
func (m Mask) Index(d, r, c int) int {
	return (d*m.Rows+r)*m.Cols + c
}

// At reports the mask value at (d, r, c).
func (m Mask) At(d, r, c int) bool {
	return m.Data[m.Index(d, r, c)]
}

// Set stores a mask value at (d, r, c).
func (m Mask) Set(d, r, c int, value bool) {
	m.Data[m.Index(d, r, c)] = value
}

// Count returns the number of true voxels.
func (m Mask) Count() int {
	n := 0
	for _, b := range m.Data {
		if b {
			n++
		}
	}
	return n
}

// Matches checks that the mask can gate the given volume.
func (m Mask) Matches(v Volume) error {
	if m.Shape() != v.Shape() || len(m.Data) != v.Len() {
		return fmt.Errorf("mask shape %v does not match volume %v: %w", m.Shape(), v.Shape(), ErrInvalidInput)
	}
	return nil
}
