package models

import "gonum.org/v1/gonum/spatial/r3"

// Volumes are indexed (depth, row, column) while point clouds, ellipsoids and
// tensors live in (x, y, z). The two functions below are the only place the
// permutation happens: x is the column, y the row and z the depth.

// ToXYZ converts a (depth, row, column) position into an (x, y, z) vector.
func ToXYZ(d, r, c float64) r3.Vec {
	return r3.Vec{X: c, Y: r, Z: d}
}

// FromXYZ converts an (x, y, z) vector into a (depth, row, column) position.
func FromXYZ(p r3.Vec) [3]float64 {
	return [3]float64{p.Z, p.Y, p.X}
}
