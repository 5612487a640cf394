package phantom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// TestEllipsoidVolume compares the voxel count against 4/3·π·abc
func TestEllipsoidVolume(t *testing.T) {
	v := Ellipsoid([3]int{40, 40, 60}, r3.Vec{X: 30, Y: 20, Z: 20}, [3]float64{18, 9, 7}, Identity)

	count := 0
	for _, x := range v.Data {
		if x == 1 {
			count++
		}
	}
	want := 4.0 / 3.0 * math.Pi * 18 * 9 * 7
	if math.Abs(float64(count)-want) > 0.03*want {
		t.Errorf("Expected about %.0f voxels, got %d", want, count)
	}
}

// TestEllipsoidAxisOrder checks that the x radius runs along columns
func TestEllipsoidAxisOrder(t *testing.T) {
	v := Ellipsoid([3]int{30, 30, 30}, r3.Vec{X: 15, Y: 15, Z: 15}, [3]float64{12, 3, 3}, Identity)

	if v.At(15, 15, 26) != 1 {
		t.Error("Expected voxel 11 columns from the centre to be inside")
	}
	if v.At(26, 15, 15) != 0 || v.At(15, 26, 15) != 0 {
		t.Error("Expected voxels 11 rows or slices from the centre to be outside")
	}
}

// TestRotation checks that a quarter turn about z maps x onto y
func TestRotation(t *testing.T) {
	q := Rotation(r3.Vec{Z: 1}, math.Pi/2)
	got := Rotate(q, r3.Vec{X: 1})
	if r3.Norm(r3.Sub(got, r3.Vec{Y: 1})) > 1e-12 {
		t.Errorf("Expected (0, 1, 0), got %v", got)
	}

	s := Shape{Center: r3.Vec{}, Radii: [3]float64{10, 2, 2}, Rotation: q}
	if !s.Contains(r3.Vec{Y: 9}) || s.Contains(r3.Vec{X: 9}) {
		t.Error("Rotated shape should extend along y, not x")
	}

	// Zero rotation means identity
	s.Rotation = quat.Number{}
	if !s.Contains(r3.Vec{X: 9}) {
		t.Error("Zero quaternion should act as identity")
	}
}

// TestLattice checks one ellipsoid per cell
func TestLattice(t *testing.T) {
	v := Lattice([3]int{16, 16, 32}, 8, [3]float64{3, 2, 2}, Identity)
	for _, center := range [][3]int{{4, 4, 4}, {4, 4, 12}, {12, 12, 28}} {
		if v.At(center[0], center[1], center[2]) != 1 {
			t.Errorf("Expected cell centre %v to be inside", center)
		}
	}
	if v.At(0, 0, 0) != 0 || v.At(8, 8, 8) != 0 {
		t.Error("Expected cell corners to be outside")
	}
}
