// Package phantom renders synthetic volumes with known fabric, used to
// validate the pipeline end to end and by the command line tool.
package phantom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"fabrictensor/internal/models"
)

// Identity is the rotation that leaves the axes unchanged.
var Identity = quat.Number{Real: 1}

// Shape is a solid ellipsoid in (x, y, z) voxel coordinates.
type Shape struct {
	Center r3.Vec

	// Radii are the semi-axes along the rotated x, y and z axes.
	Radii [3]float64

	// Rotation is a unit quaternion. The zero value is treated as Identity.
	Rotation quat.Number
}

// Rotation returns the unit quaternion for a turn of angle radians about axis.
func Rotation(axis r3.Vec, angle float64) quat.Number {
	a := r3.Unit(axis)
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Imag: s * a.X, Jmag: s * a.Y, Kmag: s * a.Z}
}

// Rotate applies the rotation q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vec{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// Contains reports whether the (x, y, z) point p lies inside the shape.
func (s Shape) Contains(p r3.Vec) bool {
	q := s.Rotation
	if q == (quat.Number{}) {
		q = Identity
	}
	local := Rotate(quat.Conj(q), r3.Sub(p, s.Center))
	u, v, w := local.X/s.Radii[0], local.Y/s.Radii[1], local.Z/s.Radii[2]
	return u*u+v*v+w*w <= 1
}

// Render returns a (depth, rows, cols) volume with value 1 inside any of the
// shapes and 0 elsewhere.
func Render(shape [3]int, shapes ...Shape) models.Volume {
	v := models.NewVolume(shape[0], shape[1], shape[2])
	for d := 0; d < v.Depth; d++ {
		for r := 0; r < v.Rows; r++ {
			for c := 0; c < v.Cols; c++ {
				p := models.ToXYZ(float64(d), float64(r), float64(c))
				for _, s := range shapes {
					if s.Contains(p) {
						v.Set(d, r, c, 1)
						break
					}
				}
			}
		}
	}
	return v
}

// Ellipsoid renders a single solid ellipsoid.
func Ellipsoid(shape [3]int, center r3.Vec, radii [3]float64, rotation quat.Number) models.Volume {
	return Render(shape, Shape{Center: center, Radii: radii, Rotation: rotation})
}

// Lattice tiles the volume with copies of one ellipsoid, one per cell of
// edge spacing, centred in each cell.
func Lattice(shape [3]int, spacing int, radii [3]float64, rotation quat.Number) models.Volume {
	var shapes []Shape
	for z := spacing / 2; z < shape[0]; z += spacing {
		for y := spacing / 2; y < shape[1]; y += spacing {
			for x := spacing / 2; x < shape[2]; x += spacing {
				shapes = append(shapes, Shape{
					Center:   r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)},
					Radii:    radii,
					Rotation: rotation,
				})
			}
		}
	}
	return Render(shape, shapes...)
}
