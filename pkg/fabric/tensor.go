package fabric

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// Tensor is a symmetric 3×3 fabric tensor in (x, y, z).
type Tensor struct {
	m *mat.SymDense
}

// NewTensor returns V · diag(eigenvalues) · Vᵗ, where the columns of V are
// the principal directions.
func NewTensor(v mat.Matrix, eigenvalues [3]float64) Tensor {
	d := mat.NewDiagDense(3, eigenvalues[:])

	var vd, full mat.Dense
	vd.Mul(v, d)
	full.Mul(&vd, v.T())

	// Average the off-diagonal pairs so the result is exactly symmetric
	m := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			m.SetSym(i, j, (full.At(i, j)+full.At(j, i))/2)
		}
	}
	return Tensor{m: m}
}

// TensorFromComponents rebuilds a tensor from XX, YY, ZZ, XY, YZ, XZ.
func TensorFromComponents(c [6]float64) Tensor {
	return Tensor{m: mat.NewSymDense(3, []float64{
		c[0], c[3], c[5],
		c[3], c[1], c[4],
		c[5], c[4], c[2],
	})}
}

// At returns the (i, j) entry.
func (t Tensor) At(i, j int) float64 {
	return t.m.At(i, j)
}

// Matrix returns the underlying symmetric matrix.
func (t Tensor) Matrix() *mat.SymDense {
	return t.m
}

// Components returns XX, YY, ZZ, XY, YZ, XZ, i.e. the entries at (0,0),
// (1,1), (2,2), (0,1), (1,2) and (0,2).
func (t Tensor) Components() [6]float64 {
	return [6]float64{
		t.m.At(0, 0), t.m.At(1, 1), t.m.At(2, 2),
		t.m.At(0, 1), t.m.At(1, 2), t.m.At(0, 2),
	}
}

var errNotPositive = errors.New("fabric: tensor is not positive definite")

// Principal decomposes the tensor by SVD. It returns the radii 1/√s for the
// singular values s, largest eigenvalue (shortest radius) first, and the
// rotation whose rows are the corresponding directions.
func (t Tensor) Principal() (radii [3]float64, rotation *mat.Dense, err error) {
	var svd mat.SVD
	if ok := svd.Factorize(t.m, mat.SVDFull); !ok {
		return radii, nil, errors.New("fabric: tensor SVD failed")
	}
	s := svd.Values(nil)
	for i, x := range s {
		if x <= 0 {
			return radii, nil, errNotPositive
		}
		radii[i] = 1 / math.Sqrt(x)
	}

	var v mat.Dense
	svd.VTo(&v)
	rotation = mat.NewDense(3, 3, nil)
	rotation.CloneFrom(v.T())
	return radii, rotation, nil
}

// Euler holds rotation angles in degrees such that R = Rz(Yaw)·Ry(Pitch)·Rx(Roll).
type Euler struct {
	Roll, Pitch, Yaw float64
}

// EulerAngles decomposes a rotation matrix. At Pitch = ±90° the
// decomposition is singular and Roll and Yaw are NaN.
func EulerAngles(r mat.Matrix) Euler {
	pitch := -math.Asin(r.At(2, 0))
	c := math.Cos(pitch)
	roll := math.Atan2(r.At(2, 1)/c, r.At(2, 2)/c)
	yaw := math.Atan2(r.At(1, 0)/c, r.At(0, 0)/c)

	deg := 180 / math.Pi
	return Euler{Roll: roll * deg, Pitch: pitch * deg, Yaw: yaw * deg}
}

// Matrix returns the rotation Rz(Yaw)·Ry(Pitch)·Rx(Roll).
func (e Euler) Matrix() *mat.Dense {
	rad := math.Pi / 180
	sx, cx := math.Sincos(e.Roll * rad)
	sy, cy := math.Sincos(e.Pitch * rad)
	sz, cz := math.Sincos(e.Yaw * rad)
	return mat.NewDense(3, 3, []float64{
		cz * cy, cz*sy*sx - sz*cx, cz*sy*cx + sz*sx,
		sz * cy, sz*sy*sx + cz*cx, sz*sy*cx - cz*sx,
		-sy, cy * sx, cy * cx,
	})
}

// Orientation returns the unit quaternion rotating the x, y and z axes onto
// the principal directions of the sample. The third direction is flipped if
// needed to make the frame right-handed. A rejected sample yields a NaN
// quaternion.
func (s Sample) Orientation() quat.Number {
	if s.Rejected() {
		nan := math.NaN()
		return quat.Number{Real: nan, Imag: nan, Jmag: nan, Kmag: nan}
	}

	r := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.Set(i, j, s.Axes[i][j])
		}
	}
	if mat.Det(r) < 0 {
		for i := 0; i < 3; i++ {
			r.Set(i, 2, -r.At(i, 2))
		}
	}
	return matrixToQuat(r)
}

// matrixToQuat converts a proper rotation matrix to a unit quaternion,
// branching on the largest diagonal term for stability.
func matrixToQuat(r mat.Matrix) quat.Number {
	m00, m11, m22 := r.At(0, 0), r.At(1, 1), r.At(2, 2)
	var q quat.Number
	switch tr := m00 + m11 + m22; {
	case tr > 0:
		s := 2 * math.Sqrt(tr+1)
		q = quat.Number{
			Real: s / 4,
			Imag: (r.At(2, 1) - r.At(1, 2)) / s,
			Jmag: (r.At(0, 2) - r.At(2, 0)) / s,
			Kmag: (r.At(1, 0) - r.At(0, 1)) / s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{
			Real: (r.At(2, 1) - r.At(1, 2)) / s,
			Imag: s / 4,
			Jmag: (r.At(0, 1) + r.At(1, 0)) / s,
			Kmag: (r.At(0, 2) + r.At(2, 0)) / s,
		}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{
			Real: (r.At(0, 2) - r.At(2, 0)) / s,
			Imag: (r.At(0, 1) + r.At(1, 0)) / s,
			Jmag: s / 4,
			Kmag: (r.At(1, 2) + r.At(2, 1)) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{
			Real: (r.At(1, 0) - r.At(0, 1)) / s,
			Imag: (r.At(0, 2) + r.At(2, 0)) / s,
			Jmag: (r.At(1, 2) + r.At(2, 1)) / s,
			Kmag: s / 4,
		}
	}
	return quat.Scale(1/quat.Abs(q), q)
}
