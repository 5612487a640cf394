// Package ellipsoid fits a general ellipsoid to a 3D point cloud by linear
// least squares on the implicit quadric
//
//	Ax² + By² + Cz² + 2Dxy + 2Exz + 2Fyz + 2Gx + 2Hy + 2Iz + J = 0
//
// The quadratic part is normalised to trace −3, which leaves nine unknowns
// solved against x² + y² + z². The centre, principal directions and radii
// follow from the quadric by translation and a symmetric eigendecomposition.
package ellipsoid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"fabrictensor/internal/models"
)

// MinPoints is the number of unknowns of the fit.
const MinPoints = 9

// Ellipsoid is a fitted quadric surface.
type Ellipsoid struct {
	Center r3.Vec

	// Axes holds the unit principal directions as columns, matching Radii.
	Axes *mat.Dense

	// Radii are the semi-axis lengths. A negative radius marks a principal
	// direction along which the quadric is not closed (a hyperboloid).
	Radii [3]float64

	// coeffs are (A, B, C, D, E, F, G, H, I, J) in the input frame.
	coeffs [10]float64
}

// Fit computes the least-squares ellipsoid through points.
func Fit(points []r3.Vec) (Ellipsoid, error) {
	if len(points) == 0 {
		return Ellipsoid{}, fmt.Errorf("ellipsoid fit: empty point cloud: %w", models.ErrInvalidInput)
	}
	if len(points) < MinPoints {
		return Ellipsoid{}, fmt.Errorf("ellipsoid fit: %d points, need at least %d: %w",
			len(points), MinPoints, models.ErrDegenerateFit)
	}

	// Working relative to the centroid keeps the design matrix well scaled.
	// The trace-normalised residuals are translation invariant, so the
	// solution is the same quadric.
	var m r3.Vec
	for _, p := range points {
		if math.IsNaN(p.X+p.Y+p.Z) || math.IsInf(p.X+p.Y+p.Z, 0) {
			return Ellipsoid{}, fmt.Errorf("ellipsoid fit: non-finite point %v: %w", p, models.ErrInvalidInput)
		}
		m = r3.Add(m, p)
	}
	m = r3.Scale(1/float64(len(points)), m)

	n := len(points)
	design := mat.NewDense(n, MinPoints, nil)
	rhs := mat.NewVecDense(n, nil)
	for i, p := range points {
		q := r3.Sub(p, m)
		x, y, z := q.X, q.Y, q.Z
		design.SetRow(i, []float64{
			x*x + y*y - 2*z*z,
			x*x + z*z - 2*y*y,
			2 * x * y,
			2 * x * z,
			2 * y * z,
			2 * x,
			2 * y,
			2 * z,
			1,
		})
		rhs.SetVec(i, x*x+y*y+z*z)
	}

	var u mat.VecDense
	if err := u.SolveVec(design, rhs); err != nil {
		return Ellipsoid{}, fmt.Errorf("ellipsoid fit: least squares: %v: %w", err, models.ErrDegenerateFit)
	}

	local := [10]float64{
		u.AtVec(0) + u.AtVec(1) - 1,
		u.AtVec(0) - 2*u.AtVec(1) - 1,
		u.AtVec(1) - 2*u.AtVec(0) - 1,
		u.AtVec(2), u.AtVec(3), u.AtVec(4),
		u.AtVec(5), u.AtVec(6), u.AtVec(7),
		u.AtVec(8),
	}
	if floats.HasNaN(local[:]) {
		return Ellipsoid{}, fmt.Errorf("ellipsoid fit: NaN coefficients: %w", models.ErrDegenerateFit)
	}

	e, err := fromQuadric(local)
	if err != nil {
		return Ellipsoid{}, err
	}
	e.Center = r3.Add(e.Center, m)
	e.coeffs = translate(local, m)
	return e, nil
}

// fromQuadric extracts centre, axes and radii from quadric coefficients.
func fromQuadric(v [10]float64) (Ellipsoid, error) {
	a3 := mat.NewDense(3, 3, []float64{
		v[0], v[3], v[4],
		v[3], v[1], v[5],
		v[4], v[5], v[2],
	})
	g := mat.NewVecDense(3, []float64{v[6], v[7], v[8]})

	// −A₃ c = g
	var neg mat.Dense
	neg.Scale(-1, a3)
	var c mat.VecDense
	if err := c.SolveVec(&neg, g); err != nil {
		return Ellipsoid{}, fmt.Errorf("ellipsoid fit: centre: %v: %w", err, models.ErrDegenerateFit)
	}

	// Constant term of the quadric translated to the centre
	k := mat.Inner(&c, a3, &c) + 2*mat.Dot(g, &c) + v[9]
	if k == 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return Ellipsoid{}, fmt.Errorf("ellipsoid fit: quadric does not enclose its centre: %w", models.ErrDegenerateFit)
	}

	form := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			form.SetSym(i, j, a3.At(i, j)/-k)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(form, true); !ok {
		return Ellipsoid{}, fmt.Errorf("ellipsoid fit: eigendecomposition failed: %w", models.ErrDegenerateFit)
	}
	values := eig.Values(nil)
	axes := mat.NewDense(3, 3, nil)
	eig.VectorsTo(axes)

	e := Ellipsoid{
		Center: r3.Vec{X: c.AtVec(0), Y: c.AtVec(1), Z: c.AtVec(2)},
		Axes:   axes,
	}
	for i, l := range values {
		if l == 0 {
			return Ellipsoid{}, fmt.Errorf("ellipsoid fit: zero eigenvalue: %w", models.ErrDegenerateFit)
		}
		e.Radii[i] = math.Copysign(1/math.Sqrt(math.Abs(l)), l)
	}

	if !e.finite() {
		return Ellipsoid{}, fmt.Errorf("ellipsoid fit: non-finite result: %w", models.ErrDegenerateFit)
	}
	return e, nil
}

// translate rewrites quadric coefficients given relative to m into the
// frame where m is added back.
func translate(v [10]float64, m r3.Vec) [10]float64 {
	a3 := mat.NewDense(3, 3, []float64{
		v[0], v[3], v[4],
		v[3], v[1], v[5],
		v[4], v[5], v[2],
	})
	mv := mat.NewVecDense(3, []float64{m.X, m.Y, m.Z})
	g := mat.NewVecDense(3, []float64{v[6], v[7], v[8]})

	var am mat.VecDense
	am.MulVec(a3, mv)

	out := v
	out[6] = v[6] - am.AtVec(0)
	out[7] = v[7] - am.AtVec(1)
	out[8] = v[8] - am.AtVec(2)
	out[9] = mat.Dot(mv, &am) - 2*mat.Dot(g, mv) + v[9]
	return out
}

func (e Ellipsoid) finite() bool {
	vals := []float64{e.Center.X, e.Center.Y, e.Center.Z, e.Radii[0], e.Radii[1], e.Radii[2]}
	if e.Axes != nil {
		vals = append(vals, e.Axes.RawMatrix().Data...)
	}
	for _, x := range vals {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Quadric returns the coefficients (A, B, C, D, E, F, G, H, I, J) of the
// fitted surface in the input frame, with A + B + C = −3.
func (e Ellipsoid) Quadric() [10]float64 {
	return e.coeffs
}

// Axis returns the i-th principal direction.
func (e Ellipsoid) Axis(i int) r3.Vec {
	return r3.Vec{X: e.Axes.At(0, i), Y: e.Axes.At(1, i), Z: e.Axes.At(2, i)}
}

// Contains reports whether p lies inside or on the fitted surface.
func (e Ellipsoid) Contains(p r3.Vec) bool {
	q := r3.Sub(p, e.Center)
	sum := 0.0
	for i, r := range e.Radii {
		t := r3.Dot(q, e.Axis(i))
		sum += math.Copysign(t*t/(r*r), r)
	}
	return sum <= 1
}
