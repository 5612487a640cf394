package zoom

import "math"

// Quadratic B-spline interpolation along one dimension.
//
// Samples are first converted into B-spline coefficients with a recursive
// causal/anti-causal filter (pole √8 − 3) under mirror-symmetric boundary
// conditions. The continuous signal is then evaluated with the quadratic
// B-spline kernel, which has support on the three nearest coefficients.

var splinePole = math.Sqrt(8) - 3

// prefilterTolerance bounds the truncation error of the causal initialisation
const prefilterTolerance = 1e-12

// prefilter converts samples into quadratic B-spline coefficients in place.
func prefilter(c []float64) {
	n := len(c)
	if n < 2 {
		return
	}

	z := splinePole
	gain := (1 - z) * (1 - 1/z)
	for i := range c {
		c[i] *= gain
	}

	c[0] = initialCausal(c, z)
	for i := 1; i < n; i++ {
		c[i] += z * c[i-1]
	}

	c[n-1] = (z / (z*z - 1)) * (z*c[n-2] + c[n-1])
	for i := n - 2; i >= 0; i-- {
		c[i] = z * (c[i+1] - c[i])
	}
}

// initialCausal computes the first causal coefficient for a mirror-extended
// signal.
func initialCausal(c []float64, z float64) float64 {
	n := len(c)
	horizon := int(math.Ceil(math.Log(prefilterTolerance) / math.Log(math.Abs(z))))

	if horizon < n {
		zn := z
		sum := c[0]
		for k := 1; k < horizon; k++ {
			sum += zn * c[k]
			zn *= z
		}
		return sum
	}

	// Exact initialisation for short signals
	zn := z
	iz := 1 / z
	z2n := math.Pow(z, float64(n-1))
	sum := c[0] + z2n*c[n-1]
	z2n *= z2n * iz
	for k := 1; k < n-1; k++ {
		sum += (zn + z2n) * c[k]
		zn *= z
		z2n *= iz
	}
	return sum / (1 - zn*zn)
}

// mirror folds an index into [0, n) with whole-sample symmetry.
func mirror(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2*n - 2
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// weights returns the quadratic B-spline weights of the coefficients at
// index-1, index and index+1 for a position x, with index = round(x).
func weights(x float64) (index int, w [3]float64) {
	index = int(math.Floor(x + 0.5))
	t := x - float64(index)
	w[0] = 0.5 * (t - 0.5) * (t - 0.5)
	w[1] = 0.75 - t*t
	w[2] = 0.5 * (t + 0.5) * (t + 0.5)
	return index, w
}

// resample1D evaluates the spline given by coeffs at m equally spaced
// positions covering the same extent, writing into out.
func resample1D(coeffs []float64, out []float64) {
	n, m := len(coeffs), len(out)
	if n == 1 {
		for j := range out {
			out[j] = coeffs[0]
		}
		return
	}

	step := 0.0
	if m > 1 {
		step = float64(n-1) / float64(m-1)
	}
	for j := range out {
		index, w := weights(float64(j) * step)
		out[j] = w[0]*coeffs[mirror(index-1, n)] +
			w[1]*coeffs[mirror(index, n)] +
			w[2]*coeffs[mirror(index+1, n)]
	}
}
