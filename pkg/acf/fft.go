package acf

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fft3D performs an in-place 3D discrete Fourier transform of data laid out
// in row-major (depth, row, column) order.
//
// The transform is separable: a 1D complex FFT from Gonum is applied along
// every line of each axis in turn. Gonum's inverse transform is not scaled,
// so an inverse pass multiplies the input by n_d*n_r*n_c; callers divide.
//
// Parameters:
//   - data: Volume samples as complex numbers, modified in place
//   - shape: Extents in (depth, row, column) order
//   - inverse: Whether to compute the inverse (Sequence) transform
func fft3D(data []complex128, shape [3]int, inverse bool) {
	strides := [3]int{shape[1] * shape[2], shape[2], 1}

	for axis := 0; axis < 3; axis++ {
		n := shape[axis]
		if n < 2 {
			continue
		}

		// Plans hold scratch space and are not safe for concurrent use, so
		// every call builds its own.
		fft := fourier.NewCmplxFFT(n)
		line := make([]complex128, n)
		out := make([]complex128, n)
		stride := strides[axis]

		for start := range data {
			// Only visit offsets where the coordinate along this axis is 0
			if (start/stride)%n != 0 {
				continue
			}

			for i := 0; i < n; i++ {
				line[i] = data[start+i*stride]
			}

			if inverse {
				fft.Sequence(out, line)
			} else {
				fft.Coefficients(out, line)
			}

			for i := 0; i < n; i++ {
				data[start+i*stride] = out[i]
			}
		}
	}
}
