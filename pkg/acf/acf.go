// Package acf computes the 3D autocorrelation function (ACF) of a scalar
// volume through the Wiener–Khinchin theorem:
//
//	ACF = |IFFT(FFT(I) · conj(FFT(I)))|
//
// The result is centred so that the zero-lag peak sits on the centre voxel
// (Depth/2, Rows/2, Cols/2). Only the central lobe of the ACF carries the
// orientation of the microstructure; see package zoom for its extraction.
package acf

import (
	"fmt"
	"math/cmplx"

	"fabrictensor/internal/models"
)

// Autocorrelate returns the centred, non-negative autocorrelation of v.
// The output has the same shape as the input and is circular: lags wrap
// around the volume borders. Cost is O(N log N) in the voxel count.
func Autocorrelate(v models.Volume) (models.Volume, error) {
	if err := v.Validate(); err != nil {
		return models.Volume{}, fmt.Errorf("autocorrelation: %w", err)
	}

	shape := v.Shape()
	spectrum := make([]complex128, len(v.Data))
	for i, x := range v.Data {
		spectrum[i] = complex(x, 0)
	}

	fft3D(spectrum, shape, false)

	// Power spectrum
	for i, f := range spectrum {
		spectrum[i] = f * cmplx.Conj(f)
	}

	fft3D(spectrum, shape, true)

	result := models.NewVolume(shape[0], shape[1], shape[2])
	scale := 1 / float64(len(spectrum))
	for i, s := range spectrum {
		result.Data[i] = cmplx.Abs(s) * scale
	}

	return Shift(result), nil
}

// Shift moves the zero-lag element from index 0 to index n/2 along every
// axis (fftshift).
func Shift(v models.Volume) models.Volume {
	return circularShift(v, false)
}

// InverseShift undoes Shift (ifftshift).
func InverseShift(v models.Volume) models.Volume {
	return circularShift(v, true)
}

func circularShift(v models.Volume, inverse bool) models.Volume {
	out := models.NewVolume(v.Depth, v.Rows, v.Cols)
	half := [3]int{v.Depth / 2, v.Rows / 2, v.Cols / 2}

	for d := 0; d < v.Depth; d++ {
		for r := 0; r < v.Rows; r++ {
			for c := 0; c < v.Cols; c++ {
				sd := (d + half[0]) % v.Depth
				sr := (r + half[1]) % v.Rows
				sc := (c + half[2]) % v.Cols
				if inverse {
					out.Set(d, r, c, v.At(sd, sr, sc))
				} else {
					out.Set(sd, sr, sc, v.At(d, r, c))
				}
			}
		}
	}
	return out
}
