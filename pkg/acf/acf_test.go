package acf

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"fabrictensor/internal/models"
)

// randomVolume fills a volume with reproducible positive noise
func randomVolume(depth, rows, cols int, seed int64) models.Volume {
	rng := rand.New(rand.NewSource(seed))
	v := models.NewVolume(depth, rows, cols)
	for i := range v.Data {
		v.Data[i] = rng.Float64()
	}
	return v
}

// maxValue returns the largest voxel value
func maxValue(v models.Volume) float64 {
	m := math.Inf(-1)
	for _, x := range v.Data {
		m = math.Max(m, x)
	}
	return m
}

// TestAutocorrelationSymmetry checks ACF[c+s] == ACF[c-s] for even and odd extents
func TestAutocorrelationSymmetry(t *testing.T) {
	for _, shape := range [][3]int{{6, 8, 10}, {5, 7, 9}, {4, 5, 6}} {
		v := randomVolume(shape[0], shape[1], shape[2], 42)

		acf, err := Autocorrelate(v)
		if err != nil {
			t.Fatalf("Autocorrelate failed for %v: %v", shape, err)
		}
		if acf.Shape() != v.Shape() {
			t.Fatalf("Expected shape %v, got %v", v.Shape(), acf.Shape())
		}

		center := acf.Center()
		tolerance := 1e-9 * maxValue(acf)
		for d := 0; d < acf.Depth; d++ {
			for r := 0; r < acf.Rows; r++ {
				for c := 0; c < acf.Cols; c++ {
					fd := ((2*center[0]-d)%acf.Depth + acf.Depth) % acf.Depth
					fr := ((2*center[1]-r)%acf.Rows + acf.Rows) % acf.Rows
					fc := ((2*center[2]-c)%acf.Cols + acf.Cols) % acf.Cols
					if diff := math.Abs(acf.At(d, r, c) - acf.At(fd, fr, fc)); diff > tolerance {
						t.Fatalf("Shape %v: ACF not symmetric at (%d,%d,%d), diff %g", shape, d, r, c, diff)
					}
				}
			}
		}
	}
}

// TestAutocorrelationPeakAtCenter verifies the zero-lag maximum lands on the centre voxel
func TestAutocorrelationPeakAtCenter(t *testing.T) {
	v := randomVolume(7, 8, 9, 3)
	acf, err := Autocorrelate(v)
	if err != nil {
		t.Fatalf("Autocorrelate failed: %v", err)
	}

	center := acf.Center()
	peak := acf.At(center[0], center[1], center[2])
	if peak < maxValue(acf)-1e-12 {
		t.Errorf("Centre value %f is not the maximum %f", peak, maxValue(acf))
	}
	for _, x := range acf.Data {
		if x < 0 {
			t.Fatalf("ACF must be non-negative, found %f", x)
		}
	}
}

// TestAutocorrelationMatchesDirectSum compares against a brute-force circular correlation
func TestAutocorrelationMatchesDirectSum(t *testing.T) {
	v := randomVolume(3, 4, 5, 11)
	acf, err := Autocorrelate(v)
	if err != nil {
		t.Fatalf("Autocorrelate failed: %v", err)
	}

	direct := models.NewVolume(v.Depth, v.Rows, v.Cols)
	for sd := 0; sd < v.Depth; sd++ {
		for sr := 0; sr < v.Rows; sr++ {
			for sc := 0; sc < v.Cols; sc++ {
				sum := 0.0
				for d := 0; d < v.Depth; d++ {
					for r := 0; r < v.Rows; r++ {
						for c := 0; c < v.Cols; c++ {
							sum += v.At(d, r, c) * v.At((d+sd)%v.Depth, (r+sr)%v.Rows, (c+sc)%v.Cols)
						}
					}
				}
				direct.Set(sd, sr, sc, sum)
			}
		}
	}
	direct = Shift(direct)

	// Compare shapes relative to the peak
	acfPeak, directPeak := maxValue(acf), maxValue(direct)
	for i := range acf.Data {
		a := acf.Data[i] / acfPeak
		b := direct.Data[i] / directPeak
		if math.Abs(a-b) > 1e-9 {
			t.Fatalf("Voxel %d: FFT ACF %f differs from direct sum %f", i, a, b)
		}
	}
}

// TestAutocorrelationOfBlock checks that a constant-valued block in an empty
// background gives one dominant central peak that decays to zero at large lags
func TestAutocorrelationOfBlock(t *testing.T) {
	size := 16
	v := models.NewVolume(size, size, size)
	for d := 6; d < 10; d++ {
		for r := 6; r < 10; r++ {
			for c := 6; c < 10; c++ {
				v.Set(d, r, c, 3.0)
			}
		}
	}

	acf, err := Autocorrelate(v)
	if err != nil {
		t.Fatalf("Autocorrelate failed: %v", err)
	}

	center := acf.Center()
	peak := acf.At(center[0], center[1], center[2])
	count := 0
	for _, x := range acf.Data {
		if x >= peak-1e-9 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected a single dominant peak, found %d voxels at peak level", count)
	}

	// Lags beyond the block width have no overlap
	if corner := acf.At(0, 0, 0); corner > 1e-9*peak {
		t.Errorf("Expected near-zero ACF at large lag, got %g (peak %g)", corner, peak)
	}
	if edge := acf.At(center[0], center[1], center[2]+6); edge > 1e-9*peak {
		t.Errorf("Expected near-zero ACF beyond block width, got %g", edge)
	}
}

// TestShiftRoundTrip verifies InverseShift undoes Shift for odd extents
func TestShiftRoundTrip(t *testing.T) {
	v := randomVolume(3, 4, 5, 1)
	back := InverseShift(Shift(v))
	for i := range v.Data {
		if v.Data[i] != back.Data[i] {
			t.Fatalf("Round trip mismatch at %d", i)
		}
	}

	shifted := Shift(v)
	if shifted.At(1, 2, 2) != v.At(0, 0, 0) {
		t.Errorf("Shift should move the origin to the centre voxel")
	}
}

// TestAutocorrelationRejectsBadInput covers non-finite and malformed volumes
func TestAutocorrelationRejectsBadInput(t *testing.T) {
	v := models.NewVolume(2, 2, 2)
	v.Data[0] = math.NaN()
	if _, err := Autocorrelate(v); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for NaN input, got %v", err)
	}

	if _, err := Autocorrelate(models.Volume{}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty volume, got %v", err)
	}
}

// BenchmarkAutocorrelate measures a 32^3 autocorrelation
func BenchmarkAutocorrelate(b *testing.B) {
	v := randomVolume(32, 32, 32, 7)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Autocorrelate(v); err != nil {
			b.Fatal(err)
		}
	}
}
