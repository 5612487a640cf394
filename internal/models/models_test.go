package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// TestVolumeIndexing verifies that the flat layout keeps the column index fastest
func TestVolumeIndexing(t *testing.T) {
	v := NewVolume(2, 3, 4)
	v.Set(1, 2, 3, 7)

	if idx := v.Index(1, 2, 3); idx != len(v.Data)-1 {
		t.Errorf("Expected last voxel at offset %d, got %d", len(v.Data)-1, idx)
	}
	if v.Data[len(v.Data)-1] != 7 {
		t.Errorf("Set did not write the expected voxel")
	}

	d, r, c := v.Position(v.Index(1, 0, 2))
	if d != 1 || r != 0 || c != 2 {
		t.Errorf("Position round trip failed, got (%d, %d, %d)", d, r, c)
	}
}

// TestValidateRejectsNonFinite checks NaN and Inf detection
func TestValidateRejectsNonFinite(t *testing.T) {
	v := NewVolume(2, 2, 2)
	if err := v.Validate(); err != nil {
		t.Fatalf("Zero volume should be valid: %v", err)
	}

	v.Data[3] = math.NaN()
	if err := v.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for NaN, got %v", err)
	}

	v.Data[3] = math.Inf(-1)
	if err := v.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for Inf, got %v", err)
	}

	bad := Volume{Data: make([]float64, 5), Depth: 2, Rows: 2, Cols: 2}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for short data, got %v", err)
	}
}

// TestROIClamp verifies that boxes are shrunk, not shifted, at the border
func TestROIClamp(t *testing.T) {
	shape := [3]int{10, 10, 10}

	roi := NewROI([3]float64{1, 5, 9}, 6).Clamp(shape)
	if roi.Start != [3]int{0, 2, 6} {
		t.Errorf("Unexpected clamped start %v", roi.Start)
	}
	if roi.Stop != [3]int{4, 8, 10} {
		t.Errorf("Unexpected clamped stop %v", roi.Stop)
	}
	if roi.Size() != [3]int{4, 6, 4} {
		t.Errorf("Unexpected clamped size %v", roi.Size())
	}

	outside := NewROI([3]float64{-20, 5, 5}, 4).Clamp(shape)
	if !outside.Empty() {
		t.Errorf("ROI fully outside the volume should be empty, got %v", outside)
	}
}

// TestROIRounding checks the half-to-even rounding of the lower corner
func TestROIRounding(t *testing.T) {
	roi := NewROI([3]float64{10, 10, 11}, 5)
	// 7.5 rounds to 8 and 8.5 rounds to 8
	if roi.Start != [3]int{8, 8, 8} {
		t.Errorf("Unexpected start %v", roi.Start)
	}
	if roi.Size() != [3]int{5, 5, 5} {
		t.Errorf("Unexpected size %v", roi.Size())
	}
}

// TestCrop copies a sub-block and checks voxel correspondence
func TestCrop(t *testing.T) {
	v := NewVolume(4, 5, 6)
	for i := range v.Data {
		v.Data[i] = float64(i)
	}

	roi := ROI{Start: [3]int{1, 2, 3}, Stop: [3]int{3, 5, 6}}
	sub, err := v.Crop(roi)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if sub.Shape() != [3]int{2, 3, 3} {
		t.Fatalf("Unexpected cropped shape %v", sub.Shape())
	}
	if sub.At(1, 2, 0) != v.At(2, 4, 3) {
		t.Errorf("Cropped voxel mismatch: %f vs %f", sub.At(1, 2, 0), v.At(2, 4, 3))
	}

	if _, err := v.Crop(ROI{Start: [3]int{0, 0, 0}, Stop: [3]int{5, 1, 1}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for out of bounds ROI, got %v", err)
	}
}

// TestAxisAdapter verifies the single (depth, row, column) <-> (x, y, z) mapping
func TestAxisAdapter(t *testing.T) {
	p := ToXYZ(1, 2, 3)
	if p.X != 3 || p.Y != 2 || p.Z != 1 {
		t.Errorf("Expected (3, 2, 1), got %+v", p)
	}
	if back := FromXYZ(p); back != [3]float64{1, 2, 3} {
		t.Errorf("Round trip failed, got %v", back)
	}
}

// TestMaskMatches checks shape agreement between masks and volumes
func TestMaskMatches(t *testing.T) {
	v := NewVolume(2, 3, 4)
	m := NewMask(2, 3, 4)
	if err := m.Matches(v); err != nil {
		t.Errorf("Masks of equal shape should match: %v", err)
	}
	m.Set(1, 1, 1, true)
	if m.Count() != 1 {
		t.Errorf("Expected one set voxel, got %d", m.Count())
	}

	if err := NewMask(2, 3, 5).Matches(v); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for mismatched mask, got %v", err)
	}
}

// TestReadRaw decodes little-endian volumes of several voxel types
func TestReadRaw(t *testing.T) {
	shape := [3]int{1, 2, 2}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, []int16{-3, 0, 5, 1000}); err != nil {
		t.Fatalf("Failed to encode test data: %v", err)
	}
	v, err := ReadRaw(&buf, shape, Int16)
	if err != nil {
		t.Fatalf("ReadRaw failed: %v", err)
	}
	want := []float64{-3, 0, 5, 1000}
	for i := range want {
		if v.Data[i] != want[i] {
			t.Errorf("Voxel %d: expected %f, got %f", i, want[i], v.Data[i])
		}
	}

	buf.Reset()
	if err := binary.Write(&buf, binary.LittleEndian, []float32{0.5, 1.5, 2.5, 3.5}); err != nil {
		t.Fatalf("Failed to encode test data: %v", err)
	}
	v, err = ReadRaw(&buf, shape, Float32)
	if err != nil {
		t.Fatalf("ReadRaw failed: %v", err)
	}
	if v.At(0, 1, 1) != 3.5 {
		t.Errorf("Expected 3.5, got %f", v.At(0, 1, 1))
	}

	if _, err := ReadRaw(bytes.NewReader([]byte{1, 2}), shape, Uint8); err == nil {
		t.Error("Expected an error for truncated input")
	}

	if _, err := ParseDataType("int128"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for unknown type, got %v", err)
	}
}
