package models

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// DataType names the voxel encoding of a headerless raw volume file.
type DataType string

const (
	Uint8   DataType = "uint8"
	Int16   DataType = "int16"
	Uint16  DataType = "uint16"
	Float32 DataType = "float32"
	Float64 DataType = "float64"
)

// ParseDataType validates a data type name.
func ParseDataType(name string) (DataType, error) {
	switch dt := DataType(name); dt {
	case Uint8, Int16, Uint16, Float32, Float64:
		return dt, nil
	}
	return "", fmt.Errorf("unknown raw data type %q: %w", name, ErrConfiguration)
}

// ReadRaw decodes a little-endian raw volume with the given (depth, row,
// column) shape. Slices are expected one after another, rows within a slice
// one after another and columns contiguous.
func ReadRaw(r io.Reader, shape [3]int, dt DataType) (Volume, error) {
	v := NewVolume(shape[0], shape[1], shape[2])
	if err := v.CheckShape(); err != nil {
		return Volume{}, err
	}

	n := v.Len()
	var err error
	switch dt {
	case Uint8:
		buf := make([]uint8, n)
		if _, err = io.ReadFull(r, buf); err == nil {
			for i, x := range buf {
				v.Data[i] = float64(x)
			}
		}
	case Int16:
		buf := make([]int16, n)
		if err = binary.Read(r, binary.LittleEndian, buf); err == nil {
			for i, x := range buf {
				v.Data[i] = float64(x)
			}
		}
	case Uint16:
		buf := make([]uint16, n)
		if err = binary.Read(r, binary.LittleEndian, buf); err == nil {
			for i, x := range buf {
				v.Data[i] = float64(x)
			}
		}
	case Float32:
		buf := make([]float32, n)
		if err = binary.Read(r, binary.LittleEndian, buf); err == nil {
			for i, x := range buf {
				v.Data[i] = float64(x)
			}
		}
	case Float64:
		err = binary.Read(r, binary.LittleEndian, v.Data)
	default:
		return Volume{}, fmt.Errorf("unknown raw data type %q: %w", dt, ErrConfiguration)
	}
	if err != nil {
		return Volume{}, fmt.Errorf("failed to read %s volume %v: %w", dt, shape, err)
	}
	return v, nil
}

// LoadRaw reads a raw volume file from disk.
func LoadRaw(path string, shape [3]int, dt DataType) (Volume, error) {
	file, err := os.Open(path)
	if err != nil {
		return Volume{}, err
	}
	defer file.Close()

	return ReadRaw(bufio.NewReader(file), shape, dt)
}
