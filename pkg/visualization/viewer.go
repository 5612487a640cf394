// Package visualization renders planes of autocorrelation volumes as
// grayscale preview images.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"

	"fabrictensor/internal/models"
)

// Viewer extracts and saves planes of a volume. Intensities are stretched
// to the full gray range using the volume minimum and maximum.
type Viewer struct {
	volume models.Volume

	lo, hi float64
}

// NewViewer creates a viewer for v.
func NewViewer(v models.Volume) (*Viewer, error) {
	if err := v.CheckShape(); err != nil {
		return nil, fmt.Errorf("viewer: %w", err)
	}
	return &Viewer{
		volume: v,
		lo:     floats.Min(v.Data),
		hi:     floats.Max(v.Data),
	}, nil
}

func (v *Viewer) gray(x float64) color.Gray16 {
	if v.hi == v.lo {
		return color.Gray16{}
	}
	t := (x - v.lo) / (v.hi - v.lo)
	return color.Gray16{Y: uint16(math.Max(0, math.Min(65535, t*65535)))}
}

// ExtractSlice extracts a 2D plane of the volume. Axis "x" fixes a column
// and yields a (depth × rows) image, "y" fixes a row (cols × depth) and "z"
// fixes a depth slice (cols × rows).
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}
	vol := v.volume

	var img *image.Gray16

	switch axis {
	case "x", "X":
		if position >= vol.Cols {
			return nil, fmt.Errorf("position %d exceeds columns %d", position, vol.Cols)
		}
		img = image.NewGray16(image.Rect(0, 0, vol.Depth, vol.Rows))
		for r := 0; r < vol.Rows; r++ {
			for d := 0; d < vol.Depth; d++ {
				img.SetGray16(d, r, v.gray(vol.At(d, r, position)))
			}
		}

	case "y", "Y":
		if position >= vol.Rows {
			return nil, fmt.Errorf("position %d exceeds rows %d", position, vol.Rows)
		}
		img = image.NewGray16(image.Rect(0, 0, vol.Cols, vol.Depth))
		for d := 0; d < vol.Depth; d++ {
			for c := 0; c < vol.Cols; c++ {
				img.SetGray16(c, d, v.gray(vol.At(d, position, c)))
			}
		}

	case "z", "Z":
		if position >= vol.Depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, vol.Depth)
		}
		img = image.NewGray16(image.Rect(0, 0, vol.Cols, vol.Rows))
		for r := 0; r < vol.Rows; r++ {
			for c := 0; c < vol.Cols; c++ {
				img.SetGray16(c, r, v.gray(vol.At(position, r, c)))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// SaveSlice upscales img by scale with nearest neighbour sampling, so single
// voxels stay visible, and saves it. The format follows the file extension.
func (v *Viewer) SaveSlice(img image.Image, filename string, scale int) error {
	if scale > 1 {
		b := img.Bounds()
		img = imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)
	}
	return imaging.Save(img, filename)
}

// SaveCentralPlanes saves the three planes through the volume centre, where
// the zero-lag peak of a shifted ACF lies, as <prefix>_x.png, <prefix>_y.png
// and <prefix>_z.png in outputDir. It returns the written paths.
func (v *Viewer) SaveCentralPlanes(outputDir, prefix string, scale int) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	center := v.volume.Center()
	planes := []struct {
		axis     string
		position int
	}{
		{"x", center[2]},
		{"y", center[1]},
		{"z", center[0]},
	}

	var paths []string
	for _, p := range planes {
		img, err := v.ExtractSlice(p.axis, p.position)
		if err != nil {
			return nil, err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("%s_%s.png", prefix, p.axis))
		if err := v.SaveSlice(img, filename, scale); err != nil {
			return nil, err
		}
		paths = append(paths, filename)
	}

	return paths, nil
}
