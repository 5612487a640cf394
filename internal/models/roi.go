package models

import (
	"fmt"
	"math"
)

// ROI is an axis-aligned box of voxels in (depth, row, column) order.
// Start is inclusive and Stop exclusive along each axis.
type ROI struct {
	Start [3]int
	Stop  [3]int
}

// NewROI builds a cubic box of edge size around center, where center is
// given in (depth, row, column) voxel coordinates. The lower corner is
// center - size/2 rounded half to even, so a centre of 10 with size 5
// starts at 8 and a centre of 10 with size 4 starts at 8.
func NewROI(center [3]float64, size int) ROI {
	var roi ROI
	half := float64(size) / 2
	for axis := 0; axis < 3; axis++ {
		roi.Start[axis] = int(math.RoundToEven(center[axis] - half))
		roi.Stop[axis] = roi.Start[axis] + size
	}
	return roi
}

// FullROI covers the whole volume of the given shape.
func FullROI(shape [3]int) ROI {
	return ROI{Stop: shape}
}

// Clamp shrinks the box to the volume extent. Boxes that stick out of the
// volume lose the outside part only, so near the border the ROI becomes
// asymmetric around its nominal centre.
func (roi ROI) Clamp(shape [3]int) ROI {
	for axis := 0; axis < 3; axis++ {
		if roi.Start[axis] < 0 {
			roi.Start[axis] = 0
		}
		if roi.Stop[axis] > shape[axis] {
			roi.Stop[axis] = shape[axis]
		}
		if roi.Stop[axis] < roi.Start[axis] {
			roi.Stop[axis] = roi.Start[axis]
		}
	}
	return roi
}

// Size returns the edge lengths of the box.
func (roi ROI) Size() [3]int {
	return [3]int{
		roi.Stop[0] - roi.Start[0],
		roi.Stop[1] - roi.Start[1],
		roi.Stop[2] - roi.Start[2],
	}
}

// Empty reports whether the box holds no voxels.
func (roi ROI) Empty() bool {
	s := roi.Size()
	return s[0] <= 0 || s[1] <= 0 || s[2] <= 0
}

// Within reports whether the box lies inside a volume of the given shape.
func (roi ROI) Within(shape [3]int) bool {
	for axis := 0; axis < 3; axis++ {
		if roi.Start[axis] < 0 || roi.Stop[axis] > shape[axis] || roi.Stop[axis] < roi.Start[axis] {
			return false
		}
	}
	return true
}

func (roi ROI) String() string {
	return fmt.Sprintf("[%d:%d, %d:%d, %d:%d]",
		roi.Start[0], roi.Stop[0], roi.Start[1], roi.Stop[1], roi.Start[2], roi.Stop[2])
}
