package sampling

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"fabrictensor/internal/models"
	"fabrictensor/pkg/fabric"
)

// ErrMasked marks a grid cell skipped because its ROI leaves the mask.
var ErrMasked = errors.New("fabric: ROI outside mask")

// Result is the outcome of one sample.
type Result struct {
	// Center is the nominal sample centre in (x, y, z) voxel coordinates.
	Center r3.Vec

	// ROI is the analysed box after clamping to the volume.
	ROI models.ROI

	Sample fabric.Sample

	// Err is set when the sample could not be measured; Sample is then
	// NaN-filled.
	Err error
}

// OK reports whether the sample was measured and accepted.
func (r Result) OK() bool {
	return r.Err == nil && !r.Sample.Rejected()
}

// task is one unit of work for the pool.
type task struct {
	center r3.Vec
	roi    models.ROI
	skip   error
}

// SingleVolume measures the fabric of the whole volume. The outlier bound
// uses the largest volume dimension as ROI size.
func SingleVolume(v models.Volume, p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if err := v.Validate(); err != nil {
		return Result{}, err
	}

	size := max(v.Depth, v.Rows, v.Cols)
	center := v.Center()
	t := task{
		center: models.ToXYZ(float64(center[0]), float64(center[1]), float64(center[2])),
		roi:    models.FullROI(v.Shape()),
	}

	p.Workers = 1
	results, err := run(v, []task{t}, size, p)
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

// PointSet measures the fabric around each centre, given in (x, y, z) voxel
// coordinates. Results are index-aligned with centers.
func PointSet(v models.Volume, centers []r3.Vec, p Params) ([]Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.requireROI(); err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if len(centers) == 0 {
		return nil, fmt.Errorf("point set is empty: %w", models.ErrInvalidInput)
	}

	tasks := make([]task, len(centers))
	for i, c := range centers {
		if math.IsNaN(c.X+c.Y+c.Z) || math.IsInf(c.X+c.Y+c.Z, 0) {
			return nil, fmt.Errorf("point %d is not finite: %w", i, models.ErrInvalidInput)
		}
		roi := models.NewROI(models.FromXYZ(c), p.ROISize).Clamp(v.Shape())
		if roi.Empty() {
			return nil, fmt.Errorf("point %d at %v: ROI does not overlap the volume: %w", i, c, models.ErrInvalidInput)
		}
		tasks[i] = task{center: c, roi: roi}
	}

	return run(v, tasks, p.ROISize, p)
}

// Grid holds GridScan results on the sampling lattice.
type Grid struct {
	// Positions lists the lattice coordinates along depth, rows and columns.
	Positions [3][]int

	// Results are stored in (depth, row, column) lattice order.
	Results []Result
}

// Shape returns the number of lattice positions along each axis.
func (g *Grid) Shape() [3]int {
	return [3]int{len(g.Positions[0]), len(g.Positions[1]), len(g.Positions[2])}
}

// At returns the result at lattice index (i, j, k).
func (g *Grid) At(i, j, k int) Result {
	s := g.Shape()
	return g.Results[(i*s[1]+j)*s[2]+k]
}

// Samples returns the samples in lattice order.
func (g *Grid) Samples() []fabric.Sample {
	out := make([]fabric.Sample, len(g.Results))
	for i, r := range g.Results {
		out[i] = r.Sample
	}
	return out
}

// lattice returns spacing, 2·spacing, ... strictly below n - spacing.
func lattice(n, spacing int) []int {
	var pos []int
	for x := spacing; x < n-spacing; x += spacing {
		pos = append(pos, x)
	}
	return pos
}

// GridScan measures the fabric on a regular lattice of step ROISpacing,
// leaving a margin of one step at every face. ROISize must not exceed the
// spacing. With a mask, ROIs not fully inside it are skipped and recorded
// with ErrMasked.
func GridScan(v models.Volume, p Params) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.requireROI(); err != nil {
		return nil, err
	}
	if p.ROISpacing <= 0 {
		return nil, fmt.Errorf("ROI spacing must be positive, got %d: %w", p.ROISpacing, models.ErrConfiguration)
	}
	if p.ROISize > p.ROISpacing {
		return nil, fmt.Errorf("ROI size %d exceeds spacing %d: %w", p.ROISize, p.ROISpacing, models.ErrConfiguration)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if p.Mask != nil {
		if err := p.Mask.Matches(v); err != nil {
			return nil, err
		}
	}

	g := &Grid{}
	for axis, n := range v.Shape() {
		g.Positions[axis] = lattice(n, p.ROISpacing)
	}

	var tasks []task
	for _, d := range g.Positions[0] {
		for _, r := range g.Positions[1] {
			for _, c := range g.Positions[2] {
				center := [3]float64{float64(d), float64(r), float64(c)}
				roi := models.NewROI(center, p.ROISize).Clamp(v.Shape())
				t := task{center: models.ToXYZ(center[0], center[1], center[2]), roi: roi}
				if p.Mask != nil && !insideMask(*p.Mask, roi) {
					t.skip = ErrMasked
				}
				tasks = append(tasks, t)
			}
		}
	}

	results, err := run(v, tasks, p.ROISize, p)
	if err != nil {
		return nil, err
	}
	g.Results = results
	return g, nil
}

// insideMask reports whether every voxel of roi is set in m.
func insideMask(m models.Mask, roi models.ROI) bool {
	for d := roi.Start[0]; d < roi.Stop[0]; d++ {
		for r := roi.Start[1]; r < roi.Stop[1]; r++ {
			for c := roi.Start[2]; c < roi.Stop[2]; c++ {
				if !m.At(d, r, c) {
					return false
				}
			}
		}
	}
	return true
}
