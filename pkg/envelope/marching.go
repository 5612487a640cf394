package envelope

import (
	"gonum.org/v1/gonum/spatial/r3"

	"fabrictensor/internal/models"
)

// crossingVertices returns the vertex set of the marching cubes isosurface of
// field at level.
//
// Every marching cubes vertex lies on a grid edge whose end points fall on
// opposite sides of the level, and every such edge contributes exactly one
// vertex shared by the cubes around it. Enumerating edges therefore yields
// the deduplicated vertex set without building triangles, which are not
// needed downstream.
func crossingVertices(field models.Volume, level float64) []r3.Vec {
	var vertices []r3.Vec

	// Edge directions along depth, row and column
	steps := [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	for d := 0; d < field.Depth; d++ {
		for r := 0; r < field.Rows; r++ {
			for c := 0; c < field.Cols; c++ {
				v0 := field.At(d, r, c)
				for _, s := range steps {
					d1, r1, c1 := d+s[0], r+s[1], c+s[2]
					if d1 >= field.Depth || r1 >= field.Rows || c1 >= field.Cols {
						continue
					}
					v1 := field.At(d1, r1, c1)
					if (v0 > level) == (v1 > level) {
						continue
					}

					t := (level - v0) / (v1 - v0)
					vertices = append(vertices, models.ToXYZ(
						float64(d)+t*float64(s[0]),
						float64(r)+t*float64(s[1]),
						float64(c)+t*float64(s[2]),
					))
				}
			}
		}
	}
	return vertices
}

// trilinear samples field at a fractional (depth, row, column) position.
// Positions outside the grid sample as zero.
func trilinear(field models.Volume, d, r, c float64) float64 {
	if d < 0 || r < 0 || c < 0 ||
		d > float64(field.Depth-1) || r > float64(field.Rows-1) || c > float64(field.Cols-1) {
		return 0
	}

	d0, r0, c0 := int(d), int(r), int(c)
	d1, r1, c1 := min(d0+1, field.Depth-1), min(r0+1, field.Rows-1), min(c0+1, field.Cols-1)
	td, tr, tc := d-float64(d0), r-float64(r0), c-float64(c0)

	lerp := func(a, b, t float64) float64 { return a + t*(b-a) }

	c00 := lerp(field.At(d0, r0, c0), field.At(d0, r0, c1), tc)
	c01 := lerp(field.At(d0, r1, c0), field.At(d0, r1, c1), tc)
	c10 := lerp(field.At(d1, r0, c0), field.At(d1, r0, c1), tc)
	c11 := lerp(field.At(d1, r1, c0), field.At(d1, r1, c1), tc)

	return lerp(lerp(c00, c01, tr), lerp(c10, c11, tr), td)
}
