package envelope

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/unixpickle/model3d/model3d"

	"fabrictensor/internal/models"
)

// searchIterations is the number of bisection steps per mesh vertex.
const searchIterations = 8

// densitySolid exposes a (depth, row, column) density volume as a
// model3d.Solid in (x, y, z) space. A point is inside when the trilinear
// density exceeds the level.
type densitySolid struct {
	field models.Volume
	level float64
}

func (s densitySolid) Min() model3d.Coord3D {
	return model3d.Coord3D{}
}

func (s densitySolid) Max() model3d.Coord3D {
	p := models.ToXYZ(float64(s.field.Depth-1), float64(s.field.Rows-1), float64(s.field.Cols-1))
	return model3d.Coord3D{X: p.X, Y: p.Y, Z: p.Z}
}

func (s densitySolid) Contains(p model3d.Coord3D) bool {
	q := models.FromXYZ(r3.Vec{X: p.X, Y: p.Y, Z: p.Z})
	return trilinear(s.field, q[0], q[1], q[2]) > s.level
}

// searchVertices meshes field with model3d and returns the unique mesh
// vertices sorted by (x, y, z). Each vertex is located by bisection along
// its cube edge.
func searchVertices(field models.Volume, level float64) []r3.Vec {
	mesh := model3d.MarchingCubesSearch(densitySolid{field: field, level: level}, 1, searchIterations)

	coords := mesh.VertexSlice()
	vertices := make([]r3.Vec, len(coords))
	for i, c := range coords {
		vertices[i] = r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
	}
	// The mesh stores vertices in a map
	slices.SortFunc(vertices, func(a, b r3.Vec) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.Z, b.Z)
	})
	return vertices
}
