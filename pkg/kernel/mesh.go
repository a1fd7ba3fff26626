package kernel

import (
	"math"

	"github.com/chazu/wigmesh/pkg/geom"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which vehicle part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// FromSolid flattens s into a render mesh named name. Polygons are
// triangulated and every vertex gets the area-weighted average normal of
// its triangles.
func FromSolid(s *geom.Solid, name string) *Mesh {
	m := &Mesh{PartName: name}
	if s.IsEmpty() {
		return m
	}
	tri := s.Triangulate()

	m.Vertices = make([]float32, 0, len(tri.Vertices)*3)
	for _, v := range tri.Vertices {
		m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
	}
	m.Indices = make([]uint32, 0, len(tri.Faces)*3)
	for _, f := range tri.Faces {
		m.Indices = append(m.Indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	m.Normals = computeNormals(m.Vertices, m.Indices)
	return m
}

// computeNormals generates per-vertex normals by averaging the face normals
// of all triangles incident on each vertex.
func computeNormals(vertices []float32, indices []uint32) []float32 {
	numVerts := len(vertices) / 3
	normals := make([]float32, numVerts*3)

	numTris := len(indices) / 3
	for t := 0; t < numTris; t++ {
		i0 := indices[t*3+0]
		i1 := indices[t*3+1]
		i2 := indices[t*3+2]

		ax, ay, az := float64(vertices[i0*3]), float64(vertices[i0*3+1]), float64(vertices[i0*3+2])
		bx, by, bz := float64(vertices[i1*3]), float64(vertices[i1*3+1]), float64(vertices[i1*3+2])
		cx, cy, cz := float64(vertices[i2*3]), float64(vertices[i2*3+1]), float64(vertices[i2*3+2])

		e1x, e1y, e1z := bx-ax, by-ay, bz-az
		e2x, e2y, e2z := cx-ax, cy-ay, cz-az

		// Unnormalized, so larger triangles weigh more.
		nx := float32(e1y*e2z - e1z*e2y)
		ny := float32(e1z*e2x - e1x*e2z)
		nz := float32(e1x*e2y - e1y*e2x)

		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3+0] += nx
			normals[idx*3+1] += ny
			normals[idx*3+2] += nz
		}
	}

	for i := 0; i < numVerts; i++ {
		nx := float64(normals[i*3+0])
		ny := float64(normals[i*3+1])
		nz := float64(normals[i*3+2])
		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if length > 1e-12 {
			normals[i*3+0] = float32(nx / length)
			normals[i*3+1] = float32(ny / length)
			normals[i*3+2] = float32(nz / length)
		} else {
			// Degenerate: default to +Z.
			normals[i*3+0] = 0
			normals[i*3+1] = 0
			normals[i*3+2] = 1
		}
	}

	return normals
}
