package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// WeldTolerance is the default distance under which Clean merges vertices.
const WeldTolerance = 1e-9

// Solid is a polygon mesh: shared vertices plus faces given as index
// loops. Caps are single n-gons until Triangulate splits them.
type Solid struct {
	Vertices []r3.Vec
	Faces    [][]int
}

// Topology summarises the edge structure of a mesh.
type Topology struct {
	Edges             int // distinct undirected edges
	BoundaryEdges     int // used by exactly one face
	NonManifoldEdges  int // used by more than two faces
	InconsistentEdges int // shared by two faces traversing it the same way
}

// Watertight reports whether every edge is shared by exactly two faces.
func (t Topology) Watertight() bool {
	return t.BoundaryEdges == 0 && t.NonManifoldEdges == 0
}

// IsEmpty reports whether s has no faces.
func (s *Solid) IsEmpty() bool { return s == nil || len(s.Faces) == 0 }

// Clone returns a deep copy of s.
func (s *Solid) Clone() *Solid {
	c := &Solid{
		Vertices: make([]r3.Vec, len(s.Vertices)),
		Faces:    make([][]int, len(s.Faces)),
	}
	copy(c.Vertices, s.Vertices)
	for i, f := range s.Faces {
		c.Faces[i] = append([]int(nil), f...)
	}
	return c
}

// AddFace appends a face loop referencing existing vertices.
func (s *Solid) AddFace(loop []int) {
	s.Faces = append(s.Faces, append([]int(nil), loop...))
}

// Append returns a new solid holding the vertices and faces of s and o.
// No vertices are merged; call Clean to weld coincident seams.
func (s *Solid) Append(o *Solid) *Solid {
	c := s.Clone()
	off := len(c.Vertices)
	c.Vertices = append(c.Vertices, o.Vertices...)
	for _, f := range o.Faces {
		nf := make([]int, len(f))
		for k, idx := range f {
			nf[k] = idx + off
		}
		c.Faces = append(c.Faces, nf)
	}
	return c
}

// MapVertices returns a copy of s with fn applied to each vertex.
func (s *Solid) MapVertices(fn func(r3.Vec) r3.Vec) *Solid {
	c := s.Clone()
	for i, v := range c.Vertices {
		c.Vertices[i] = fn(v)
	}
	return c
}

// FlipFaces returns a copy of s with every face's vertex order reversed.
func (s *Solid) FlipFaces() *Solid {
	c := s.Clone()
	for _, f := range c.Faces {
		for a, b := 0, len(f)-1; a < b; a, b = a+1, b-1 {
			f[a], f[b] = f[b], f[a]
		}
	}
	return c
}

// TriangleCount returns the number of triangles s has once triangulated.
func (s *Solid) TriangleCount() int {
	n := 0
	for _, f := range s.Faces {
		if len(f) >= 3 {
			n += len(f) - 2
		}
	}
	return n
}

// Triangles returns the corner positions of every triangle, fanning any
// remaining polygons.
func (s *Solid) Triangles() [][3]r3.Vec {
	tris := make([][3]r3.Vec, 0, s.TriangleCount())
	for _, f := range s.Faces {
		for k := 1; k+1 < len(f); k++ {
			tris = append(tris, [3]r3.Vec{s.Vertices[f[0]], s.Vertices[f[k]], s.Vertices[f[k+1]]})
		}
	}
	return tris
}

// SignedVolume returns the enclosed volume, positive when faces wind
// counter-clockwise seen from outside.
func (s *Solid) SignedVolume() float64 {
	var vol float64
	for _, t := range s.Triangles() {
		vol += r3.Dot(t[0], r3.Cross(t[1], t[2]))
	}
	return vol / 6
}

// Volume returns the absolute enclosed volume.
func (s *Solid) Volume() float64 { return math.Abs(s.SignedVolume()) }

// Area returns the total surface area.
func (s *Solid) Area() float64 {
	var area float64
	for _, t := range s.Triangles() {
		area += r3.Norm(r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))) / 2
	}
	return area
}

// OrientOutward flips s when its signed volume is negative.
func (s *Solid) OrientOutward() *Solid {
	if s.SignedVolume() < 0 {
		return s.FlipFaces()
	}
	return s.Clone()
}

// Bounds returns the bounding box of the referenced vertices.
func (s *Solid) Bounds() (min, max r3.Vec) {
	return Bounds(s.Vertices)
}

// Topology counts boundary, non-manifold and inconsistently wound edges.
func (s *Solid) Topology() Topology {
	type use struct{ fwd, rev int }
	edges := make(map[[2]int]*use)
	for _, f := range s.Faces {
		for k := range f {
			a, b := f[k], f[(k+1)%len(f)]
			if a == b {
				continue
			}
			key, fwd := [2]int{a, b}, true
			if a > b {
				key, fwd = [2]int{b, a}, false
			}
			u := edges[key]
			if u == nil {
				u = &use{}
				edges[key] = u
			}
			if fwd {
				u.fwd++
			} else {
				u.rev++
			}
		}
	}
	t := Topology{Edges: len(edges)}
	for _, u := range edges {
		switch n := u.fwd + u.rev; {
		case n == 1:
			t.BoundaryEdges++
		case n > 2:
			t.NonManifoldEdges++
		case u.fwd != 1:
			t.InconsistentEdges++
		}
	}
	return t
}

// Clean welds vertices closer than tol, drops faces that collapse to
// fewer than three distinct corners, and removes unreferenced vertices.
// A tol <= 0 uses WeldTolerance.
func (s *Solid) Clean(tol float64) *Solid {
	if tol <= 0 {
		tol = WeldTolerance
	}
	inv := 1 / tol
	cache := make(map[[3]int64]int, len(s.Vertices))
	remap := make([]int, len(s.Vertices))
	var welded []r3.Vec
	for i, v := range s.Vertices {
		key := [3]int64{
			int64(math.Round(v.X * inv)),
			int64(math.Round(v.Y * inv)),
			int64(math.Round(v.Z * inv)),
		}
		idx, ok := cache[key]
		if !ok {
			idx = len(welded)
			cache[key] = idx
			welded = append(welded, v)
		}
		remap[i] = idx
	}

	used := make([]int, len(welded))
	for i := range used {
		used[i] = -1
	}
	out := &Solid{}
	for _, f := range s.Faces {
		loop := make([]int, 0, len(f))
		for _, idx := range f {
			w := remap[idx]
			if len(loop) > 0 && loop[len(loop)-1] == w {
				continue
			}
			loop = append(loop, w)
		}
		for len(loop) > 1 && loop[0] == loop[len(loop)-1] {
			loop = loop[:len(loop)-1]
		}
		if len(loop) < 3 || hasRepeat(loop) {
			continue
		}
		for k, w := range loop {
			if used[w] < 0 {
				used[w] = len(out.Vertices)
				out.Vertices = append(out.Vertices, welded[w])
			}
			loop[k] = used[w]
		}
		out.Faces = append(out.Faces, loop)
	}
	return out
}

func hasRepeat(loop []int) bool {
	seen := make(map[int]struct{}, len(loop))
	for _, v := range loop {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}

// Subdivide splits every triangle into four using shared edge midpoints,
// so a watertight input stays watertight. Polygons are triangulated first.
func (s *Solid) Subdivide() *Solid {
	tri := s.Triangulate()
	out := &Solid{Vertices: append([]r3.Vec(nil), tri.Vertices...)}
	mids := make(map[[2]int]int)
	mid := func(a, b int) int {
		key := [2]int{a, b}
		if a > b {
			key = [2]int{b, a}
		}
		if idx, ok := mids[key]; ok {
			return idx
		}
		idx := len(out.Vertices)
		out.Vertices = append(out.Vertices, r3.Scale(0.5, r3.Add(tri.Vertices[a], tri.Vertices[b])))
		mids[key] = idx
		return idx
	}
	for _, f := range tri.Faces {
		a, b, c := f[0], f[1], f[2]
		ab, bc, ca := mid(a, b), mid(b, c), mid(c, a)
		out.Faces = append(out.Faces,
			[]int{a, ab, ca},
			[]int{ab, b, bc},
			[]int{ca, bc, c},
			[]int{ab, bc, ca},
		)
	}
	return out
}
