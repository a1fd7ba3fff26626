package sdfx

import (
	"math"

	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// feature is the part of a triangle a closest point falls on.
type feature int

const (
	featV0 feature = iota
	featV1
	featV2
	featE01
	featE12
	featE20
	featFace
)

// meshSDF is the signed distance field of a closed triangle mesh. Faces
// live in a k-d tree keyed on their centroids; the sign comes from the
// angle-weighted pseudo-normal of the nearest feature. Distances are
// negative inside. Evaluate does not mutate m and is safe to call
// concurrently.
type meshSDF struct {
	verts   []r3.Vec
	tris    [][3]int
	normals []r3.Vec // unit face normals
	vertN   []r3.Vec
	edgeN   map[[2]int]r3.Vec
	// reach is the largest centroid-to-vertex distance of any face.
	reach    float64
	tree     *kdtree.Tree
	min, max r3.Vec // padded bounds
}

// Compile-time interface check.
var _ sdf.SDF3 = (*meshSDF)(nil)

// newMeshSDF indexes the triangulated faces of s. Degenerate faces are
// skipped.
func newMeshSDF(s *geom.Solid) *meshSDF {
	tri := s.Triangulate()
	m := &meshSDF{verts: tri.Vertices, vertN: make([]r3.Vec, len(tri.Vertices)), edgeN: make(map[[2]int]r3.Vec)}

	var faces faceList
	for _, f := range tri.Faces {
		t := [3]int{f[0], f[1], f[2]}
		a, b, c := m.verts[t[0]], m.verts[t[1]], m.verts[t[2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		if r3.Norm(n) < 1e-15 {
			continue
		}
		n = r3.Unit(n)
		idx := len(m.tris)
		m.tris = append(m.tris, t)
		m.normals = append(m.normals, n)

		for j := 0; j < 3; j++ {
			v := m.verts[t[j]]
			e1, e2 := r3.Sub(m.verts[t[(j+1)%3]], v), r3.Sub(m.verts[t[(j+2)%3]], v)
			angle := math.Acos(math.Max(-1, math.Min(1, r3.Cos(e1, e2))))
			m.vertN[t[j]] = r3.Add(m.vertN[t[j]], r3.Scale(angle, n))

			e := edgeKey(t[j], t[(j+1)%3])
			m.edgeN[e] = r3.Add(m.edgeN[e], n)
		}

		centroid := r3.Scale(1.0/3, r3.Add(r3.Add(a, b), c))
		for _, v := range []r3.Vec{a, b, c} {
			m.reach = math.Max(m.reach, r3.Norm(r3.Sub(v, centroid)))
		}
		faces = append(faces, face{c: centroid, idx: idx})
	}
	m.tree = kdtree.New(faces, false)

	lo, hi := tri.Bounds()
	size := r3.Sub(hi, lo)
	pad := 0.02 * math.Max(size.X, math.Max(size.Y, size.Z))
	if pad == 0 {
		pad = 1e-3
	}
	m.min = r3.Sub(lo, r3.Vec{X: pad, Y: pad, Z: pad})
	m.max = r3.Add(hi, r3.Vec{X: pad, Y: pad, Z: pad})
	return m
}

func edgeKey(i, j int) [2]int {
	if i > j {
		i, j = j, i
	}
	return [2]int{i, j}
}

// BoundingBox returns the padded bounds of the mesh.
func (m *meshSDF) BoundingBox() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: m.min.X, Y: m.min.Y, Z: m.min.Z},
		Max: v3.Vec{X: m.max.X, Y: m.max.Y, Z: m.max.Z},
	}
}

// Evaluate returns the signed distance from v to the mesh.
func (m *meshSDF) Evaluate(v v3.Vec) float64 {
	p := r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
	got, d2 := m.tree.Nearest(query{p: p, m: m})
	if got == nil {
		return r3.Norm(r3.Sub(p, r3.Scale(0.5, r3.Add(m.min, m.max))))
	}
	idx := got.(face).idx
	closest, feat := m.closest(p, idx)

	t := m.tris[idx]
	var n r3.Vec
	switch feat {
	case featV0, featV1, featV2:
		n = m.vertN[t[feat]]
	case featE01:
		n = m.edgeN[edgeKey(t[0], t[1])]
	case featE12:
		n = m.edgeN[edgeKey(t[1], t[2])]
	case featE20:
		n = m.edgeN[edgeKey(t[2], t[0])]
	default:
		n = m.normals[idx]
	}
	return math.Copysign(math.Sqrt(d2), r3.Dot(n, r3.Sub(p, closest)))
}

func (m *meshSDF) closest(p r3.Vec, idx int) (r3.Vec, feature) {
	t := m.tris[idx]
	return closestPoint(p, m.verts[t[0]], m.verts[t[1]], m.verts[t[2]])
}

// face is a k-d tree entry: one mesh triangle keyed on its centroid.
type face struct {
	c   r3.Vec
	idx int
}

func (f face) Compare(o kdtree.Comparable, d kdtree.Dim) float64 {
	return axis(f.c, d) - axis(o.(face).c, d)
}

func (face) Dims() int { return 3 }

func (f face) Distance(o kdtree.Comparable) float64 {
	if q, ok := o.(query); ok {
		return q.Distance(f)
	}
	return r3.Norm2(r3.Sub(f.c, o.(face).c))
}

// query is a point searched against the face tree. Compare shrinks the
// split distance by the mesh reach, since a face whose centroid lies past
// the split plane can still extend back across it by that much. This keeps
// the tree pruning exact.
type query struct {
	p r3.Vec
	m *meshSDF
}

func (q query) Compare(o kdtree.Comparable, d kdtree.Dim) float64 {
	diff := axis(q.p, d) - axis(o.(face).c, d)
	switch {
	case diff > q.m.reach:
		return diff - q.m.reach
	case diff < -q.m.reach:
		return diff + q.m.reach
	}
	return 0
}

func (query) Dims() int { return 3 }

// Distance returns the squared distance from the query point to a face.
func (q query) Distance(o kdtree.Comparable) float64 {
	closest, _ := q.m.closest(q.p, o.(face).idx)
	return r3.Norm2(r3.Sub(q.p, closest))
}

func axis(v r3.Vec, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

// faceList is the kdtree.Interface over mesh faces.
type faceList []face

func (l faceList) Index(i int) kdtree.Comparable { return l[i] }
func (l faceList) Len() int                      { return len(l) }
func (l faceList) Slice(start, end int) kdtree.Interface {
	return l[start:end]
}

func (l faceList) Pivot(d kdtree.Dim) int {
	p := facePlane{faceList: l, dim: d}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// facePlane sorts faces along one axis.
type facePlane struct {
	faceList
	dim kdtree.Dim
}

func (p facePlane) Less(i, j int) bool {
	return p.faceList[i].Compare(p.faceList[j], p.dim) < 0
}

func (p facePlane) Swap(i, j int) {
	p.faceList[i], p.faceList[j] = p.faceList[j], p.faceList[i]
}

func (p facePlane) Slice(start, end int) kdtree.SortSlicer {
	return facePlane{faceList: p.faceList[start:end], dim: p.dim}
}

// closestPoint returns the point of triangle abc nearest p and the
// feature it lies on, by the Voronoi region tests of Ericson, Real-Time
// Collision Detection 5.1.5.
func closestPoint(p, a, b, c r3.Vec) (r3.Vec, feature) {
	ab, ac, ap := r3.Sub(b, a), r3.Sub(c, a), r3.Sub(p, a)
	d1, d2 := r3.Dot(ab, ap), r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a, featV0
	}
	bp := r3.Sub(p, b)
	d3, d4 := r3.Dot(ab, bp), r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b, featV1
	}
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return r3.Add(a, r3.Scale(d1/(d1-d3), ab)), featE01
	}
	cp := r3.Sub(p, c)
	d5, d6 := r3.Dot(ab, cp), r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c, featV2
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return r3.Add(a, r3.Scale(d2/(d2-d6), ac)), featE20
	}
	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b))), featE12
	}
	denom := 1 / (va + vb + vc)
	return r3.Add(a, r3.Add(r3.Scale(vb*denom, ab), r3.Scale(vc*denom, ac))), featFace
}
