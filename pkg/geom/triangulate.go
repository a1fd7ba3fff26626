package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangulate returns a copy of s with every face split into triangles.
// Quads are split along their first diagonal; larger polygons (caps) are
// ear-clipped in their best-fit plane. Output triangles keep the winding
// of the face they came from.
func (s *Solid) Triangulate() *Solid {
	out := &Solid{Vertices: append([]r3.Vec(nil), s.Vertices...)}
	for _, f := range s.Faces {
		switch {
		case len(f) < 3:
			continue
		case len(f) == 3:
			out.Faces = append(out.Faces, []int{f[0], f[1], f[2]})
		case len(f) == 4:
			out.Faces = append(out.Faces,
				[]int{f[0], f[1], f[2]},
				[]int{f[0], f[2], f[3]},
			)
		default:
			for _, t := range earClip(s.Vertices, f) {
				out.Faces = append(out.Faces, []int{t[0], t[1], t[2]})
			}
		}
	}
	return out
}

// newellNormal returns the (unnormalised) Newell normal of a polygon.
func newellNormal(verts []r3.Vec, loop []int) r3.Vec {
	var n r3.Vec
	for k := range loop {
		a, b := verts[loop[k]], verts[loop[(k+1)%len(loop)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// earClip triangulates a simple polygon given as an index loop. Degenerate
// (zero-area) polygons fall back to a fan.
func earClip(verts []r3.Vec, loop []int) [][3]int {
	n := newellNormal(verts, loop)
	if r3.Norm(n) < 1e-14 {
		return fan(loop)
	}
	n = r3.Unit(n)

	// Orthonormal basis (u, v) of the polygon plane with u x v = n, so the
	// projected loop is counter-clockwise.
	ref := XAxis
	if math.Abs(n.X) > 0.9 {
		ref = YAxis
	}
	u := r3.Unit(r3.Cross(ref, n))
	v := r3.Cross(n, u)

	type pt struct{ x, y float64 }
	p := make(map[int]pt, len(loop))
	for _, idx := range loop {
		q := verts[idx]
		p[idx] = pt{r3.Dot(q, u), r3.Dot(q, v)}
	}
	cross := func(a, b, c int) float64 {
		pa, pb, pc := p[a], p[b], p[c]
		return (pb.x-pa.x)*(pc.y-pa.y) - (pb.y-pa.y)*(pc.x-pa.x)
	}
	inside := func(q, a, b, c int) bool {
		return cross(a, b, q) >= 0 && cross(b, c, q) >= 0 && cross(c, a, q) >= 0
	}

	rem := append([]int(nil), loop...)
	tris := make([][3]int, 0, len(loop)-2)
	for len(rem) > 3 {
		pick, convex, convexCross := -1, -1, 0.0
		for k := range rem {
			a, b, c := rem[(k+len(rem)-1)%len(rem)], rem[k], rem[(k+1)%len(rem)]
			cr := cross(a, b, c)
			if cr <= 0 {
				continue
			}
			if cr > convexCross {
				convex, convexCross = k, cr
			}
			ear := true
			for _, q := range rem {
				if q == a || q == b || q == c || p[q] == p[a] || p[q] == p[b] || p[q] == p[c] {
					continue
				}
				if inside(q, a, b, c) {
					ear = false
					break
				}
			}
			if ear {
				pick = k
				break
			}
		}
		if pick < 0 {
			pick = convex
		}
		if pick < 0 {
			// Only reflex or collinear corners left; finish with a fan.
			return append(tris, fan(rem)...)
		}
		a, b, c := rem[(pick+len(rem)-1)%len(rem)], rem[pick], rem[(pick+1)%len(rem)]
		tris = append(tris, [3]int{a, b, c})
		rem = append(rem[:pick], rem[pick+1:]...)
	}
	tris = append(tris, [3]int{rem[0], rem[1], rem[2]})
	return tris
}

func fan(loop []int) [][3]int {
	tris := make([][3]int, 0, len(loop)-2)
	for k := 1; k+1 < len(loop); k++ {
		tris = append(tris, [3]int{loop[0], loop[k], loop[k+1]})
	}
	return tris
}
