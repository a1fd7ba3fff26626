// Package mirror reflects parts across the y=0 symmetry plane and keeps
// their winding outward.
package mirror

import (
	"github.com/chazu/wigmesh/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Reflect negates the y coordinate of p.
func Reflect(p r3.Vec) r3.Vec {
	return r3.Vec{X: p.X, Y: -p.Y, Z: p.Z}
}

// Grid returns g reflected when mirrored, with its chordwise index
// reversed to restore the outward side, and then flipped once more when
// flip is set. Both steps are involutions and g is never modified.
func Grid(g *geom.Grid, mirrored, flip bool) *geom.Grid {
	out := g.Clone()
	if mirrored {
		out = out.Map(Reflect).ReverseRows()
	}
	if flip {
		out = out.ReverseRows()
	}
	return out
}

// Solid returns s reflected when mirrored, with every face reversed so the
// mesh is not inside out, and then flipped once more when flip is set.
func Solid(s *geom.Solid, mirrored, flip bool) *geom.Solid {
	out := s.Clone()
	if mirrored {
		out = out.MapVertices(Reflect).FlipFaces()
	}
	if flip {
		out = out.FlipFaces()
	}
	return out
}
