// Package solidify closes structured grids into solids: it caps the end
// rings that need it, triangulates, welds seams and orients the result
// outward.
package solidify

import (
	"fmt"
	"math"

	"github.com/chazu/wigmesh/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// PlaneTol is how close to y=0 a root ring's mean must be for the
	// ring to count as lying on the symmetry plane.
	PlaneTol = 1e-3

	// RadiusTol is the ring radius below which an end is a point and
	// needs no cap.
	RadiusTol = 1e-6
)

// Report records which ends of a grid were capped.
type Report struct {
	RootCapped  bool
	TipCapped   bool
	RootOnPlane bool
}

// Caps returns the number of caps added.
func (r Report) Caps() int {
	n := 0
	if r.RootCapped {
		n++
	}
	if r.TipCapped {
		n++
	}
	return n
}

// distinct drops the closing point of a ring that repeats its first.
func distinct(ring []r3.Vec) []r3.Vec {
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		return ring[:n-1]
	}
	return ring
}

// OnSymmetryPlane reports whether the mean y of ring is within PlaneTol
// of zero. Individual points may stray, as on a rolled root.
func OnSymmetryPlane(ring []r3.Vec) bool {
	return math.Abs(geom.Mean(distinct(ring)).Y) < PlaneTol
}

// flat reports whether every point of ring is within PlaneTol of y=0.
func flat(ring []r3.Vec) bool {
	for _, p := range ring {
		if math.Abs(p.Y) > PlaneTol {
			return false
		}
	}
	return true
}

// RingRadius returns the largest distance of a ring point from the ring
// centroid.
func RingRadius(ring []r3.Vec) float64 {
	ring = distinct(ring)
	c := geom.Mean(ring)
	var r float64
	for _, p := range ring {
		r = math.Max(r, r3.Norm(r3.Sub(p, c)))
	}
	return r
}

// Cap returns the face loop closing column j of g, in ring order or
// reversed when flip is set. A closing point that repeats the first is
// left out.
func Cap(g *geom.Grid, j int, flip bool) []int {
	n := g.Rows
	if n > 1 && g.At(0, j) == g.At(n-1, j) {
		n--
	}
	loop := make([]int, n)
	for i := 0; i < n; i++ {
		k := i
		if flip {
			k = n - 1 - i
		}
		loop[i] = g.Index(k, j)
	}
	return loop
}

func checkGrid(g *geom.Grid) error {
	if g == nil || g.Rows < 3 || g.Cols < 2 {
		return fmt.Errorf("solidify: grid too small to close: %w", geom.ErrInputContract)
	}
	return nil
}

// Surface closes a lofted surface grid. A root ring on the symmetry plane
// is left open for the mirrored half to meet; when the ring also lies flat
// in the plane its points are snapped onto y=0 so the halves weld. Any
// other root and the tip are capped.
func Surface(g *geom.Grid) (*geom.Solid, Report, error) {
	if err := checkGrid(g); err != nil {
		return nil, Report{}, err
	}
	var rep Report
	work := g
	root := g.Slice(0)
	switch {
	case !OnSymmetryPlane(root):
		rep.RootCapped = true
	case flat(root):
		rep.RootOnPlane = true
		work = snapRoot(g)
	default:
		rep.RootOnPlane = true
	}
	rep.TipCapped = true
	return closeGrid(work, rep), rep, nil
}

// Capped closes a surface grid with caps on both ends, wherever the root
// lies. Surfaces without a mirrored twin use it.
func Capped(g *geom.Grid) (*geom.Solid, Report, error) {
	if err := checkGrid(g); err != nil {
		return nil, Report{}, err
	}
	rep := Report{
		RootCapped:  true,
		TipCapped:   true,
		RootOnPlane: OnSymmetryPlane(g.Slice(0)),
	}
	return closeGrid(g, rep), rep, nil
}

// Fuselage closes a revolved grid, capping only ends whose ring radius
// exceeds RadiusTol.
func Fuselage(g *geom.Grid) (*geom.Solid, Report, error) {
	if err := checkGrid(g); err != nil {
		return nil, Report{}, err
	}
	rep := Report{
		RootCapped: RingRadius(g.Slice(0)) > RadiusTol,
		TipCapped:  RingRadius(g.Slice(g.Cols-1)) > RadiusTol,
	}
	return closeGrid(g, rep), rep, nil
}

func snapRoot(g *geom.Grid) *geom.Grid {
	c := g.Clone()
	for i := 0; i < c.Rows; i++ {
		p := c.At(i, 0)
		p.Y = 0
		c.Set(i, 0, p)
	}
	return c
}

// closeGrid adds the caps named by rep to the strip surface of g, then
// triangulates, welds and orients the result. Root caps run against the
// ring order and tip caps with it, matching the winding of the adjacent
// strip faces.
func closeGrid(g *geom.Grid, rep Report) *geom.Solid {
	s := g.Surface()
	if rep.RootCapped {
		s.AddFace(Cap(g, 0, true))
	}
	if rep.TipCapped {
		s.AddFace(Cap(g, g.Cols-1, false))
	}
	return s.Triangulate().Clean(geom.WeldTolerance).OrientOutward()
}
