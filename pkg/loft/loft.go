// Package loft places airfoil sections at their wing stations and lofts
// consecutive stations into a structured surface grid.
package loft

import (
	"fmt"

	"github.com/chazu/wigmesh/pkg/airfoil"
	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/chazu/wigmesh/pkg/vehicle"
	"gonum.org/v1/gonum/spatial/r3"
)

// PlaceStation positions a unit-chord section loop at st: scale by chord,
// rotate about the leading edge by twist degrees around +y, then
// translate to (X, Y, Z). Positive twist drops the trailing edge and
// raises the nose. The returned loop is a new slice.
func PlaceStation(loop []r3.Vec, st vehicle.WingStation) []r3.Vec {
	out := make([]r3.Vec, len(loop))
	for i, p := range loop {
		p = r3.Scale(st.Chord, p)
		p = geom.Rotate(p, st.Twist, geom.YAxis)
		out[i] = r3.Add(p, r3.Vec{X: st.X, Y: st.Y, Z: st.Z})
	}
	return out
}

// Section generates and places the section loop of st.
func Section(st vehicle.WingStation, chordRes int) ([]r3.Vec, error) {
	loop, err := airfoil.Generate(st.Airfoil, chordRes)
	if err != nil {
		return nil, err
	}
	return PlaceStation(loop, st), nil
}

// Interpolate returns the loop a fraction t of the way from a to b. The
// end fractions return exact copies of a and b.
func Interpolate(a, b []r3.Vec, t float64) []r3.Vec {
	out := make([]r3.Vec, len(a))
	switch t {
	case 0:
		copy(out, a)
		return out
	case 1:
		copy(out, b)
		return out
	}
	for i := range a {
		out[i] = r3.Add(a[i], r3.Scale(t, r3.Sub(b[i], a[i])))
	}
	return out
}

// Orient applies o to g as three sequential rotations about the fixed
// world axes through the origin: roll about x, then pitch about y, then
// yaw about z.
func Orient(g *geom.Grid, o vehicle.Orientation) *geom.Grid {
	return g.Rotate(o.Roll, geom.XAxis).
		Rotate(o.Pitch, geom.YAxis).
		Rotate(o.Yaw, geom.ZAxis)
}

// Surface lofts s into an open grid of (2*ChordRes-1) rows by
// SpanRes + (stations-2)*(SpanRes-1) columns. Each station pair is joined
// by SpanRes straight-line slices; the first slice of every segment after
// the first is shared with the previous segment and dropped. The grid is
// then oriented and translated by the surface's position.
func Surface(s *vehicle.LiftingSurface, res geom.Resolution) (*geom.Grid, error) {
	if len(s.Stations) < vehicle.MinStations {
		return nil, fmt.Errorf("loft: surface %q has %d stations, need %d: %w",
			s.Name, len(s.Stations), vehicle.MinStations, geom.ErrInputContract)
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}

	sections := make([][]r3.Vec, len(s.Stations))
	for i, st := range s.Stations {
		sec, err := Section(st, res.ChordRes)
		if err != nil {
			return nil, fmt.Errorf("loft: surface %q station %d: %w", s.Name, i, err)
		}
		sections[i] = sec
	}

	nseg := len(sections) - 1
	slices := make([][]r3.Vec, 0, res.SpanRes+(nseg-1)*(res.SpanRes-1))
	for seg := 0; seg < nseg; seg++ {
		first := 0
		if seg > 0 {
			first = 1
		}
		for k := first; k < res.SpanRes; k++ {
			t := float64(k) / float64(res.SpanRes-1)
			slices = append(slices, Interpolate(sections[seg], sections[seg+1], t))
		}
	}

	g, err := geom.GridFromSlices(slices)
	if err != nil {
		return nil, fmt.Errorf("loft: surface %q: %w", s.Name, err)
	}
	return Orient(g, s.Orientation).Translate(s.Position), nil
}
