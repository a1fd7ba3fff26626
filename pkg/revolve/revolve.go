// Package revolve sweeps a fuselage profile around the x axis into a
// structured grid of rings.
package revolve

import (
	"fmt"
	"math"

	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/chazu/wigmesh/pkg/vehicle"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r3"
)

// Resample interpolates profile linearly onto n uniformly spaced x
// samples spanning the profile. Points sharing an x keep the last one.
// A profile with a single distinct x yields n copies of that point.
func Resample(profile []vehicle.ProfilePoint, n int) ([]vehicle.ProfilePoint, error) {
	if len(profile) == 0 {
		return nil, fmt.Errorf("revolve: empty profile: %w", geom.ErrInputContract)
	}
	if n < 2 {
		return nil, fmt.Errorf("revolve: %d longitudinal samples < 2: %w", n, geom.ErrInputContract)
	}

	xs, rs := dedupe(profile)
	out := make([]vehicle.ProfilePoint, n)
	if len(xs) == 1 {
		for i := range out {
			out[i] = vehicle.ProfilePoint{X: xs[0], Radius: rs[0]}
		}
		return out, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, rs); err != nil {
		return nil, fmt.Errorf("revolve: fit profile: %w", err)
	}
	samples := floats.Span(make([]float64, n), xs[0], xs[len(xs)-1])
	for i, x := range samples {
		out[i] = vehicle.ProfilePoint{X: x, Radius: pl.Predict(x)}
	}
	// Keep the profile's own end radii rather than the fit's.
	out[0].Radius = rs[0]
	out[n-1].Radius = rs[len(rs)-1]
	return out, nil
}

func dedupe(profile []vehicle.ProfilePoint) (xs, rs []float64) {
	for _, p := range profile {
		if k := len(xs); k > 0 && p.X == xs[k-1] {
			rs[k-1] = p.Radius
			continue
		}
		xs = append(xs, p.X)
		rs = append(rs, p.Radius)
	}
	return xs, rs
}

// Degenerate reports whether profile collapses to zero length.
func Degenerate(profile []vehicle.ProfilePoint) bool {
	if len(profile) == 0 {
		return true
	}
	return profile[len(profile)-1].X-profile[0].X == 0
}

// Ring returns n points sweeping a full turn of radius r around the x
// axis at x, with y = r cos θ and z = r sin θ. The last point repeats the
// first exactly so the ring closes.
func Ring(x, r float64, n int) []r3.Vec {
	theta := floats.Span(make([]float64, n), 0, 2*math.Pi)
	ring := make([]r3.Vec, n)
	for i, th := range theta {
		s, c := math.Sincos(th)
		ring[i] = r3.Vec{X: x, Y: r * c, Z: r * s}
	}
	ring[n-1] = ring[0]
	return ring
}

// Fuselage revolves f into a grid of FuselageRadialRes rows by
// FuselageLongRes columns, translated by the fuselage position. Unsorted
// profiles are rejected; a zero-length profile produces a valid grid whose
// rings all coincide.
func Fuselage(f *vehicle.Fuselage, res geom.Resolution) (*geom.Grid, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	for i := 1; i < len(f.Profile); i++ {
		if f.Profile[i].X < f.Profile[i-1].X {
			return nil, fmt.Errorf("revolve: fuselage %q profile not sorted at point %d: %w", f.Name, i, geom.ErrInputContract)
		}
	}
	samples, err := Resample(f.Profile, res.FuselageLongRes)
	if err != nil {
		return nil, fmt.Errorf("revolve: fuselage %q: %w", f.Name, err)
	}

	rings := make([][]r3.Vec, len(samples))
	for j, s := range samples {
		rings[j] = Ring(s.X, s.Radius, res.FuselageRadialRes)
	}
	g, err := geom.GridFromSlices(rings)
	if err != nil {
		return nil, fmt.Errorf("revolve: fuselage %q: %w", f.Name, err)
	}
	return g.Translate(f.Position), nil
}
