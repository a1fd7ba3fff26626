// Package geom defines the transient geometry produced by the meshing
// pipeline: structured point grids, polygon solids, and the resolution
// settings that size them. Every operation returns freshly allocated
// geometry; nothing in this package mutates a value a caller still holds.
package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Error kinds shared by the pipeline stages.
var (
	// ErrInputContract reports input the caller must never pass, such as a
	// surface with fewer than two stations or a non-positive resolution.
	ErrInputContract = errors.New("input contract violation")

	// ErrDegenerate marks geometry that is valid but collapsed (zero
	// thickness, zero-length profile). It is informational only.
	ErrDegenerate = errors.New("degenerate geometry")
)

// Axes of the vehicle frame: x aft, y spanwise (starboard), z up.
var (
	XAxis = r3.Vec{X: 1}
	YAxis = r3.Vec{Y: 1}
	ZAxis = r3.Vec{Z: 1}
)

// Resolution sizes the generated grids.
type Resolution struct {
	ChordRes          int `json:"chord_res" mapstructure:"chord_res"`
	SpanRes           int `json:"span_res" mapstructure:"span_res"`
	FuselageLongRes   int `json:"fuselage_long_res" mapstructure:"fuselage_long_res"`
	FuselageRadialRes int `json:"fuselage_radial_res" mapstructure:"fuselage_radial_res"`
}

// DefaultResolution returns the resolution used when none is configured.
func DefaultResolution() Resolution {
	return Resolution{
		ChordRes:          30,
		SpanRes:           15,
		FuselageLongRes:   50,
		FuselageRadialRes: 36,
	}
}

// Validate rejects resolutions below the minimum each grid needs.
func (r Resolution) Validate() error {
	switch {
	case r.ChordRes < 3:
		return fmt.Errorf("geom: chord_res %d < 3: %w", r.ChordRes, ErrInputContract)
	case r.SpanRes < 2:
		return fmt.Errorf("geom: span_res %d < 2: %w", r.SpanRes, ErrInputContract)
	case r.FuselageLongRes < 2:
		return fmt.Errorf("geom: fuselage_long_res %d < 2: %w", r.FuselageLongRes, ErrInputContract)
	case r.FuselageRadialRes < 3:
		return fmt.Errorf("geom: fuselage_radial_res %d < 3: %w", r.FuselageRadialRes, ErrInputContract)
	}
	return nil
}

// Rotate rotates v by deg degrees about axis through the origin using the
// right-hand rule.
func Rotate(v r3.Vec, deg float64, axis r3.Vec) r3.Vec {
	if deg == 0 {
		return v
	}
	return r3.NewRotation(deg*math.Pi/180, axis).Rotate(v)
}

// RotatePoints returns a rotated copy of points.
func RotatePoints(points []r3.Vec, deg float64, axis r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(points))
	if deg == 0 {
		copy(out, points)
		return out
	}
	rot := r3.NewRotation(deg*math.Pi/180, axis)
	for i, p := range points {
		out[i] = rot.Rotate(p)
	}
	return out
}

// Mean returns the centroid of points, or the zero vector for none.
func Mean(points []r3.Vec) r3.Vec {
	if len(points) == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	for _, p := range points {
		sum = r3.Add(sum, p)
	}
	return r3.Scale(1/float64(len(points)), sum)
}

// EqualWithin reports whether a and b agree component-wise within tol.
func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// Bounds returns the axis-aligned bounding box of points.
func Bounds(points []r3.Vec) (min, max r3.Vec) {
	if len(points) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		min = r3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = r3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return min, max
}
