// Package airfoil generates unit-chord airfoil sections from 4-digit style
// parameters: maximum camber, camber position, thickness, and an optional
// cubic reflex term.
package airfoil

import (
	"fmt"
	"math"

	"github.com/chazu/wigmesh/pkg/geom"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinPoints is the smallest chordwise resolution Generate accepts.
const MinPoints = 3

// Params are the shape parameters of a section, all as fractions of chord.
type Params struct {
	Camber    float64 `json:"camber"`     // m, maximum camber
	CamberPos float64 `json:"camber_pos"` // p, chordwise position of maximum camber in [0, 1]; 0 disables camber
	Thickness float64 `json:"thickness"`  // t, maximum thickness
	Reflex    float64 `json:"reflex"`     // r, cubic reflex coefficient; 0 disables
}

// Validate reports parameters no section can be built from.
func (p Params) Validate() error {
	if p.CamberPos < 0 || p.CamberPos > 1 {
		return fmt.Errorf("airfoil: camber position %v outside [0, 1]: %w", p.CamberPos, geom.ErrInputContract)
	}
	if p.Thickness < 0 {
		return fmt.Errorf("airfoil: thickness %v is negative: %w", p.Thickness, geom.ErrInputContract)
	}
	return nil
}

// Symmetric reports whether the section has no camber line at all.
func (p Params) Symmetric() bool {
	return !(p.Camber > 0 && p.CamberPos > 0) && p.Reflex == 0
}

// CosineSpacing returns n chordwise stations on [0, 1] clustered toward
// both edges.
func CosineSpacing(n int) []float64 {
	theta := floats.Span(make([]float64, n), 0, math.Pi)
	xs := make([]float64, n)
	for i, th := range theta {
		xs[i] = 0.5 * (1 - math.Cos(th))
	}
	xs[0], xs[n-1] = 0, 1
	return xs
}

// thickness is the half-thickness distribution of the 4-digit series.
func thickness(t, x float64) float64 {
	return 5 * t * (0.2969*math.Sqrt(x) - 0.1260*x - 0.3516*x*x + 0.2843*x*x*x - 0.1015*x*x*x*x)
}

// camberLine returns the camber ordinate and slope at x.
func camberLine(p Params, x float64) (yc, dyc float64) {
	m, pos := p.Camber, p.CamberPos
	if m > 0 && pos > 0 {
		if x <= pos {
			yc = m / (pos * pos) * (2*pos*x - x*x)
			dyc = 2 * m / (pos * pos) * (pos - x)
		} else {
			q := (1 - pos) * (1 - pos)
			yc = m / q * ((1 - 2*pos) + 2*pos*x - x*x)
			dyc = 2 * m / q * (pos - x)
		}
	}
	if p.Reflex != 0 {
		yc += 4 * p.Reflex * (x*x*x - x*x)
		dyc += 4 * p.Reflex * (3*x*x - 2*x)
	}
	return yc, dyc
}

// Camber returns the camber line sampled at n cosine-spaced stations as
// (x, 0, z) points.
func Camber(p Params, n int) ([]r3.Vec, error) {
	if err := check(p, n); err != nil {
		return nil, err
	}
	xs := CosineSpacing(n)
	out := make([]r3.Vec, n)
	for i, x := range xs {
		yc, _ := camberLine(p, x)
		out[i] = r3.Vec{X: x, Z: yc}
	}
	return out, nil
}

// Generate returns the closed section loop for p at chordwise resolution
// n. The loop runs from the trailing edge over the upper surface to the
// leading edge and back along the lower surface, 2n-1 points in all, with
// the first and last point identical. Points lie in the y=0 plane with
// unit chord from x=0 to x=1.
//
// A zero thickness yields a flat loop along the camber line.
func Generate(p Params, n int) ([]r3.Vec, error) {
	if err := check(p, n); err != nil {
		return nil, err
	}

	xs := CosineSpacing(n)
	upper := make([]r3.Vec, n)
	lower := make([]r3.Vec, n)
	for i, x := range xs {
		yt := thickness(p.Thickness, x)
		if i == n-1 {
			yt = 0
		}
		yc, dyc := camberLine(p, x)
		theta := math.Atan(dyc)
		s, c := math.Sincos(theta)
		upper[i] = r3.Vec{X: x - yt*s, Z: yc + yt*c}
		lower[i] = r3.Vec{X: x + yt*s, Z: yc - yt*c}
	}

	loop := make([]r3.Vec, 0, 2*n-1)
	for i := n - 1; i >= 0; i-- {
		loop = append(loop, upper[i])
	}
	loop = append(loop, lower[1:]...)

	te := r3.Scale(0.5, r3.Add(loop[0], loop[len(loop)-1]))
	loop[0] = te
	loop[len(loop)-1] = te
	return loop, nil
}

func check(p Params, n int) error {
	if n < MinPoints {
		return fmt.Errorf("airfoil: resolution %d < %d: %w", n, MinPoints, geom.ErrInputContract)
	}
	return p.Validate()
}

// Surfaces splits a loop from Generate back into its upper and lower
// surfaces, both ordered leading edge to trailing edge.
func Surfaces(loop []r3.Vec) (upper, lower []r3.Vec) {
	n := (len(loop) + 1) / 2
	upper = make([]r3.Vec, n)
	for i := 0; i < n; i++ {
		upper[i] = loop[n-1-i]
	}
	lower = append([]r3.Vec(nil), loop[n-1:]...)
	return upper, lower
}
