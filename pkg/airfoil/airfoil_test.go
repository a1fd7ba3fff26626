package airfoil

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/chazu/wigmesh/pkg/geom"
)

func TestGenerateClosedLoop(t *testing.T) {
	cases := []Params{
		{Thickness: 0.12},
		{Camber: 0.02, CamberPos: 0.4, Thickness: 0.12},
		{Camber: 0.04, CamberPos: 0.3, Thickness: 0.15, Reflex: 0.01},
		{Thickness: 0},
		{Reflex: -0.02, Thickness: 0.09},
	}
	for _, p := range cases {
		for _, n := range []int{3, 10, 30} {
			loop, err := Generate(p, n)
			if err != nil {
				t.Fatalf("Generate(%+v, %d): %v", p, n, err)
			}
			if len(loop) != 2*n-1 {
				t.Fatalf("Generate(%+v, %d) returned %d points, want %d", p, n, len(loop), 2*n-1)
			}
			if loop[0] != loop[len(loop)-1] {
				t.Errorf("Generate(%+v, %d): loop not closed: %v != %v", p, n, loop[0], loop[len(loop)-1])
			}
			for _, v := range loop {
				if v.Y != 0 {
					t.Fatalf("point %v left the y=0 plane", v)
				}
			}
		}
	}
}

func TestSymmetricSection(t *testing.T) {
	p := Params{Thickness: 0.12}
	camber, err := Camber(p, 30)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range camber {
		if c.Z != 0 {
			t.Fatalf("symmetric camber line not zero at x=%v: %v", c.X, c.Z)
		}
	}

	const n = 30
	loop, _ := Generate(p, n)
	for k := 0; k < n; k++ {
		up, lo := loop[n-1-k], loop[n-1+k]
		if math.Abs(up.X-lo.X) > 1e-12 || math.Abs(up.Z+lo.Z) > 1e-12 {
			t.Errorf("station %d: upper %v and lower %v are not mirror images", k, up, lo)
		}
	}
}

func TestLeadingAndTrailingEdge(t *testing.T) {
	loop, _ := Generate(Params{Thickness: 0.12}, 20)
	le := loop[19]
	if le.X != 0 || le.Z != 0 {
		t.Errorf("leading edge = %v, want origin", le)
	}
	if loop[0].X != 1 || loop[0].Z != 0 {
		t.Errorf("trailing edge = %v, want (1,0,0)", loop[0])
	}
}

func TestMaxThickness(t *testing.T) {
	loop, _ := Generate(Params{Thickness: 0.12}, 200)
	upper, lower := Surfaces(loop)
	var maxT float64
	for i := range upper {
		maxT = math.Max(maxT, upper[i].Z-lower[i].Z)
	}
	if math.Abs(maxT-0.12) > 1e-3 {
		t.Errorf("max thickness = %v, want about 0.12", maxT)
	}
}

func TestZeroThicknessIsFlat(t *testing.T) {
	loop, err := Generate(Params{Camber: 0.02, CamberPos: 0.4}, 15)
	if err != nil {
		t.Fatal(err)
	}
	upper, lower := Surfaces(loop)
	for i := range upper {
		if upper[i] != lower[i] {
			t.Errorf("zero thickness surfaces differ at %d: %v vs %v", i, upper[i], lower[i])
		}
	}
}

func TestCambered(t *testing.T) {
	p := Params{Camber: 0.02, CamberPos: 0.4, Thickness: 0.12}
	camber, _ := Camber(p, 101)
	var peak float64
	for _, c := range camber {
		peak = math.Max(peak, c.Z)
	}
	if math.Abs(peak-0.02) > 1e-4 {
		t.Errorf("camber peak = %v, want 0.02", peak)
	}
	if camber[0].Z != 0 || math.Abs(camber[100].Z) > 1e-12 {
		t.Errorf("camber line should meet the chord at both ends")
	}
}

func TestCamberNeedsPosition(t *testing.T) {
	camber, _ := Camber(Params{Camber: 0.05, Thickness: 0.1}, 10)
	for _, c := range camber {
		if c.Z != 0 {
			t.Fatalf("camber with p=0 must be zero, got %v", c)
		}
	}
}

func TestReflexLiftsTrailingEdgeRegion(t *testing.T) {
	// 4r(x^3 - x^2) is negative inside (0,1) for r>0, so negative r gives
	// an upturned aft section.
	camber, _ := Camber(Params{Reflex: -0.05}, 21)
	for _, c := range camber[1 : len(camber)-1] {
		if c.Z <= 0 {
			t.Fatalf("reflex camber at x=%v is %v, want > 0", c.X, c.Z)
		}
	}
}

func TestInputContract(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		n    int
	}{
		{"resolution too small", Params{Thickness: 0.12}, 2},
		{"camber position past chord", Params{Camber: 0.02, CamberPos: 1.2, Thickness: 0.12}, 10},
		{"negative camber position", Params{CamberPos: -0.1, Thickness: 0.12}, 10},
		{"negative thickness", Params{Thickness: -0.1}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Generate(tt.p, tt.n); !errors.Is(err, geom.ErrInputContract) {
				t.Errorf("expected ErrInputContract, got %v", err)
			}
		})
	}
}

func TestCamberPositionAtTrailingEdge(t *testing.T) {
	p := Params{Camber: 0.02, CamberPos: 1, Thickness: 0.12}
	line, err := Camber(p, 11)
	if err != nil {
		t.Fatalf("Camber: %v", err)
	}
	// The fore parabola covers the whole chord and peaks at x=1.
	if te := line[len(line)-1]; math.Abs(te.Z-0.02) > 1e-12 {
		t.Errorf("trailing edge camber = %v, want 0.02", te.Z)
	}
	for i := 1; i < len(line); i++ {
		if line[i].Z < line[i-1].Z {
			t.Fatalf("camber falls at x=%v", line[i].X)
		}
	}
	loop, err := Generate(p, 11)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i, q := range loop {
		if math.IsNaN(q.X) || math.IsNaN(q.Z) || math.IsInf(q.Z, 0) {
			t.Fatalf("point %d = %v", i, q)
		}
	}
}

func TestCosineSpacing(t *testing.T) {
	xs := CosineSpacing(11)
	if xs[0] != 0 || xs[10] != 1 {
		t.Fatalf("endpoints = %v, %v", xs[0], xs[10])
	}
	if math.Abs(xs[5]-0.5) > 1e-12 {
		t.Errorf("midpoint = %v", xs[5])
	}
	if xs[1]-xs[0] >= xs[6]-xs[5] {
		t.Error("spacing should be denser at the leading edge")
	}
}

func TestPlot(t *testing.T) {
	loop, _ := Generate(Params{Camber: 0.02, CamberPos: 0.4, Thickness: 0.12}, 40)
	var buf bytes.Buffer
	if err := Plot(&buf, loop, "NACA 2412"); err != nil {
		t.Fatalf("Plot: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("plot output is not a PNG")
	}
	if err := Plot(&buf, loop[:2], "short"); err == nil {
		t.Error("expected error for a short loop")
	}
}
