package revolve

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/chazu/wigmesh/pkg/vehicle"
	"gonum.org/v1/gonum/spatial/r3"
)

func scenarioB() *vehicle.Fuselage {
	return vehicle.NewFuselage("hull",
		vehicle.ProfilePoint{X: 0, Radius: 0},
		vehicle.ProfilePoint{X: 0.5, Radius: 0.4},
		vehicle.ProfilePoint{X: 4, Radius: 0.4},
		vehicle.ProfilePoint{X: 5, Radius: 0},
	)
}

func TestFuselageShape(t *testing.T) {
	res := geom.DefaultResolution()
	g, err := Fuselage(scenarioB(), res)
	if err != nil {
		t.Fatalf("Fuselage: %v", err)
	}
	if g.Rows != 36 || g.Cols != 50 {
		t.Fatalf("grid shape = (%d, %d), want (36, 50)", g.Rows, g.Cols)
	}
	for j := 0; j < g.Cols; j++ {
		if g.At(0, j) != g.At(g.Rows-1, j) {
			t.Fatalf("ring %d not closed", j)
		}
	}
	if g.At(0, 0).X != 0 || g.At(0, g.Cols-1).X != 5 {
		t.Errorf("rings span x %v..%v, want 0..5", g.At(0, 0).X, g.At(0, g.Cols-1).X)
	}
}

func TestFuselageRadiusFollowsProfile(t *testing.T) {
	res := geom.Resolution{ChordRes: 3, SpanRes: 2, FuselageLongRes: 11, FuselageRadialRes: 8}
	g, err := Fuselage(scenarioB(), res)
	if err != nil {
		t.Fatal(err)
	}
	// Column 5 sits at x=2.5, inside the constant-radius section.
	for i := 0; i < g.Rows; i++ {
		p := g.At(i, 5)
		if r := math.Hypot(p.Y, p.Z); math.Abs(r-0.4) > 1e-12 {
			t.Fatalf("radius at x=%v is %v, want 0.4", p.X, r)
		}
	}
	// Column 10 is the pointed tail.
	for i := 0; i < g.Rows; i++ {
		if p := g.At(i, 10); p.Y != 0 || p.Z != 0 {
			t.Fatalf("tail ring point %v not on the axis", p)
		}
	}
}

func TestFuselageTranslated(t *testing.T) {
	f := scenarioB()
	f.Position = r3.Vec{X: -1, Z: 0.3}
	g, err := Fuselage(f, geom.DefaultResolution())
	if err != nil {
		t.Fatal(err)
	}
	if got := g.At(0, 0); !geom.EqualWithin(got, r3.Vec{X: -1, Z: 0.3}, 1e-12) {
		t.Errorf("nose = %v", got)
	}
}

func TestResample(t *testing.T) {
	got, err := Resample([]vehicle.ProfilePoint{{X: 0, Radius: 0}, {X: 2, Radius: 1}}, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range got {
		wantX := float64(i) * 0.5
		if math.Abs(p.X-wantX) > 1e-12 || math.Abs(p.Radius-wantX/2) > 1e-12 {
			t.Errorf("sample %d = %+v", i, p)
		}
	}
}

func TestResampleDuplicateX(t *testing.T) {
	got, err := Resample([]vehicle.ProfilePoint{{X: 0, Radius: 0.2}, {X: 0, Radius: 0.5}, {X: 1, Radius: 0.5}}, 3)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if got[0].Radius != 0.5 {
		t.Errorf("duplicate x kept radius %v, want the last (0.5)", got[0].Radius)
	}
}

func TestDegenerateProfiles(t *testing.T) {
	single := vehicle.NewFuselage("dot", vehicle.ProfilePoint{X: 1, Radius: 0.3})
	g, err := Fuselage(single, geom.DefaultResolution())
	if err != nil {
		t.Fatalf("single point profile: %v", err)
	}
	if g.Cols != 50 || g.At(3, 0) != g.At(3, 49) {
		t.Error("single point profile should produce coincident rings")
	}
	if !Degenerate(single.Profile) {
		t.Error("single point profile should be degenerate")
	}
	if Degenerate(scenarioB().Profile) {
		t.Error("scenario profile reported degenerate")
	}
}

func TestFuselageContract(t *testing.T) {
	if _, err := Fuselage(vehicle.NewFuselage("empty"), geom.DefaultResolution()); !errors.Is(err, geom.ErrInputContract) {
		t.Errorf("empty profile: expected ErrInputContract, got %v", err)
	}
	unsorted := &vehicle.Fuselage{Name: "bad", Profile: []vehicle.ProfilePoint{{X: 1}, {X: 0}}}
	if _, err := Fuselage(unsorted, geom.DefaultResolution()); !errors.Is(err, geom.ErrInputContract) {
		t.Errorf("unsorted profile: expected ErrInputContract, got %v", err)
	}
}

func TestRing(t *testing.T) {
	ring := Ring(2, 1, 5)
	want := []r3.Vec{{X: 2, Y: 1}, {X: 2, Z: 1}, {X: 2, Y: -1}, {X: 2, Z: -1}, {X: 2, Y: 1}}
	for i := range want {
		if !geom.EqualWithin(ring[i], want[i], 1e-12) {
			t.Errorf("ring[%d] = %v, want %v", i, ring[i], want[i])
		}
	}
	if ring[0] != ring[4] {
		t.Error("ring not closed exactly")
	}
}
