package vehicle

import (
	"strings"
	"testing"

	"github.com/chazu/wigmesh/pkg/airfoil"
)

func naca0012() airfoil.Params { return airfoil.Params{Thickness: 0.12} }

func twoStationWing(name string) *LiftingSurface {
	return NewLiftingSurface(name,
		WingStation{Y: 0, Chord: 2, Airfoil: naca0012()},
		WingStation{Y: 5, Chord: 1, X: 1, Z: 0.5, Airfoil: naca0012()},
	)
}

func TestDefaultPrefs(t *testing.T) {
	s := twoStationWing("wing")
	if s.Prefs != (DisplayPrefs{Visible: true}) {
		t.Errorf("surface prefs = %+v", s.Prefs)
	}
	f := NewFuselage("hull")
	if f.Prefs != (DisplayPrefs{Visible: true}) {
		t.Errorf("fuselage prefs = %+v", f.Prefs)
	}
}

func TestRemoveStationKeepsMinimum(t *testing.T) {
	s := twoStationWing("wing")
	if err := s.RemoveStation(0); err == nil {
		t.Fatal("expected error removing below minimum")
	}
	s.AddStation(WingStation{Y: 8, Chord: 0.5, Airfoil: naca0012()})
	if err := s.RemoveStation(1); err != nil {
		t.Fatalf("RemoveStation: %v", err)
	}
	if len(s.Stations) != 2 || s.Stations[1].Y != 8 {
		t.Errorf("unexpected stations after removal: %+v", s.Stations)
	}
	if err := s.RemoveStation(5); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestInsertStation(t *testing.T) {
	s := twoStationWing("wing")
	if err := s.InsertStation(1, WingStation{Y: 2.5, Chord: 1.5}); err != nil {
		t.Fatalf("InsertStation: %v", err)
	}
	ys := []float64{s.Stations[0].Y, s.Stations[1].Y, s.Stations[2].Y}
	if ys[0] != 0 || ys[1] != 2.5 || ys[2] != 5 {
		t.Errorf("station order = %v", ys)
	}
	if err := s.InsertStation(-1, WingStation{}); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestNewLiftingSurfaceIsMirrored(t *testing.T) {
	if !twoStationWing("wing").Mirrored {
		t.Error("new surfaces should be mirrored")
	}
}

func TestNewStationDefaultsToNACA0012(t *testing.T) {
	st := NewStation(1, 2, 0.5, 0.1)
	want := WingStation{Y: 1, Chord: 2, X: 0.5, Z: 0.1, Airfoil: naca0012()}
	if st != want {
		t.Errorf("NewStation = %+v, want %+v", st, want)
	}
}

func TestExtendTip(t *testing.T) {
	s := twoStationWing("wing")
	s.Stations[1].Twist = -2
	st, err := s.ExtendTip()
	if err != nil {
		t.Fatalf("ExtendTip: %v", err)
	}
	want := s.Stations[1]
	want.Y = 6
	if len(s.Stations) != 3 || st != want || s.Stations[2] != want {
		t.Errorf("extended tip = %+v, want %+v", st, want)
	}
	if _, err := NewLiftingSurface("empty").ExtendTip(); err == nil {
		t.Error("expected error extending a surface with no stations")
	}
}

func TestFuselageEditing(t *testing.T) {
	f := NewFuselage("hull")
	if p := f.ExtendTail(); p != (ProfilePoint{X: 0, Radius: 0.5}) {
		t.Errorf("first point = %+v", p)
	}
	if p := f.ExtendTail(); p != (ProfilePoint{X: 1, Radius: 0.5}) {
		t.Errorf("second point = %+v", p)
	}
	if err := f.RemovePoint(0); err == nil {
		t.Error("expected error removing below the minimum")
	}
	f.ExtendTail()
	if err := f.RemovePoint(0); err != nil {
		t.Fatalf("RemovePoint: %v", err)
	}
	if len(f.Profile) != 2 || f.Profile[0].X != 1 {
		t.Errorf("profile = %+v", f.Profile)
	}
}

func TestFuselageProfileStaysSorted(t *testing.T) {
	f := NewFuselage("hull",
		ProfilePoint{X: 4, Radius: 0.4},
		ProfilePoint{X: 0, Radius: 0},
		ProfilePoint{X: 5, Radius: 0},
	)
	f.AddPoint(ProfilePoint{X: 0.5, Radius: 0.4})
	for i := 1; i < len(f.Profile); i++ {
		if f.Profile[i].X < f.Profile[i-1].X {
			t.Fatalf("profile unsorted: %+v", f.Profile)
		}
	}
	if len(Validate(&Vehicle{Fuselage: f})) != 0 {
		t.Errorf("sorted profile should validate")
	}
	if err := f.RemovePoint(10); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Vehicle
		codes []string
	}{
		{
			name: "valid",
			build: func() *Vehicle {
				v := New("wig")
				v.AddSurface(twoStationWing("wing"))
				v.SetFuselage(NewFuselage("hull", ProfilePoint{0, 0}, ProfilePoint{5, 0}))
				return v
			},
		},
		{
			name: "one station",
			build: func() *Vehicle {
				v := New("wig")
				v.AddSurface(NewLiftingSurface("stub", WingStation{Chord: 1}))
				return v
			},
			codes: []string{CodeStationCount},
		},
		{
			name: "bad station values",
			build: func() *Vehicle {
				v := New("wig")
				s := twoStationWing("wing")
				s.Stations[0].Chord = -1
				s.Stations[1].Airfoil = airfoil.Params{Thickness: -0.1, CamberPos: 1.5}
				v.AddSurface(s)
				return v
			},
			codes: []string{CodeChordNegative, CodeThickness, CodeCamberPosition},
		},
		{
			name: "duplicate names",
			build: func() *Vehicle {
				v := New("wig")
				v.AddSurface(twoStationWing("wing"))
				v.AddSurface(twoStationWing("wing"))
				return v
			},
			codes: []string{CodeDuplicateName},
		},
		{
			name: "bad profile",
			build: func() *Vehicle {
				v := New("wig")
				v.SetFuselage(&Fuselage{Name: "hull", Profile: []ProfilePoint{{2, 0.1}, {1, -0.1}}})
				return v
			},
			codes: []string{CodeProfileSorted, CodeRadiusNegative},
		},
		{
			name: "empty profile",
			build: func() *Vehicle {
				v := New("wig")
				v.SetFuselage(NewFuselage("hull"))
				return v
			},
			codes: []string{CodeProfileEmpty},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.build())
			if len(errs) != len(tt.codes) {
				t.Fatalf("got %d errors %v, want codes %v", len(errs), errs, tt.codes)
			}
			for i, code := range tt.codes {
				if errs[i].Code != code {
					t.Errorf("error %d code = %s, want %s", i, errs[i].Code, code)
				}
				if !strings.Contains(errs[i].Error(), code) {
					t.Errorf("Error() missing code: %s", errs[i].Error())
				}
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	v := New("wig")
	v.AddSurface(twoStationWing("wing"))
	v.SetFuselage(NewFuselage("hull", ProfilePoint{0, 0}, ProfilePoint{1, 0.2}))
	c := v.Clone()
	c.Surfaces[0].Stations[0].Chord = 9
	c.Fuselage.Profile[1].Radius = 9
	if v.Surfaces[0].Stations[0].Chord == 9 || v.Fuselage.Profile[1].Radius == 9 {
		t.Error("Clone shares storage with the original")
	}
}

func TestSurfaceLookupAndRemove(t *testing.T) {
	v := New("wig")
	v.AddSurface(twoStationWing("wing"))
	v.AddSurface(twoStationWing("tail"))
	if v.Surface("tail") == nil {
		t.Fatal("lookup failed")
	}
	if !v.RemoveSurface("wing") || v.RemoveSurface("wing") {
		t.Error("RemoveSurface reported wrong result")
	}
	if v.PartCount() != 1 {
		t.Errorf("PartCount = %d, want 1", v.PartCount())
	}
}
