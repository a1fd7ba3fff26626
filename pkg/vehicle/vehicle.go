package vehicle

import (
	"fmt"
	"sort"

	"github.com/chazu/wigmesh/pkg/airfoil"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// MinStations is the fewest stations a lifting surface may hold.
	MinStations = 2
	// MinProfilePoints is the fewest points an edited fuselage profile
	// keeps.
	MinProfilePoints = 2
)

// DefaultAirfoil is the section a new station starts with: NACA 0012.
func DefaultAirfoil() airfoil.Params {
	return airfoil.Params{Thickness: 0.12}
}

// DisplayPrefs are presentation hints attached to every component when it
// is created. SolidView and FlipNormals also steer mesh generation.
type DisplayPrefs struct {
	SolidView   bool `json:"solid_view"`
	FlipNormals bool `json:"flip_normals"`
	Visible     bool `json:"visible"`
}

// DefaultPrefs returns the preferences a new component starts with.
func DefaultPrefs() DisplayPrefs {
	return DisplayPrefs{Visible: true}
}

// Orientation holds Euler angles in degrees about the x (roll), y (pitch)
// and z (yaw) axes.
type Orientation struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// WingStation is one airfoil section of a lifting surface. Airfoil fixes
// the 2D shape; X, Y, Z, Twist and Chord place it.
type WingStation struct {
	Y       float64        `json:"y"`
	Chord   float64        `json:"chord"`
	X       float64        `json:"x"` // leading-edge offset
	Z       float64        `json:"z"`
	Twist   float64        `json:"twist"` // degrees
	Airfoil airfoil.Params `json:"airfoil"`
}

// NewStation returns a station at (x, y, z) with the given chord, no
// twist and the default airfoil.
func NewStation(y, chord, x, z float64) WingStation {
	return WingStation{Y: y, Chord: chord, X: x, Z: z, Airfoil: DefaultAirfoil()}
}

// LiftingSurface is an ordered run of stations lofted in order.
type LiftingSurface struct {
	Name        string        `json:"name"`
	Stations    []WingStation `json:"stations"`
	Position    r3.Vec        `json:"position"`
	Orientation Orientation   `json:"orientation"`
	Mirrored    bool          `json:"mirrored"`
	Prefs       DisplayPrefs  `json:"prefs"`
}

// NewLiftingSurface returns a mirrored surface with the given stations and
// default preferences. The stations slice is copied.
func NewLiftingSurface(name string, stations ...WingStation) *LiftingSurface {
	return &LiftingSurface{
		Name:     name,
		Stations: append([]WingStation(nil), stations...),
		Mirrored: true,
		Prefs:    DefaultPrefs(),
	}
}

// AddStation appends a station at the tip end.
func (s *LiftingSurface) AddStation(st WingStation) {
	s.Stations = append(s.Stations, st)
}

// ExtendTip appends a copy of the tip station moved one unit outboard in
// y and returns it.
func (s *LiftingSurface) ExtendTip() (WingStation, error) {
	if len(s.Stations) == 0 {
		return WingStation{}, fmt.Errorf("vehicle: surface %q has no tip station to extend", s.Name)
	}
	st := s.Stations[len(s.Stations)-1]
	st.Y++
	s.AddStation(st)
	return st, nil
}

// InsertStation inserts st before index i.
func (s *LiftingSurface) InsertStation(i int, st WingStation) error {
	if i < 0 || i > len(s.Stations) {
		return fmt.Errorf("vehicle: surface %q: station index %d out of range", s.Name, i)
	}
	s.Stations = append(s.Stations, WingStation{})
	copy(s.Stations[i+1:], s.Stations[i:])
	s.Stations[i] = st
	return nil
}

// RemoveStation deletes station i. A surface never drops below
// MinStations.
func (s *LiftingSurface) RemoveStation(i int) error {
	if i < 0 || i >= len(s.Stations) {
		return fmt.Errorf("vehicle: surface %q: station index %d out of range", s.Name, i)
	}
	if len(s.Stations) <= MinStations {
		return fmt.Errorf("vehicle: surface %q must keep at least %d stations", s.Name, MinStations)
	}
	s.Stations = append(s.Stations[:i], s.Stations[i+1:]...)
	return nil
}

// Clone returns a deep copy of s.
func (s *LiftingSurface) Clone() *LiftingSurface {
	c := *s
	c.Stations = append([]WingStation(nil), s.Stations...)
	return &c
}

// ProfilePoint is one (x, radius) sample of a fuselage profile.
type ProfilePoint struct {
	X      float64 `json:"x"`
	Radius float64 `json:"radius"`
}

// Fuselage is a body of revolution described by a profile sorted by x.
type Fuselage struct {
	Name     string         `json:"name"`
	Profile  []ProfilePoint `json:"profile"`
	Position r3.Vec         `json:"position"`
	Prefs    DisplayPrefs   `json:"prefs"`
}

// NewFuselage returns a fuselage whose profile is a sorted copy of points.
func NewFuselage(name string, points ...ProfilePoint) *Fuselage {
	f := &Fuselage{Name: name, Prefs: DefaultPrefs()}
	for _, p := range points {
		f.AddPoint(p)
	}
	return f
}

// AddPoint inserts p keeping the profile sorted by x. Points with equal x
// keep their insertion order.
func (f *Fuselage) AddPoint(p ProfilePoint) {
	i := sort.Search(len(f.Profile), func(k int) bool { return f.Profile[k].X > p.X })
	f.Profile = append(f.Profile, ProfilePoint{})
	copy(f.Profile[i+1:], f.Profile[i:])
	f.Profile[i] = p
}

// ExtendTail appends a point one unit aft of the last with radius 0.5
// and returns it. An empty profile starts at the origin.
func (f *Fuselage) ExtendTail() ProfilePoint {
	p := ProfilePoint{Radius: 0.5}
	if n := len(f.Profile); n > 0 {
		p.X = f.Profile[n-1].X + 1
	}
	f.AddPoint(p)
	return p
}

// RemovePoint deletes profile point i. A profile never drops below
// MinProfilePoints.
func (f *Fuselage) RemovePoint(i int) error {
	if i < 0 || i >= len(f.Profile) {
		return fmt.Errorf("vehicle: fuselage %q: profile index %d out of range", f.Name, i)
	}
	if len(f.Profile) <= MinProfilePoints {
		return fmt.Errorf("vehicle: fuselage %q must keep at least %d profile points", f.Name, MinProfilePoints)
	}
	f.Profile = append(f.Profile[:i], f.Profile[i+1:]...)
	return nil
}

// Clone returns a deep copy of f.
func (f *Fuselage) Clone() *Fuselage {
	c := *f
	c.Profile = append([]ProfilePoint(nil), f.Profile...)
	return &c
}

// Vehicle is the root aggregate: named surfaces plus at most one fuselage.
type Vehicle struct {
	Name     string            `json:"name"`
	Surfaces []*LiftingSurface `json:"surfaces"`
	Fuselage *Fuselage         `json:"fuselage,omitempty"`
}

// New creates an empty vehicle.
func New(name string) *Vehicle {
	return &Vehicle{Name: name}
}

// AddSurface appends s to the vehicle.
func (v *Vehicle) AddSurface(s *LiftingSurface) {
	v.Surfaces = append(v.Surfaces, s)
}

// RemoveSurface removes the first surface named name. It reports whether
// a surface was removed.
func (v *Vehicle) RemoveSurface(name string) bool {
	for i, s := range v.Surfaces {
		if s.Name == name {
			v.Surfaces = append(v.Surfaces[:i], v.Surfaces[i+1:]...)
			return true
		}
	}
	return false
}

// Surface returns the first surface named name, or nil.
func (v *Vehicle) Surface(name string) *LiftingSurface {
	for _, s := range v.Surfaces {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// SetFuselage installs f, replacing any existing fuselage.
func (v *Vehicle) SetFuselage(f *Fuselage) { v.Fuselage = f }

// ClearFuselage removes the fuselage.
func (v *Vehicle) ClearFuselage() { v.Fuselage = nil }

// PartCount returns the number of stored components.
func (v *Vehicle) PartCount() int {
	n := len(v.Surfaces)
	if v.Fuselage != nil {
		n++
	}
	return n
}

// Clone returns a deep copy of v.
func (v *Vehicle) Clone() *Vehicle {
	c := &Vehicle{Name: v.Name}
	for _, s := range v.Surfaces {
		c.Surfaces = append(c.Surfaces, s.Clone())
	}
	if v.Fuselage != nil {
		c.Fuselage = v.Fuselage.Clone()
	}
	return c
}
