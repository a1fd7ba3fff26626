package tessellate

import (
	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/chazu/wigmesh/pkg/loft"
	"github.com/chazu/wigmesh/pkg/mirror"
	"github.com/chazu/wigmesh/pkg/revolve"
	"github.com/chazu/wigmesh/pkg/solidify"
	"github.com/chazu/wigmesh/pkg/vehicle"
)

// MirrorSuffix is appended to a surface name to name its reflection.
const MirrorSuffix = "_mirror"

// Kind tells surface parts from fuselage parts.
type Kind int

const (
	KindSurface Kind = iota
	KindFuselage
)

func (k Kind) String() string {
	switch k {
	case KindSurface:
		return "surface"
	case KindFuselage:
		return "fuselage"
	default:
		return "unknown"
	}
}

// Instance is one emitted part of a vehicle. The set is closed: only
// SurfaceInstance and FuselageInstance implement it.
type Instance interface {
	Name() string
	Kind() Kind
	Prefs() vehicle.DisplayPrefs
	// OpenGrid returns the part as an oriented open grid.
	OpenGrid(res geom.Resolution) (*geom.Grid, error)
	// Solid returns the part capped, triangulated and oriented.
	Solid(res geom.Resolution) (*geom.Solid, error)

	instance()
}

// SurfaceInstance is a lifting surface or, when Mirror is set, its
// reflection across y=0. Mirrored instances are derived on every call and
// never stored in the vehicle.
type SurfaceInstance struct {
	Surface *vehicle.LiftingSurface
	Mirror  bool
}

func (SurfaceInstance) instance() {}

// Name returns the surface name, with MirrorSuffix for the reflection.
func (s SurfaceInstance) Name() string {
	if s.Mirror {
		return s.Surface.Name + MirrorSuffix
	}
	return s.Surface.Name
}

// Kind returns KindSurface.
func (SurfaceInstance) Kind() Kind { return KindSurface }

// Prefs returns the surface's display preferences.
func (s SurfaceInstance) Prefs() vehicle.DisplayPrefs { return s.Surface.Prefs }

// OpenGrid lofts the surface and applies the mirror and user flips.
func (s SurfaceInstance) OpenGrid(res geom.Resolution) (*geom.Grid, error) {
	g, err := loft.Surface(s.Surface, res)
	if err != nil {
		return nil, err
	}
	return mirror.Grid(g, s.Mirror, s.Surface.Prefs.FlipNormals), nil
}

// Solid lofts and closes the surface, then applies the mirror and user
// flips. A surface without a mirrored twin is capped at both ends.
func (s SurfaceInstance) Solid(res geom.Resolution) (*geom.Solid, error) {
	g, err := loft.Surface(s.Surface, res)
	if err != nil {
		return nil, err
	}
	closer := solidify.Surface
	if !s.Surface.Mirrored {
		closer = solidify.Capped
	}
	solid, _, err := closer(g)
	if err != nil {
		return nil, err
	}
	return mirror.Solid(solid, s.Mirror, s.Surface.Prefs.FlipNormals), nil
}

// FuselageInstance is the vehicle's fuselage. It is never mirrored.
type FuselageInstance struct {
	Fuselage *vehicle.Fuselage
}

func (FuselageInstance) instance() {}

// Name returns the fuselage name.
func (f FuselageInstance) Name() string { return f.Fuselage.Name }

// Kind returns KindFuselage.
func (FuselageInstance) Kind() Kind { return KindFuselage }

// Prefs returns the fuselage's display preferences.
func (f FuselageInstance) Prefs() vehicle.DisplayPrefs { return f.Fuselage.Prefs }

// OpenGrid revolves the profile and applies the user flip.
func (f FuselageInstance) OpenGrid(res geom.Resolution) (*geom.Grid, error) {
	g, err := revolve.Fuselage(f.Fuselage, res)
	if err != nil {
		return nil, err
	}
	return mirror.Grid(g, false, f.Fuselage.Prefs.FlipNormals), nil
}

// Solid revolves and closes the profile and applies the user flip.
func (f FuselageInstance) Solid(res geom.Resolution) (*geom.Solid, error) {
	g, err := revolve.Fuselage(f.Fuselage, res)
	if err != nil {
		return nil, err
	}
	solid, _, err := solidify.Fuselage(g)
	if err != nil {
		return nil, err
	}
	return mirror.Solid(solid, false, f.Fuselage.Prefs.FlipNormals), nil
}

// Instances lists the parts of v in emission order: each surface followed
// by its reflection when mirrored, then the fuselage.
func Instances(v *vehicle.Vehicle) []Instance {
	var out []Instance
	for _, s := range v.Surfaces {
		out = append(out, SurfaceInstance{Surface: s})
		if s.Mirrored {
			out = append(out, SurfaceInstance{Surface: s, Mirror: true})
		}
	}
	if v.Fuselage != nil {
		out = append(out, FuselageInstance{Fuselage: v.Fuselage})
	}
	return out
}
