// Package tessellate assembles a vehicle into named part meshes. Every
// surface yields its primary instance and, when mirrored, a derived
// reflection; the fuselage yields one instance. A part that fails to
// generate is reported with its name and does not stop the others.
package tessellate

import (
	"fmt"

	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/chazu/wigmesh/pkg/kernel"
	"github.com/chazu/wigmesh/pkg/vehicle"
	"github.com/rs/zerolog"
)

// Part is one generated instance.
type Part struct {
	Name     string
	Kind     Kind
	Mirrored bool
	Prefs    vehicle.DisplayPrefs

	// IsSolid reports whether Mesh was capped into a solid. Open parts
	// also carry the Grid they were built from.
	IsSolid bool
	Grid    *geom.Grid
	Mesh    *geom.Solid
}

// PartError records a part that could not be generated.
type PartError struct {
	Part string
	Err  error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("tessellate: part %q: %v", e.Part, e.Err)
}

func (e *PartError) Unwrap() error { return e.Err }

// Assembly is the addressable set of parts generated from one vehicle.
type Assembly struct {
	Parts  map[string]*Part
	Order  []string // insertion order of Parts
	Errors []*PartError
}

func newAssembly() *Assembly {
	return &Assembly{Parts: make(map[string]*Part)}
}

// add stores p under a unique name. A name already present gets a
// "#n" suffix.
func (a *Assembly) add(p *Part) {
	name := p.Name
	for n := 2; a.Parts[name] != nil; n++ {
		name = fmt.Sprintf("%s#%d", p.Name, n)
	}
	p.Name = name
	a.Parts[name] = p
	a.Order = append(a.Order, name)
}

// Part returns the part named name, or nil.
func (a *Assembly) Part(name string) *Part { return a.Parts[name] }

// Len returns the number of generated parts.
func (a *Assembly) Len() int { return len(a.Order) }

// Solids returns the meshes of all solid parts in order.
func (a *Assembly) Solids() []*geom.Solid {
	var out []*geom.Solid
	for _, name := range a.Order {
		if p := a.Parts[name]; p.IsSolid {
			out = append(out, p.Mesh)
		}
	}
	return out
}

// DisplayMeshes converts the visible parts to render meshes in order.
func (a *Assembly) DisplayMeshes() []*kernel.Mesh {
	var out []*kernel.Mesh
	for _, name := range a.Order {
		p := a.Parts[name]
		if !p.Prefs.Visible {
			continue
		}
		out = append(out, kernel.FromSolid(p.Mesh, name))
	}
	return out
}

// Mesher generates part meshes at a fixed resolution.
type Mesher struct {
	res geom.Resolution
	log zerolog.Logger
}

// Option configures a Mesher.
type Option func(*Mesher)

// WithLogger sets the logger used to report failed parts.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Mesher) { m.log = l }
}

// New returns a Mesher for res. The resolution is checked when meshing.
func New(res geom.Resolution, opts ...Option) *Mesher {
	m := &Mesher{res: res, log: zerolog.Nop()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Resolution returns the resolution parts are generated at.
func (m *Mesher) Resolution() geom.Resolution { return m.res }

// MeshVehicle generates every instance of v. When solid is set every part
// is capped regardless of its SolidView preference. Part failures are
// collected in the assembly; the returned error is reserved for an
// invalid resolution.
func (m *Mesher) MeshVehicle(v *vehicle.Vehicle, solid bool) (*Assembly, error) {
	if err := m.res.Validate(); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	a := newAssembly()
	for _, inst := range Instances(v) {
		p, err := m.MeshInstance(inst, solid)
		if err != nil {
			pe := &PartError{Part: inst.Name(), Err: err}
			m.log.Warn().Str("part", inst.Name()).Err(err).Msg("part generation failed")
			a.Errors = append(a.Errors, pe)
			continue
		}
		a.add(p)
	}
	m.log.Debug().Str("vehicle", v.Name).Int("parts", a.Len()).Int("errors", len(a.Errors)).Msg("vehicle meshed")
	return a, nil
}

// MeshSurface generates the primary instance of s.
func (m *Mesher) MeshSurface(s *vehicle.LiftingSurface, solid bool) (*Part, error) {
	return m.MeshInstance(SurfaceInstance{Surface: s}, solid)
}

// MeshFuselage generates the fuselage instance of f.
func (m *Mesher) MeshFuselage(f *vehicle.Fuselage, solid bool) (*Part, error) {
	return m.MeshInstance(FuselageInstance{Fuselage: f}, solid)
}

// MeshInstance generates one instance as a solid when solid is set or the
// instance prefers a solid view, otherwise as an open surface. A panic
// during generation is returned as an error.
func (m *Mesher) MeshInstance(inst Instance, solid bool) (p *Part, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("tessellate: part %q panicked: %v", inst.Name(), r)
		}
	}()

	prefs := inst.Prefs()
	p = &Part{
		Name:  inst.Name(),
		Kind:  inst.Kind(),
		Prefs: prefs,
	}
	if si, ok := inst.(SurfaceInstance); ok {
		p.Mirrored = si.Mirror
	}

	if solid || prefs.SolidView {
		s, err := inst.Solid(m.res)
		if err != nil {
			return nil, err
		}
		p.IsSolid, p.Mesh = true, s
		return p, nil
	}

	g, err := inst.OpenGrid(m.res)
	if err != nil {
		return nil, err
	}
	p.Grid, p.Mesh = g, g.Surface()
	return p, nil
}

// MeshVehicle generates every instance of v at res with a silent Mesher.
func MeshVehicle(v *vehicle.Vehicle, res geom.Resolution, solid bool) (*Assembly, error) {
	return New(res).MeshVehicle(v, solid)
}

// MeshSurface generates the primary instance of s at res.
func MeshSurface(s *vehicle.LiftingSurface, res geom.Resolution, solid bool) (*Part, error) {
	return New(res).MeshSurface(s, solid)
}

// MeshFuselage generates the fuselage f at res.
func MeshFuselage(f *vehicle.Fuselage, res geom.Resolution, solid bool) (*Part, error) {
	return New(res).MeshFuselage(f, solid)
}
