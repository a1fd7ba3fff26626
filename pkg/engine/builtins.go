package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/wigmesh/pkg/airfoil"
	"github.com/chazu/wigmesh/pkg/vehicle"
	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpAirfoil struct {
	params airfoil.Params
}

func (a *sexpAirfoil) SexpString(ps *zygo.PrintState) string {
	p := a.params
	return fmt.Sprintf("(airfoil :camber %g :camber-pos %g :thickness %g :reflex %g)",
		p.Camber, p.CamberPos, p.Thickness, p.Reflex)
}
func (a *sexpAirfoil) Type() *zygo.RegisteredType { return nil }

type sexpStation struct {
	st vehicle.WingStation
}

func (s *sexpStation) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(station :y %g :chord %g)", s.st.Y, s.st.Chord)
}
func (s *sexpStation) Type() *zygo.RegisteredType { return nil }

type sexpPoint struct {
	p vehicle.ProfilePoint
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", p.p.X, p.p.Radius)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPartRef names a component added to the vehicle.
type sexpPartRef struct {
	kind string
	name string
}

func (r *sexpPartRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", r.kind, r.name)
}
func (r *sexpPartRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword names in rewritten scripts.
const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		switch {
		case !ok:
			result.positional = append(result.positional, args[i])
		case i+1 < len(args):
			result.kw[name] = args[i+1]
			i++
		default:
			// Trailing keyword with no value reads as a true flag.
			result.kw[name] = &zygo.SexpBool{Val: true}
		}
	}
	return result
}

// number sets *dst from keyword key when present.
func (a kwArgs) number(fn, key string, dst *float64) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	*dst = f
	return nil
}

// flag sets *dst from keyword key when present.
func (a kwArgs) flag(fn, key string, dst *bool) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	b, err := toBool(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	*dst = b
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toAirfoil(s zygo.Sexp) (airfoil.Params, error) {
	if a, ok := s.(*sexpAirfoil); ok {
		return a.params, nil
	}
	return airfoil.Params{}, fmt.Errorf("expected airfoil, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// naca parses a four-digit NACA designation such as "2412".
func naca(code string) (airfoil.Params, error) {
	if len(code) != 4 {
		return airfoil.Params{}, fmt.Errorf("NACA code %q must have four digits", code)
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 0 {
		return airfoil.Params{}, fmt.Errorf("NACA code %q must have four digits", code)
	}
	return airfoil.Params{
		Camber:    float64(n/1000) / 100,
		CamberPos: float64(n/100%10) / 10,
		Thickness: float64(n%100) / 100,
	}, nil
}

// airfoilArgs reads :camber, :camber-pos, :thickness and :reflex over p.
func airfoilArgs(fn string, pa kwArgs, p *airfoil.Params) error {
	for key, dst := range map[string]*float64{
		"camber":     &p.Camber,
		"camber-pos": &p.CamberPos,
		"thickness":  &p.Thickness,
		"reflex":     &p.Reflex,
	} {
		if err := pa.number(fn, key, dst); err != nil {
			return err
		}
	}
	return nil
}

// prefsArgs reads :solid-view, :flip-normals and :visible over p. :solid
// and :flip are short forms.
func prefsArgs(fn string, pa kwArgs, p *vehicle.DisplayPrefs) error {
	for _, key := range []string{"solid", "solid-view"} {
		if err := pa.flag(fn, key, &p.SolidView); err != nil {
			return err
		}
	}
	for _, key := range []string{"flip", "flip-normals"} {
		if err := pa.flag(fn, key, &p.FlipNormals); err != nil {
			return err
		}
	}
	return pa.flag(fn, "visible", &p.Visible)
}

// position reads :at, or its long form :position.
func (a kwArgs) position(fn string, dst *r3.Vec) error {
	for _, key := range []string{"at", "position"} {
		v, ok := a.kw[key]
		if !ok {
			continue
		}
		p, err := toVec3(v)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", fn, key, err)
		}
		*dst = p
	}
	return nil
}

// collect flattens positional items and list arguments into one slice.
func collect(items []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, it := range items {
		switch it.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			l, err := sexpListToSlice(it)
			if err != nil {
				return nil, err
			}
			out = append(out, l...)
		default:
			out = append(out, it)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the vehicle DSL into env. Builtins populate v
// as the script runs.
//
// Source must pass through rewriteScript before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, v *vehicle.Vehicle) {

	// (vehicle "name")
	env.AddFunction("vehicle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("vehicle requires a name argument")
		}
		n, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vehicle: name: %w", err)
		}
		v.Name = n
		return &zygo.SexpStr{S: n}, nil
	})

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// (airfoil :camber 0.02 :camber-pos 0.4 :thickness 0.12 :reflex 0)
	// Omitted keywords keep the NACA 0012 defaults.
	env.AddFunction("airfoil", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p := vehicle.DefaultAirfoil()
		if err := airfoilArgs("airfoil", parseArgs(args), &p); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpAirfoil{params: p}, nil
	})

	// (naca "2412" :reflex 0.01)
	env.AddFunction("naca", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("naca requires a four-digit code")
		}
		var code string
		switch c := pa.positional[0].(type) {
		case *zygo.SexpStr:
			code = c.S
		case *zygo.SexpInt:
			code = fmt.Sprintf("%04d", c.Val)
		default:
			return zygo.SexpNull, fmt.Errorf("naca: expected code, got %T", c)
		}
		p, err := naca(code)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("naca: %w", err)
		}
		if err := pa.number("naca", "reflex", &p.Reflex); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpAirfoil{params: p}, nil
	})

	// (station :y 0 :chord 2 :x 0 :z 0 :twist 2 :airfoil af)
	// Airfoil keywords may also be given inline and override :airfoil.
	// A bare (station) is a unit-chord NACA 0012 section at the origin.
	env.AddFunction("station", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		st := vehicle.NewStation(0, 1, 0, 0)

		if a, ok := pa.kw["airfoil"]; ok {
			p, err := toAirfoil(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("station: airfoil: %w", err)
			}
			st.Airfoil = p
		}
		if err := airfoilArgs("station", pa, &st.Airfoil); err != nil {
			return zygo.SexpNull, err
		}
		for key, dst := range map[string]*float64{
			"y": &st.Y, "chord": &st.Chord, "x": &st.X, "z": &st.Z, "twist": &st.Twist,
		} {
			if err := pa.number("station", key, dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		return &sexpStation{st: st}, nil
	})

	// (surface "wing" s1 s2 :at (vec3 0 0 0.5) :orient (vec3 roll pitch yaw)
	//          :mirrored true :solid-view false :flip-normals false :visible true)
	// :roll, :pitch and :yaw set single angles after :orient.
	// Stations may be passed positionally or as :stations (list ...).
	env.AddFunction("surface", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("surface requires a name argument")
		}
		sname, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("surface: name: %w", err)
		}
		items := pa.positional[1:]
		if l, ok := pa.kw["stations"]; ok {
			items = append(items, l)
		}
		items, err = collect(items)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("surface %q: stations: %w", sname, err)
		}

		s := vehicle.NewLiftingSurface(sname)
		for i, it := range items {
			st, ok := it.(*sexpStation)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("surface %q: item %d: expected station, got %T (%s)",
					sname, i, it, it.SexpString(nil))
			}
			s.AddStation(st.st)
		}
		if err := pa.position("surface", &s.Position); err != nil {
			return zygo.SexpNull, err
		}
		if o, ok := pa.kw["orient"]; ok {
			rpy, err := toVec3(o)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("surface: orient: %w", err)
			}
			s.Orientation = vehicle.Orientation{Roll: rpy.X, Pitch: rpy.Y, Yaw: rpy.Z}
		}
		for key, dst := range map[string]*float64{
			"roll": &s.Orientation.Roll, "pitch": &s.Orientation.Pitch, "yaw": &s.Orientation.Yaw,
		} {
			if err := pa.number("surface", key, dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		if err := pa.flag("surface", "mirrored", &s.Mirrored); err != nil {
			return zygo.SexpNull, err
		}
		if err := prefsArgs("surface", pa, &s.Prefs); err != nil {
			return zygo.SexpNull, err
		}

		v.AddSurface(s)
		return &sexpPartRef{kind: "surface", name: sname}, nil
	})

	// (pt 0.5 0.4)
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pt requires x and radius, got %d arguments", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: x: %w", err)
		}
		r, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: radius: %w", err)
		}
		return &sexpPoint{p: vehicle.ProfilePoint{X: x, Radius: r}}, nil
	})

	// (fuselage "hull" (pt 0 0) (pt 1 0.5) ... :at (vec3 0 0 0) :solid-view true)
	// Points may be passed positionally or as :profile (list ...).
	env.AddFunction("fuselage", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("fuselage requires a name argument")
		}
		fname, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fuselage: name: %w", err)
		}
		if v.Fuselage != nil {
			return zygo.SexpNull, fmt.Errorf("fuselage %q: vehicle already has fuselage %q", fname, v.Fuselage.Name)
		}
		items := pa.positional[1:]
		if l, ok := pa.kw["profile"]; ok {
			items = append(items, l)
		}
		items, err = collect(items)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("fuselage %q: profile: %w", fname, err)
		}

		f := vehicle.NewFuselage(fname)
		for i, it := range items {
			p, ok := it.(*sexpPoint)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("fuselage %q: item %d: expected pt, got %T (%s)",
					fname, i, it, it.SexpString(nil))
			}
			f.AddPoint(p.p)
		}
		if err := pa.position("fuselage", &f.Position); err != nil {
			return zygo.SexpNull, err
		}
		if err := prefsArgs("fuselage", pa, &f.Prefs); err != nil {
			return zygo.SexpNull, err
		}

		v.SetFuselage(f)
		return &sexpPartRef{kind: "fuselage", name: fname}, nil
	})
}
