package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/chazu/wigmesh/pkg/vehicle"
)

func meshNames(r EvalResult) []string {
	var out []string
	for _, m := range r.Meshes {
		out = append(out, m.PartName)
	}
	return out
}

// ---------------------------------------------------------------------------
// 1. Empty and comment-only sources evaluate to an empty vehicle.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := testApp(t)
	for _, src := range []string{"", "   \n\t\n", ";; just a comment", ";; one\n\n  ; two\n"} {
		r := app.Evaluate(src, false)
		if len(r.Errors) != 0 || len(r.Meshes) != 0 || len(r.Warnings) != 0 {
			t.Errorf("source %q: %+v", src, r)
		}
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax errors carry a message and no meshes.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	r := testApp(t).Evaluate("(vehicle \"a\")\n(surface \"w\"\n", false)
	if len(r.Errors) == 0 {
		t.Fatal("expected an error")
	}
	if r.Errors[0].Message == "" {
		t.Error("error message should not be empty")
	}
	if r.Errors[0].Line > 0 {
		t.Logf("extracted line info: line=%d", r.Errors[0].Line)
	}
}

func TestE2EUndefinedSymbol(t *testing.T) {
	r := testApp(t).Evaluate(`(surface "w" (station :airfoil undefined-foil) (station :y 1))`, false)
	if len(r.Errors) == 0 {
		t.Fatal("expected an error for an undefined symbol")
	}
}

// ---------------------------------------------------------------------------
// 3. A broken part is reported and the rest still mesh.
// ---------------------------------------------------------------------------

func TestE2EBrokenPartIsolated(t *testing.T) {
	r := testApp(t).Evaluate(`
(surface "stub" (station :chord 1) :mirrored false)
(surface "wing" (station :y 0 :chord 2) (station :y 3 :chord 1) :mirrored false)
(fuselage "hull" (pt 0 0) (pt 2 0.3) (pt 4 0))
`, false)
	if len(r.Errors) != 0 {
		t.Fatalf("errors: %+v", r.Errors)
	}
	if got := meshNames(r); strings.Join(got, ",") != "wing,hull" {
		t.Errorf("meshes = %v", got)
	}
	var validation, generation bool
	for _, w := range r.Warnings {
		if w.Part != "stub" {
			t.Errorf("warning for unexpected part: %+v", w)
		}
		if w.Code == vehicle.CodeStationCount {
			validation = true
		}
		if w.Code == "" && strings.Contains(w.Message, "stations") {
			generation = true
		}
	}
	if !validation || !generation {
		t.Errorf("warnings = %+v", r.Warnings)
	}
}

func TestE2EEmptyProfile(t *testing.T) {
	r := testApp(t).Evaluate(`(fuselage "hull")`, false)
	if len(r.Meshes) != 0 {
		t.Errorf("meshes = %v", meshNames(r))
	}
	if len(r.Warnings) < 2 {
		t.Errorf("expected validation and generation warnings, got %+v", r.Warnings)
	}
}

// ---------------------------------------------------------------------------
// 4. Degenerate but legal geometry still meshes.
// ---------------------------------------------------------------------------

func TestE2EZeroChordTip(t *testing.T) {
	r := testApp(t).Evaluate(`(surface "w" (station :y 0 :chord 2) (station :y 3 :chord 0) :mirrored false)`, true)
	if len(r.Errors) != 0 || len(r.Warnings) != 0 {
		t.Fatalf("errors %+v, warnings %+v", r.Errors, r.Warnings)
	}
	if len(r.Meshes) != 1 || len(r.Meshes[0].Indices) == 0 {
		t.Errorf("expected one non-empty mesh, got %v", meshNames(r))
	}
}

func TestE2EZeroThickness(t *testing.T) {
	r := testApp(t).Evaluate(`(surface "plate" (station :thickness 0) (station :y 2 :thickness 0) :mirrored false)`, false)
	if len(r.Errors) != 0 || len(r.Meshes) != 1 {
		t.Fatalf("result = %+v", r)
	}
}

func TestE2ENegativeChordWarns(t *testing.T) {
	r := testApp(t).Evaluate(`(surface "w" (station :chord -1) (station :y 2))`, false)
	if len(r.Warnings) != 1 || r.Warnings[0].Code != vehicle.CodeChordNegative {
		t.Errorf("warnings = %+v", r.Warnings)
	}
}

// ---------------------------------------------------------------------------
// 5. Rapid evaluation: no panics, engine recovers between states.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Calls are sequential; zygomys sandboxes are not safe to create
	// concurrently.
	app := testApp(t)

	sources := []string{
		`(surface "ok" (station) (station :y 1))`,
		`(surface "broken"`,
		``,
		`(fuselage "f" (station))`,
		`(fuselage "hull" (pt 0 0) (pt 1 0.2))`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(undefined-func 1 2 3)`,
		`(surface "last" (station) (station :y 1))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source, i%2 == 0)
		}()
	}

	if r := app.Evaluate(sources[len(sources)-1], false); len(r.Meshes) != 2 {
		t.Errorf("final evaluation meshes = %v", meshNames(r))
	}
}

// ---------------------------------------------------------------------------
// 6. Names, visibility and colours.
// ---------------------------------------------------------------------------

func TestE2EDuplicateNames(t *testing.T) {
	r := testApp(t).Evaluate(`
(surface "wing" (station) (station :y 1) :mirrored false)
(surface "wing" (station) (station :y 1) :at (vec3 5 0 0) :mirrored false)
`, false)
	if got := meshNames(r); strings.Join(got, ",") != "wing,wing#2" {
		t.Errorf("meshes = %v", got)
	}
	if len(r.Warnings) != 1 || r.Warnings[0].Code != vehicle.CodeDuplicateName {
		t.Errorf("warnings = %+v", r.Warnings)
	}
}

func TestE2EHiddenPart(t *testing.T) {
	r := testApp(t).Evaluate(`
(surface "wing" (station) (station :y 1) :mirrored true :visible false)
(fuselage "hull" (pt 0 0) (pt 1 0.2))
`, false)
	if got := meshNames(r); strings.Join(got, ",") != "hull" {
		t.Errorf("meshes = %v", got)
	}
}

func TestE2ESolidViewPreference(t *testing.T) {
	app := testApp(t)
	open := app.Evaluate(`(surface "w" (station) (station :y 1 :z 0.2) :mirrored false)`, false)
	solid := app.Evaluate(`(surface "w" (station) (station :y 1 :z 0.2) :mirrored false :solid-view true)`, false)
	if len(open.Meshes) != 1 || len(solid.Meshes) != 1 {
		t.Fatal("expected one mesh each")
	}
	if len(solid.Meshes[0].Indices) <= len(open.Meshes[0].Indices) {
		t.Errorf("solid view should add cap triangles: open %d, solid %d indices",
			len(open.Meshes[0].Indices), len(solid.Meshes[0].Indices))
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "(surface \"p%d\" (station) (station :y 1) :at (vec3 %d 0 0) :mirrored false)\n", i, 2*i)
	}
	r := testApp(t).Evaluate(b.String(), false)
	if len(r.Meshes) != 10 {
		t.Fatalf("expected 10 meshes, got %d", len(r.Meshes))
	}
	if r.Meshes[8].Color != r.Meshes[0].Color || r.Meshes[9].Color != r.Meshes[1].Color {
		t.Error("palette should wrap after 8 colours")
	}
}

func TestE2ENestedArithmetic(t *testing.T) {
	r := testApp(t).Evaluate(`
(def span 12)
(def root-chord (* 0.25 span))
(surface "wing"
  (station :y 0 :chord root-chord)
  (station :y (/ span 2.0) :chord (/ root-chord 2)))
`, false)
	if len(r.Errors) != 0 || len(r.Meshes) != 2 {
		t.Fatalf("result = %+v", r)
	}
}
