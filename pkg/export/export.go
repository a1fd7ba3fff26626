// Package export flattens an assembly into one triangle skin and writes it
// as STL.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/chazu/wigmesh/pkg/tessellate"
	"github.com/hschendel/stl"
	"gonum.org/v1/gonum/spatial/r3"
)

// Skin combines every part of a into a single triangulated mesh with
// coincident vertices welded, so mirrored halves share their root seam.
func Skin(a *tessellate.Assembly) *geom.Solid {
	out := &geom.Solid{}
	for _, name := range a.Order {
		out = out.Append(a.Part(name).Mesh)
	}
	return out.Triangulate().Clean(geom.WeldTolerance)
}

// ToSTL converts s to an STL solid with per-face normals. Polygons are
// triangulated first.
func ToSTL(s *geom.Solid, name string) *stl.Solid {
	tri := s.Triangulate()
	out := &stl.Solid{
		Name:      name,
		Triangles: make([]stl.Triangle, 0, len(tri.Faces)),
	}
	for _, t := range tri.Triangles() {
		n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
		if l := r3.Norm(n); l > 0 {
			n = r3.Scale(1/l, n)
		}
		out.Triangles = append(out.Triangles, stl.Triangle{
			Normal:   vec3(n),
			Vertices: [3]stl.Vec3{vec3(t[0]), vec3(t[1]), vec3(t[2])},
		})
	}
	return out
}

func vec3(v r3.Vec) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// WriteSTL writes s to w as binary STL, or ASCII when ascii is set.
func WriteSTL(w io.Writer, s *geom.Solid, name string, ascii bool) error {
	if s.IsEmpty() {
		return fmt.Errorf("export: %q has no faces", name)
	}
	out := ToSTL(s, name)
	out.IsAscii = ascii
	if err := out.WriteAll(w); err != nil {
		return fmt.Errorf("export: write %q: %w", name, err)
	}
	return nil
}

// SaveSTL writes s to the file at path.
func SaveSTL(path string, s *geom.Solid, name string, ascii bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := WriteSTL(f, s, name, ascii); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
