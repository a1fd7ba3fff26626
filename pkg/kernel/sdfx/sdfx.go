// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Operands are turned into
// signed distance fields, combined with sdf.Union3D and re-meshed with
// marching cubes.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/chazu/wigmesh/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

const (
	// DefaultMeshCells is the least number of marching cubes cells along
	// the longest axis of the union.
	DefaultMeshCells = 96

	// MaxMeshCells bounds the resolution raised for thin operands.
	MaxMeshCells = 320

	// thinCells is how many cells the thinnest operand should span.
	thinCells = 4
)

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a kernel that re-meshes with at least the given number of
// marching cubes cells; cells <= 0 uses DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// Cells returns the least marching cubes resolution.
func (k *SdfxKernel) Cells() int { return k.cells }

// CellsFor returns the resolution used to union a and b: enough cells
// along the longest axis that the thinnest extent of either operand spans
// thinCells of them, between Cells and MaxMeshCells.
func (k *SdfxKernel) CellsFor(a, b *geom.Solid) int {
	alo, ahi := a.Bounds()
	blo, bhi := b.Bounds()
	longest := maxAxis(r3.Sub(r3Max(ahi, bhi), r3Min(alo, blo)))
	thinnest := math.Min(minAxis(r3.Sub(ahi, alo)), minAxis(r3.Sub(bhi, blo)))
	if thinnest <= 0 || longest <= 0 {
		return k.cells
	}
	want := int(math.Ceil(longest * thinCells / thinnest))
	return max(k.cells, min(want, MaxMeshCells))
}

func maxAxis(v r3.Vec) float64 { return math.Max(v.X, math.Max(v.Y, v.Z)) }
func minAxis(v r3.Vec) float64 { return math.Min(v.X, math.Min(v.Y, v.Z)) }

func r3Min(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func r3Max(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Union returns the union of two watertight solids. Operands with open
// or non-manifold edges are rejected with kernel.ErrKernel, as is a union
// that meshes to nothing.
func (k *SdfxKernel) Union(a, b *geom.Solid) (*geom.Solid, error) {
	for _, s := range []*geom.Solid{a, b} {
		if s.IsEmpty() {
			return nil, fmt.Errorf("sdfx: empty operand: %w", kernel.ErrKernel)
		}
		if topo := s.Topology(); !topo.Watertight() {
			return nil, fmt.Errorf("sdfx: operand not watertight (%d boundary, %d non-manifold edges): %w",
				topo.BoundaryEdges, topo.NonManifoldEdges, kernel.ErrKernel)
		}
	}

	u := sdf.Union3D(newMeshSDF(a), newMeshSDF(b))
	renderer := render.NewMarchingCubesUniform(k.CellsFor(a, b))
	triangles := render.ToTriangles(u, renderer)

	out := &geom.Solid{Vertices: make([]r3.Vec, 0, len(triangles)*3)}
	for _, tri := range triangles {
		base := len(out.Vertices)
		for j := 0; j < 3; j++ {
			v := tri[j]
			out.Vertices = append(out.Vertices, r3.Vec{X: v.X, Y: v.Y, Z: v.Z})
		}
		out.Faces = append(out.Faces, []int{base, base + 1, base + 2})
	}

	out = out.Clean(geom.WeldTolerance)
	if out.IsEmpty() {
		return nil, fmt.Errorf("sdfx: union produced no triangles: %w", kernel.ErrKernel)
	}
	return out.OrientOutward(), nil
}
