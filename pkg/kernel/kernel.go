// Package kernel defines the boolean kernel interface used to merge part
// solids, and the flat triangle mesh handed to renderers. Implementations
// (sdfx) provide the union behind this interface so the merge pipeline can
// swap backends, or fall back to plain concatenation, without changing.
package kernel

import (
	"errors"

	"github.com/chazu/wigmesh/pkg/geom"
)

// ErrKernel marks a failed boolean operation.
var ErrKernel = errors.New("boolean kernel failure")

// Kernel merges two watertight solids into one.
type Kernel interface {
	// Union returns the boolean union of a and b. Neither operand is
	// modified.
	Union(a, b *geom.Solid) (*geom.Solid, error)
}

// Concat is a Kernel that joins its operands without a boolean: vertices
// and faces are appended and coincident vertices welded. Overlapping
// operands keep their interior faces.
type Concat struct{}

// Compile-time interface check.
var _ Kernel = Concat{}

// Union appends b to a and welds the result.
func (Concat) Union(a, b *geom.Solid) (*geom.Solid, error) {
	return a.Append(b).Clean(geom.WeldTolerance), nil
}
