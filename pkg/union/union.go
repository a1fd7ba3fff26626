// Package union merges every part of a vehicle into one solid through a
// boolean kernel, reporting progress as it goes. A pairwise union the
// kernel rejects falls back to concatenating the two operands so one bad
// pair never aborts the merge.
package union

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/chazu/wigmesh/pkg/kernel"
	"github.com/chazu/wigmesh/pkg/tessellate"
	"github.com/chazu/wigmesh/pkg/vehicle"
	"github.com/rs/zerolog"
)

// ErrEmptyResult reports a vehicle that produced no solid to merge.
var ErrEmptyResult = errors.New("union: no solids produced")

// Progress receives a milestone message and a completion percentage.
// Percentages never decrease and the last call reports 100.
type Progress func(msg string, pct int)

// Options configure a merge run.
type Options struct {
	Resolution geom.Resolution
	// Kernel performs the pairwise unions; nil concatenates.
	Kernel kernel.Kernel
	// Refine is the number of midpoint subdivision passes applied to
	// each solid before merging.
	Refine int
	Logger *zerolog.Logger
}

// progress wraps a Progress so percentages are clamped and monotonic.
type progress struct {
	fn   Progress
	last int
}

func (p *progress) report(msg string, pct int) {
	pct = max(p.last, min(pct, 100))
	p.last = pct
	if p.fn != nil {
		p.fn(msg, pct)
	}
}

// Run generates every part of v as a solid, prepares each one and merges
// them pairwise into a single solid, largest first. Cancelling ctx stops the run between
// steps with ctx.Err(). Parts that fail to generate are logged and left
// out; ErrEmptyResult is returned when none remain.
func Run(ctx context.Context, v *vehicle.Vehicle, opts Options, fn Progress) (*geom.Solid, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	k := opts.Kernel
	if k == nil {
		k = kernel.Concat{}
	}
	p := &progress{fn: fn}

	p.report("generating solids", 0)
	a, err := tessellate.New(opts.Resolution, tessellate.WithLogger(log)).MeshVehicle(v, true)
	if err != nil {
		return nil, fmt.Errorf("union: %w", err)
	}
	for _, pe := range a.Errors {
		log.Warn().Str("part", pe.Part).Err(pe.Err).Msg("part left out of union")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	solids := pairMirrors(a)
	if len(solids) == 0 {
		return nil, ErrEmptyResult
	}
	p.report(fmt.Sprintf("generated %d solids", len(solids)), 10)

	for i, s := range solids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		solids[i] = prepare(s, opts.Refine)
		p.report(fmt.Sprintf("prepared solid %d of %d", i+1, len(solids)), 10+30*(i+1)/len(solids))
	}
	// The largest body is the base the others merge into.
	slices.SortStableFunc(solids, func(a, b *geom.Solid) int {
		return cmp.Compare(b.TriangleCount(), a.TriangleCount())
	})

	result := solids[0]
	steps := len(solids) - 1
	for i, s := range solids[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		merged, err := k.Union(result, s)
		if err != nil {
			log.Warn().Err(err).Int("step", i+1).Msg("kernel union failed, concatenating")
			merged, _ = kernel.Concat{}.Union(result, s)
		}
		result = merged
		p.report(fmt.Sprintf("merged %d of %d", i+1, steps), 40+55*(i+1)/steps)
	}

	if result.IsEmpty() {
		return nil, ErrEmptyResult
	}
	log.Debug().Int("triangles", result.TriangleCount()).Msg("union complete")
	p.report("done", 100)
	return result, nil
}

// pairMirrors returns the assembly's solids in order, with each mirrored
// surface welded to the primary half emitted just before it. Halves
// rooted on the symmetry plane are open at the root; welded together they
// close.
func pairMirrors(a *tessellate.Assembly) []*geom.Solid {
	var out []*geom.Solid
	for i := 0; i < len(a.Order); i++ {
		p := a.Part(a.Order[i])
		s := p.Mesh
		if i+1 < len(a.Order) {
			if m := a.Part(a.Order[i+1]); m.Mirrored && !p.Mirrored && p.Kind == tessellate.KindSurface {
				s = s.Append(m.Mesh).Clean(geom.WeldTolerance)
				i++
			}
		}
		out = append(out, s)
	}
	return out
}

// prepare refines s, welds it and orients it outward.
func prepare(s *geom.Solid, refine int) *geom.Solid {
	for i := 0; i < refine; i++ {
		s = s.Subdivide()
	}
	return s.Clean(geom.WeldTolerance).OrientOutward()
}
