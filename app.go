package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/chazu/wigmesh/internal/config"
	"github.com/chazu/wigmesh/pkg/engine"
	"github.com/chazu/wigmesh/pkg/export"
	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/chazu/wigmesh/pkg/kernel"
	"github.com/chazu/wigmesh/pkg/kernel/sdfx"
	"github.com/chazu/wigmesh/pkg/tessellate"
	"github.com/chazu/wigmesh/pkg/union"
	"github.com/chazu/wigmesh/pkg/vehicle"
	"github.com/rs/zerolog"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the script engine, the assembler and the union pipeline
// together. Its methods are what an editor front end binds to.
type App struct {
	cfg    *config.Config
	log    zerolog.Logger
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Code    string `json:"code,omitempty"`
	Part    string `json:"part,omitempty"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App from cfg. A nil cfg uses the defaults.
func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		cfg:    cfg,
		log:    log,
		engine: engine.NewEngine(engine.WithTimeout(cfg.EvalTimeout)),
		kernel: newKernel(cfg.Union),
	}
}

func newKernel(c config.UnionConfig) kernel.Kernel {
	if c.Kernel == config.KernelConcat {
		return kernel.Concat{}
	}
	return sdfx.New(c.MeshCells)
}

func (a *App) mesher() *tessellate.Mesher {
	return tessellate.New(a.cfg.Resolution, tessellate.WithLogger(a.log))
}

// Evaluate runs source and meshes the resulting vehicle for display.
// When solid is set every part is capped. Script failures land in Errors;
// validation problems and parts that could not be built land in Warnings
// and leave the remaining meshes intact.
func (a *App) Evaluate(source string, solid bool) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	v, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error().Err(err).Msg("evaluate failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	for _, w := range engine.Check(v) {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Code:    w.Code,
			Part:    w.Part,
			Message: w.Message,
		})
	}

	asm, err := a.mesher().MeshVehicle(v, solid)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	for _, pe := range asm.Errors {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Part:    pe.Part,
			Message: pe.Err.Error(),
		})
	}

	for i, m := range asm.DisplayMeshes() {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}

// Load runs source and returns the vehicle it describes. Script errors
// are joined into the returned error.
func (a *App) Load(source string) (*vehicle.Vehicle, error) {
	v, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}
	return v, nil
}

// Skin meshes v as closed solids and flattens every part into one
// triangle mesh for export. Display preferences do not apply.
func (a *App) Skin(v *vehicle.Vehicle) (*geom.Solid, error) {
	return a.flatten(v, true)
}

// Snapshot flattens the display meshing of v, honouring per-part solid
// view when solid is false.
func (a *App) Snapshot(v *vehicle.Vehicle, solid bool) (*geom.Solid, error) {
	return a.flatten(v, solid)
}

func (a *App) flatten(v *vehicle.Vehicle, solid bool) (*geom.Solid, error) {
	asm, err := a.mesher().MeshVehicle(v, solid)
	if err != nil {
		return nil, err
	}
	if asm.Len() == 0 {
		return nil, fmt.Errorf("no parts could be generated (%d failed)", len(asm.Errors))
	}
	return export.Skin(asm), nil
}

func (a *App) unionOptions() union.Options {
	return union.Options{
		Resolution: a.cfg.Resolution,
		Kernel:     a.kernel,
		Refine:     a.cfg.Union.Refine,
		Logger:     &a.log,
	}
}

// Union merges every part of v into a single solid.
func (a *App) Union(ctx context.Context, v *vehicle.Vehicle, fn union.Progress) (*geom.Solid, error) {
	return union.Run(ctx, v, a.unionOptions(), fn)
}

// UnionEvent is one message from UnionAsync. The final event has Done set
// and carries the result.
type UnionEvent struct {
	Message string
	Percent int
	Done    bool
	Solid   *geom.Solid
	Err     error
}

// UnionAsync runs Union on a goroutine and streams its progress. The
// channel is closed after the final event. The caller must drain it or
// cancel ctx.
func (a *App) UnionAsync(ctx context.Context, v *vehicle.Vehicle) <-chan UnionEvent {
	ch := make(chan UnionEvent, 8)
	send := func(ev UnionEvent) {
		select {
		case ch <- ev:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				send(UnionEvent{Done: true, Err: fmt.Errorf("panic during union: %v", r)})
			}
		}()

		s, err := union.Run(ctx, v, a.unionOptions(), func(msg string, pct int) {
			send(UnionEvent{Message: msg, Percent: pct})
		})
		final := UnionEvent{Done: true, Solid: s, Err: err}
		if err == nil {
			final.Message, final.Percent = "done", 100
		}
		// After cancellation the final event is still delivered if the
		// buffer has room.
		select {
		case ch <- final:
		case <-ctx.Done():
			select {
			case ch <- final:
			default:
			}
		}
	}()
	return ch
}
