package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/wigmesh/pkg/vehicle"
)

// EvalTimeout bounds one script run unless WithTimeout sets another limit.
const EvalTimeout = 5 * time.Second

var (
	// ErrEvalTimeout reports a script that ran past the engine's limit.
	ErrEvalTimeout = errors.New("engine: script timed out")
	// ErrSuperseded reports a run overtaken by a newer Evaluate call.
	ErrSuperseded = errors.New("engine: script superseded by a newer one")
)

// scriptRun is what an interpreter goroutine hands back.
type scriptRun struct {
	vehicle *vehicle.Vehicle
	errs    []EvalError
	err     error
}

// await blocks until run gen delivers on done or ctx ends. An abandoned
// interpreter keeps going; done is buffered so its late send never
// blocks, and the result is dropped.
func (e *Engine) await(ctx context.Context, gen uint64, done <-chan scriptRun) (*vehicle.Vehicle, []EvalError, error) {
	select {
	case r := <-done:
		if !e.isCurrent(gen) {
			return nil, nil, ErrSuperseded
		}
		return r.vehicle, r.errs, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("%w after %s", ErrEvalTimeout, e.timeout)
		}
		return nil, nil, ctx.Err()
	}
}

// begin starts a new generation and returns its number.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) isCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}
