// Package engine evaluates wigmesh vehicle scripts. It wraps zygomys in a
// sandboxed environment and produces a vehicle.Vehicle from user source.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/wigmesh/pkg/vehicle"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a model problem found after a successful evaluation. The
// affected part is still handed to the mesher, which reports it if it
// cannot be built.
type EvalWarning struct {
	Code    string
	Message string
	Part    string
}

// Check validates v and returns every violation as a warning.
func Check(v *vehicle.Vehicle) []EvalWarning {
	var out []EvalWarning
	for _, e := range vehicle.Validate(v) {
		out = append(out, EvalWarning{Code: e.Code, Message: e.Message, Part: e.Part})
	}
	return out
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Timeout returns the per-evaluation limit.
func (e *Engine) Timeout() time.Duration { return e.timeout }

// Evaluate runs source and returns the vehicle it describes, giving up
// after the engine timeout.
//
// A script that fails to parse or run yields eval errors and a nil
// vehicle. Timeouts, panics and superseded runs come back as the error.
func (e *Engine) Evaluate(source string) (*vehicle.Vehicle, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate bounded by ctx as well as the timeout.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*vehicle.Vehicle, []EvalError, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	gen := e.begin()

	done := make(chan scriptRun, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- scriptRun{err: fmt.Errorf("engine: script panicked: %v", r)}
			}
		}()
		v, errs, err := e.evaluate(source)
		done <- scriptRun{vehicle: v, errs: errs, err: err}
	}()
	return e.await(ctx, gen, done)
}

func (e *Engine) evaluate(source string) (*vehicle.Vehicle, []EvalError, error) {
	v := vehicle.New("")
	if strings.TrimSpace(source) == "" {
		return v, nil, nil
	}

	// Sandbox mode keeps user code away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, v)

	if err := env.LoadString(rewriteScript(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return v, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
