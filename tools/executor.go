// Tool Executor.
//
// Information Hiding:
// - Lookup, validation and output checking order
// - Per-execution metrics and logging

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/richinex/modelgate/observe"
)

// Executor runs catalog tools once each. There is no retry: a failed
// call is reported back to the model, which decides what to do next.
type Executor struct {
	registry *Registry
	obs      *observe.Observer
}

// NewExecutor creates an executor over the given catalog.
func NewExecutor(registry *Registry, obs *observe.Observer) *Executor {
	if obs == nil {
		obs = observe.Discard()
	}
	return &Executor{registry: registry, obs: obs}
}

// Registry returns the catalog the executor dispatches to.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute looks up the named tool, validates the arguments, runs it under the
// policy and validates its output.
func (e *Executor) Execute(ctx context.Context, name string, args json.RawMessage, policy Policy) (any, error) {
	tool, ok := e.registry.Get(name)
	if !ok {
		recordExecution("unknown", "error", 0)
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	ctx, span := e.obs.StartSpan(ctx, "tool.execute")
	defer span.End()
	span.SetAttributes(attribute.String("tool.name", name))

	start := time.Now()
	out, err := e.run(ctx, tool, args, policy)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordExecution(name, "error", elapsed)
		e.obs.Log().Info().
			Str("tool", name).
			Err(err).
			Msg("tool failed")
		return nil, err
	}

	recordExecution(name, "success", elapsed)
	e.obs.Log().Debug().
		Str("tool", name).
		Int("duration_ms", int(elapsed.Milliseconds())).
		Msg("tool complete")
	return out, nil
}

func (e *Executor) run(ctx context.Context, tool Tool, args json.RawMessage, policy Policy) (any, error) {
	if err := tool.Validate(args); err != nil {
		return nil, err
	}
	out, err := tool.Execute(ctx, args, policy)
	if err != nil {
		return nil, err
	}
	if err := validateOutput(out); err != nil {
		return nil, err
	}
	return out, nil
}
