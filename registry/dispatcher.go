package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/niloybiswas/toolhost/log"
	"github.com/niloybiswas/toolhost/provider"
)

// ToolExecutionError wraps a provider-side failure so callers can report it
// without depending on provider-specific error shapes.
type ToolExecutionError struct {
	Provider string
	Tool     string
	Err      error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed on provider %s: %v", e.Tool, e.Provider, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// Call is one tool invocation requested by the model.
type Call struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// Result pairs a call with its outcome.
type Result struct {
	Call  Call
	Value interface{}
	Err   error
}

// Dispatcher routes tool calls through the registry, bounds each call with
// a timeout, and normalizes provider failures.
type Dispatcher struct {
	registry *Registry
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher. A zero timeout disables the per-call
// bound.
func NewDispatcher(registry *Registry, timeout time.Duration) *Dispatcher {
	return &Dispatcher{registry: registry, timeout: timeout}
}

// Invoke resolves the owning provider and executes one tool call.
// UnknownToolError and SchemaError pass through unchanged; anything else a
// provider returns is wrapped in *ToolExecutionError.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	session, err := d.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	started := time.Now()
	value, err := session.Call(ctx, name, args)
	if err != nil {
		var schemaErr *provider.SchemaError
		var unknownErr *UnknownToolError
		if errors.As(err, &schemaErr) || errors.As(err, &unknownErr) {
			return nil, err
		}
		return nil, &ToolExecutionError{Provider: session.Identity(), Tool: name, Err: err}
	}

	log.Debugf(ctx, "Tool %s completed in %s", name, time.Since(started).Round(time.Millisecond))
	return value, nil
}

// InvokeAll executes a model turn's tool calls in parallel. Providers are
// independent, and each call carries its own timeout, so one stuck provider
// cannot stall the rest of the round. Results keep the input order.
func (d *Dispatcher) InvokeAll(ctx context.Context, calls []Call) []Result {
	results := make([]Result, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call Call) {
			defer wg.Done()
			value, err := d.Invoke(ctx, call.Name, call.Arguments)
			results[i] = Result{Call: call, Value: value, Err: err}
		}(i, call)
	}
	wg.Wait()

	return results
}
