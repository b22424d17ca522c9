// Package graphtest provides an in-memory graph.Runner for tests.
package graphtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/rohankatakam/chaindash/internal/graph"
)

// Handler computes records for a query, typically from its parameters
type Handler func(q graph.Query) ([]graph.Record, error)

// Runner serves canned results keyed by query name and records every call
type Runner struct {
	mu       sync.Mutex
	results  map[string][]graph.Record
	errs     map[string]error
	handlers map[string]Handler
	calls    []graph.Query
}

// NewRunner creates an empty fake
func NewRunner() *Runner {
	return &Runner{
		results:  make(map[string][]graph.Record),
		errs:     make(map[string]error),
		handlers: make(map[string]Handler),
	}
}

// On sets the records returned for query name
func (r *Runner) On(name string, records ...graph.Record) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[name] = records
	return r
}

// Fail makes query name return err
func (r *Runner) Fail(name string, err error) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[name] = err
	return r
}

// Handle routes query name to h
func (r *Runner) Handle(name string, h Handler) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
	return r
}

// Run implements graph.Runner. Unknown names return no records.
func (r *Runner) Run(ctx context.Context, q graph.Query) ([]graph.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.calls = append(r.calls, q)
	err := r.errs[q.Name]
	h := r.handlers[q.Name]
	records := r.results[q.Name]
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if h != nil {
		return h(q)
	}
	return records, nil
}

// Calls returns the queries run so far, in order
func (r *Runner) Calls() []graph.Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]graph.Query, len(r.calls))
	copy(out, r.calls)
	return out
}

// Called returns the queries run under name
func (r *Runner) Called(name string) []graph.Query {
	var out []graph.Query
	for _, q := range r.Calls() {
		if q.Name == name {
			out = append(out, q)
		}
	}
	return out
}

// MustParam returns a parameter of the only call named name, panicking otherwise
func (r *Runner) MustParam(name, param string) any {
	calls := r.Called(name)
	if len(calls) != 1 {
		panic(fmt.Sprintf("graphtest: %d calls to %s", len(calls), name))
	}
	return calls[0].Params[param]
}
