package ranking

import (
	"context"
	"sync/atomic"
)

type traceKey struct{}

// Trace carries per-request diagnostics through the scoring pipeline.
type Trace struct {
	ID string

	fuzzy     atomic.Bool
	fuzzyDocs atomic.Int64
}

// NewTrace creates a Trace for the request identified by id.
func NewTrace(id string) *Trace {
	return &Trace{ID: id}
}

// WithTrace returns a copy of ctx carrying t.
func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// TraceFrom returns the Trace stored in ctx, or nil.
func TraceFrom(ctx context.Context) *Trace {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(traceKey{}).(*Trace)
	return t
}

// markFuzzy records a fuzzy pass and reports whether it was the first one in
// this request.
func (t *Trace) markFuzzy() bool {
	if t == nil {
		return false
	}
	t.fuzzyDocs.Add(1)
	return t.fuzzy.CompareAndSwap(false, true)
}

// FuzzyUsed reports whether any document needed the fuzzy pass.
func (t *Trace) FuzzyUsed() bool {
	return t != nil && t.fuzzy.Load()
}

// FuzzyDocuments returns how many documents went through the fuzzy pass.
func (t *Trace) FuzzyDocuments() int64 {
	if t == nil {
		return 0
	}
	return t.fuzzyDocs.Load()
}
