package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/takaishi/yoink/logging"
)

// Query is an issued request tagged with its generation. Results from a
// generation older than the orchestrator's current one are stale.
type Query struct {
	Gen     uint64
	Request Request
	handle  Handle
}

// Next reads the next batch of this query.
func (q Query) Next() (Batch, bool) {
	if q.handle == nil {
		return Batch{}, false
	}
	return q.handle.Next()
}

// Orchestrator owns the active backend invocation. It is driven from a
// single goroutine, the UI event loop.
type Orchestrator struct {
	ctx      context.Context
	backends map[Mode]Backend
	gen      uint64
	active   Handle
}

// NewOrchestrator wires one backend per mode.
func NewOrchestrator(ctx context.Context, name, content Backend) *Orchestrator {
	return &Orchestrator{
		ctx:      ctx,
		backends: map[Mode]Backend{ModeFilename: name, ModeContent: content},
	}
}

// Issue cancels the in-flight invocation and starts req.
func (o *Orchestrator) Issue(req Request) Query {
	o.Cancel()
	o.gen++
	q := Query{Gen: o.gen, Request: req}

	backend, ok := o.backends[req.Mode]
	if !ok || backend == nil {
		q.handle = failed(fmt.Errorf("%w: no backend for %s mode", ErrInvocation, req.Mode))
		return q
	}
	q.handle = backend.Issue(o.ctx, req)
	o.active = q.handle

	logging.For("search").Debug("search_issued",
		slog.Uint64("gen", q.Gen),
		slog.String("mode", req.Mode.String()),
		slog.String("query", req.Query),
		slog.Bool("case_sensitive", req.CaseSensitive),
		slog.Bool("show_hidden", req.ShowHidden))
	return q
}

// Cancel stops the in-flight invocation, if any.
func (o *Orchestrator) Cancel() {
	if o.active != nil {
		o.active.Cancel()
		o.active = nil
	}
}

// Current reports whether gen is the latest issued generation.
func (o *Orchestrator) Current(gen uint64) bool {
	return gen == o.gen
}

// Drain reads every batch of q. The first error ends the read.
func Drain(q Query) ([]Candidate, error) {
	var out []Candidate
	for {
		b, ok := q.Next()
		if !ok {
			return out, nil
		}
		if b.Err != nil {
			return out, b.Err
		}
		out = append(out, b.Candidates...)
	}
}

type failedHandle struct{ ch chan Batch }

func failed(err error) Handle {
	ch := make(chan Batch, 1)
	ch <- Batch{Err: err}
	close(ch)
	return failedHandle{ch: ch}
}

func (f failedHandle) Next() (Batch, bool) {
	b, ok := <-f.ch
	return b, ok
}

func (failedHandle) Cancel() {}
