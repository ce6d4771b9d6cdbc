package search

import (
	"context"
	"errors"
	"time"
)

// ErrInvocation marks a backend subprocess that failed mid-session.
var ErrInvocation = errors.New("backend invocation failed")

const (
	batchSize     = 256
	flushInterval = 40 * time.Millisecond
)

// Batch is a chunk of results from one invocation. A batch carrying Err is
// the last one.
type Batch struct {
	Candidates []Candidate
	Err        error
}

// Handle is one cancellable backend invocation.
type Handle interface {
	// Next blocks until a batch is available. ok is false once the
	// invocation has finished or was cancelled.
	Next() (b Batch, ok bool)
	// Cancel stops the invocation; pending output is discarded.
	Cancel()
}

// Backend runs queries against one external engine.
type Backend interface {
	Issue(ctx context.Context, req Request) Handle
}

// stream is the Handle shared by the subprocess backends.
type stream struct {
	ch     chan Batch
	ctx    context.Context
	cancel context.CancelFunc
}

func newStream(parent context.Context) *stream {
	ctx, cancel := context.WithCancel(parent)
	return &stream{ch: make(chan Batch, 4), ctx: ctx, cancel: cancel}
}

func (s *stream) Next() (Batch, bool) {
	b, ok := <-s.ch
	return b, ok
}

func (s *stream) Cancel() { s.cancel() }

// send delivers b unless the stream was cancelled first.
func (s *stream) send(b Batch) bool {
	select {
	case s.ch <- b:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// finish sends a terminal error, if any, and closes the stream.
func (s *stream) finish(err error) {
	if err != nil && s.ctx.Err() == nil {
		s.send(Batch{Err: err})
	}
	close(s.ch)
	s.cancel()
}

// batcher groups candidates so the UI redraws per batch, not per line.
type batcher struct {
	s     *stream
	buf   []Candidate
	last  time.Time
	total int
	limit int
}

func newBatcher(s *stream, limit int) *batcher {
	return &batcher{s: s, last: time.Now(), limit: limit}
}

// add queues c and reports whether the producer should keep going.
func (b *batcher) add(c Candidate) bool {
	b.buf = append(b.buf, c)
	b.total++
	if b.limit > 0 && b.total >= b.limit {
		b.flush()
		return false
	}
	if len(b.buf) >= batchSize || time.Since(b.last) >= flushInterval {
		return b.flush()
	}
	return true
}

func (b *batcher) flush() bool {
	b.last = time.Now()
	if len(b.buf) == 0 {
		return b.s.ctx.Err() == nil
	}
	out := b.buf
	b.buf = nil
	return b.s.send(Batch{Candidates: out})
}
