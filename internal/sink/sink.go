// Package sink provides a serialized, shareable wrapper around a byte sink
// so several producers can write framed output to one destination.
package sink

import (
	"errors"
	"io"
	"sync"
)

// ErrClosed indicates the shared sink has been closed.
var ErrClosed = errors.New("sink closed")

// Sink is a writable destination that can be flushed.
type Sink interface {
	io.Writer
	Flush() error
}

// sharedState is the single underlying sink plus the lock guarding it.
type sharedState struct {
	mu     sync.Mutex
	sink   Sink
	closed bool
}

// Shared wraps a Sink behind a mutex. Clones share the same underlying sink
// and lock, so at most one Write or Flush is in flight at a time regardless
// of how many owners exist. No fairness is guaranteed beyond what the lock
// provides.
type Shared struct {
	state *sharedState
}

// NewShared wraps s for shared use. The caller must not use s directly
// afterwards.
func NewShared(s Sink) *Shared {
	return &Shared{state: &sharedState{sink: s}}
}

// Clone returns a handle to the same underlying sink.
func (s *Shared) Clone() *Shared {
	return &Shared{state: s.state}
}

// Write delegates to the underlying sink under the lock.
func (s *Shared) Write(p []byte) (int, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if s.state.closed {
		return 0, ErrClosed
	}
	return s.state.sink.Write(p)
}

// Flush delegates to the underlying sink under the lock.
func (s *Shared) Flush() error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if s.state.closed {
		return ErrClosed
	}
	return s.state.sink.Flush()
}

// Close flushes the underlying sink and marks every handle closed. Later
// operations on any clone fail with ErrClosed. Close is idempotent.
func (s *Shared) Close() error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if s.state.closed {
		return nil
	}
	s.state.closed = true
	return s.state.sink.Flush()
}

// writerSink adapts a plain io.Writer to the Sink interface.
type writerSink struct {
	w io.Writer
}

func (ws writerSink) Write(p []byte) (int, error) { return ws.w.Write(p) }

func (ws writerSink) Flush() error {
	if f, ok := ws.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// FromWriter adapts w to a Sink. Flush is forwarded when w supports it and
// is a no-op otherwise.
func FromWriter(w io.Writer) Sink {
	if s, ok := w.(Sink); ok {
		return s
	}
	return writerSink{w: w}
}
