package bridge

import (
	"io"
	"sync/atomic"
)

// readResult carries the outcome of one blocking read performed by the
// worker. A result with no data and no error signals end of input.
type readResult struct {
	data []byte
	err  error
}

// AsyncReader presents a blocking io.Reader as a non-blocking, pollable
// source. All blocking happens on a dedicated worker goroutine; Read never
// waits.
type AsyncReader struct {
	// sizeCh carries the requested buffer capacity to the worker.
	// Capacity 1: at most one request may be outstanding.
	sizeCh chan int

	// resultCh carries read results back. Capacity 1: the worker cannot
	// outrun the poller by more than one buffer.
	resultCh chan readResult

	// wake receives a token whenever the worker publishes a result.
	wake chan struct{}

	// done is closed when the worker exits.
	done chan struct{}

	// quit tells the worker to stop.
	quit chan struct{}

	// debt holds bytes fetched by the worker that did not fit in the
	// caller's buffer. Drained before any new request is issued.
	debt []byte

	closed atomic.Bool
}

// New creates an AsyncReader over src and starts its worker goroutine.
// The source is handed off to the worker and must not be used by the
// caller afterwards.
func New(src io.Reader) *AsyncReader {
	r := &AsyncReader{
		sizeCh:   make(chan int, 1),
		resultCh: make(chan readResult, 1),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		quit:     make(chan struct{}),
	}
	go r.work(src)
	return r
}

// work is the blocking domain: it performs one read per requested size,
// strictly in request order, until told to quit.
func (r *AsyncReader) work(src io.Reader) {
	defer close(r.done)
	for {
		var size int
		select {
		case <-r.quit:
			return
		case size = <-r.sizeCh:
		}

		buf := make([]byte, size)
		n, err := src.Read(buf)

		// A read that returns bytes together with an error is
		// normalized to bytes only; the error resurfaces on the next
		// empty read. Keeps the polling side to one outcome per result.
		res := readResult{data: buf[:n]}
		if n == 0 {
			res.err = err
		}

		select {
		case <-r.quit:
			return
		case r.resultCh <- res:
			r.notify()
		}
	}
}

// notify wakes a waiting poller without ever blocking the worker.
func (r *AsyncReader) notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Wake returns a channel that receives a token when a read result becomes
// available. The driving loop should wait on it after ErrWouldBlock.
func (r *AsyncReader) Wake() <-chan struct{} {
	return r.wake
}

// Read copies available bytes into p without blocking.
//
// It returns ErrWouldBlock when no result is ready yet, io.EOF once the
// source is exhausted, and any source error verbatim. Previously fetched
// excess bytes are always delivered before a new read is requested.
func (r *AsyncReader) Read(p []byte) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	if len(r.debt) > 0 {
		n := copy(p, r.debt)
		r.debt = r.debt[n:]
		return n, nil
	}

	select {
	case res := <-r.resultCh:
		return r.deliver(p, res)
	default:
	}

	select {
	case <-r.done:
		// Worker is gone; a final buffered result may remain.
		select {
		case res := <-r.resultCh:
			return r.deliver(p, res)
		default:
			return 0, ErrReaderStopped
		}
	default:
	}

	select {
	case r.sizeCh <- len(p):
		// Request accepted. The result is normally produced later,
		// but take it now if the worker already finished.
		select {
		case res := <-r.resultCh:
			return r.deliver(p, res)
		default:
			return 0, ErrWouldBlock
		}
	default:
		// A request is already outstanding.
		return 0, ErrWouldBlock
	}
}

// deliver copies a worker result into p, banking any excess as debt.
func (r *AsyncReader) deliver(p []byte, res readResult) (int, error) {
	if res.err != nil {
		return 0, res.err
	}
	if len(res.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, res.data)
	r.debt = append(r.debt, res.data[n:]...)
	return n, nil
}

// Close stops the worker and releases resources. It does not close the
// underlying source; a worker blocked inside a read returns once the
// source's owner closes it. Close is idempotent.
func (r *AsyncReader) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	close(r.quit)
	return nil
}
