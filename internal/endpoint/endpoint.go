package endpoint

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dshills/lspwire/internal/bridge"
	"github.com/dshills/lspwire/internal/frame"
	"github.com/dshills/lspwire/internal/rpc"
	"github.com/dshills/lspwire/internal/sink"
)

// defaultReadSize is the buffer capacity requested from the bridge per poll.
const defaultReadSize = 8 * 1024

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithReadSize sets the per-poll read buffer size.
func WithReadSize(n int) Option {
	return func(e *Endpoint) {
		if n > 0 {
			e.readSize = n
		}
	}
}

// Endpoint runs a JSON-RPC message loop over a byte source and sink.
type Endpoint struct {
	reader     *bridge.AsyncReader
	decoder    *frame.Decoder
	encoder    *frame.Encoder
	out        *sink.Shared
	dispatcher *rpc.Dispatcher

	readSize int
	buf      []byte // undecoded bytes carried between polls
}

// New creates an Endpoint reading requests from r and writing responses to
// w. The reader is handed off to the bridge worker; the writer is wrapped
// in a shared sink so Notify may be used concurrently with the loop.
func New(r io.Reader, w io.Writer, d *rpc.Dispatcher, opts ...Option) *Endpoint {
	out := sink.NewShared(sink.FromWriter(w))
	e := &Endpoint{
		reader:     bridge.New(r),
		decoder:    frame.NewDecoder(),
		encoder:    frame.NewEncoder(out),
		out:        out,
		dispatcher: d,
		readSize:   defaultReadSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Notify frames payload and writes it to the shared sink. Safe to call from
// any goroutine, including while Run is active.
func (e *Endpoint) Notify(payload string) error {
	enc := frame.NewEncoder(e.out.Clone())
	return enc.Encode(payload)
}

// Run drives the message loop until the source is exhausted, the context is
// canceled, or the stream fails. A clean end of input returns nil; decode
// and transport errors are returned to the caller, which decides whether to
// tear down the connection.
func (e *Endpoint) Run(ctx context.Context) error {
	chunk := make([]byte, e.readSize)
	for {
		n, err := e.reader.Read(chunk)
		switch {
		case err == nil:
			e.buf = append(e.buf, chunk[:n]...)
			if err := e.drain(); err != nil {
				return err
			}
		case errors.Is(err, bridge.ErrWouldBlock):
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.reader.Wake():
			}
		case errors.Is(err, io.EOF):
			return e.drain()
		default:
			return fmt.Errorf("read transport: %w", err)
		}
	}
}

// drain decodes and dispatches every complete message currently buffered.
func (e *Endpoint) drain() error {
	total := 0
	for {
		msg, ok, n, err := e.decoder.Decode(e.buf[total:])
		total += n
		if err != nil {
			return fmt.Errorf("decode frame: %w", err)
		}
		if !ok {
			break
		}
		if resp, ok := e.dispatcher.Dispatch(msg); ok {
			if err := e.encoder.Encode(resp); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
	}
	if total > 0 {
		rest := copy(e.buf, e.buf[total:])
		e.buf = e.buf[:rest]
	}
	return nil
}

// Close stops the bridge worker and closes the shared sink. Close is
// idempotent; it does not close the underlying source or destination.
func (e *Endpoint) Close() error {
	err := e.reader.Close()
	if cerr := e.out.Close(); err == nil {
		err = cerr
	}
	return err
}
