package frame

import (
	"bytes"
	"fmt"
	"io"
)

// flusher is implemented by sinks that buffer writes.
type flusher interface {
	Flush() error
}

// Encoder writes Content-Length framed messages to a sink. Each message is
// emitted as a single Write call and flushed immediately if the sink
// supports it. Output is append-only; previously written bytes are never
// touched.
//
// An Encoder is not safe for concurrent use; wrap the sink in a shared
// adapter if several encoders target the same destination.
type Encoder struct {
	w   io.Writer
	buf bytes.Buffer
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode frames msg and writes it out. The header declares the payload's
// byte length in decimal.
func (e *Encoder) Encode(msg string) error {
	e.buf.Reset()
	fmt.Fprintf(&e.buf, "Content-Length: %d\r\n\r\n", len(msg))
	e.buf.WriteString(msg)

	if _, err := e.w.Write(e.buf.Bytes()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if f, ok := e.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush frame: %w", err)
		}
	}
	return nil
}
