package bridge

import "errors"

// Standard errors returned by the bridge.
var (
	// ErrWouldBlock indicates no data is available yet. The caller should
	// wait on Wake and retry; it is the only non-terminal read error.
	ErrWouldBlock = errors.New("waiting on input to be available")

	// ErrReaderStopped indicates the read worker terminated without
	// signaling end of input.
	ErrReaderStopped = errors.New("read worker has stopped")

	// ErrClosed indicates the reader has been closed.
	ErrClosed = errors.New("reader closed")
)
