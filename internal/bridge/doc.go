// Package bridge exposes a blocking byte source as a pollable, non-blocking
// reader.
//
// A language server's stdin is a blocking stream, but the loop that drives
// decoding and dispatch must never stall on I/O. AsyncReader solves this by
// confining every blocking Read call to a single dedicated worker goroutine
// and talking to it over a pair of capacity-1 channels: one carrying the
// requested buffer size, one carrying the read result. The polling side
// issues at most one request at a time and reports ErrWouldBlock instead of
// waiting, so the caller can suspend on Wake and retry.
//
// # Usage
//
//	r := bridge.New(os.Stdin)
//	defer r.Close()
//
//	buf := make([]byte, 4096)
//	for {
//	    n, err := r.Read(buf)
//	    switch {
//	    case err == nil:
//	        consume(buf[:n])
//	    case errors.Is(err, bridge.ErrWouldBlock):
//	        <-r.Wake() // suspend until the worker produces a result
//	    case errors.Is(err, io.EOF):
//	        return
//	    default:
//	        // transport failure, tear down the connection
//	    }
//	}
//
// # Ordering and backpressure
//
// The worker serves requests strictly in order, and the capacity-1 channel
// pair bounds how far it can run ahead: at most one unserved request and one
// unconsumed result exist at any time. If a result carries more bytes than
// the caller's buffer holds, the excess is retained internally and drained
// by subsequent Read calls before any new request is issued, so no fetched
// byte is ever dropped or reordered.
//
// # Thread safety
//
// Read is intended for a single polling goroutine. Close may be called from
// any goroutine and is idempotent.
package bridge
