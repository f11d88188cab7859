// Package endpoint wires the transport core into a runnable message loop:
// bridge for non-blocking input, frame for message boundaries, rpc for
// dispatch, and a shared sink for serialized output.
//
// The loop is intentionally minimal. It polls the bridge, suspends on the
// bridge's wake channel when no input is ready, and drains every complete
// frame it can decode before polling again. Responses and server-initiated
// notifications go through the same shared sink, so handlers running on
// other goroutines may push messages concurrently via Notify.
package endpoint
