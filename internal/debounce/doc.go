// Package debounce coalesces a high-frequency stream of keyed, versioned
// work items into a stream that only ever delivers the latest version per
// key.
//
// The motivating case is re-analysis after edits: every keystroke produces a
// new document version, but only the newest one is worth processing. A
// Producer accepts entries without ever blocking; the Consumer drains them
// on demand, keeping at most one entry per key. A newer version replaces the
// stored entry in place, so a key's first-seen position in the delivery
// order is preserved and distinct keys are never starved by a busy one.
//
// Producers may be cloned freely and used from any goroutine. The pending
// buffer is unbounded: producers are never slowed down, at the cost of
// memory if the consumer stalls while distinct keys keep arriving.
//
// The Consumer is poll-based. Poll returns ErrNotReady when nothing is
// buffered yet (wait on Wake and retry) and ErrExhausted once every producer
// has been closed and the buffer is drained.
package debounce
