package debounce

import (
	"cmp"
	"errors"
	"sync"
)

// Standard errors returned by the queue.
var (
	// ErrNotReady indicates no entry is buffered yet. More may arrive;
	// wait on Wake and poll again.
	ErrNotReady = errors.New("no entry available yet")

	// ErrExhausted indicates all producers are closed and the buffer is
	// drained. The condition is terminal and repeats on every poll.
	ErrExhausted = errors.New("queue exhausted")

	// ErrConsumerClosed indicates the consumer has been closed. Producers
	// should treat it as a shutdown signal, not a fault.
	ErrConsumerClosed = errors.New("consumer closed")
)

// Entry is a keyed, versioned work item.
type Entry[K comparable, V any, W cmp.Ordered] struct {
	Key     K
	Value   V
	Version W
}

// queueState is shared by all producer handles and the consumer.
type queueState[K comparable, V any, W cmp.Ordered] struct {
	mu           sync.Mutex
	pending      []Entry[K, V, W] // arrivals not yet drained, unbounded
	producers    int              // open producer handles
	consumerGone bool
	wake         chan struct{}
}

// notify wakes the consumer without blocking the sender.
func (s *queueState[K, V, W]) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Producer is the sending half of the queue. Clone it to hand out to
// multiple goroutines; each clone must be closed independently.
type Producer[K comparable, V any, W cmp.Ordered] struct {
	state  *queueState[K, V, W]
	mu     sync.Mutex
	closed bool
}

// Consumer is the receiving half of the queue. It owns the coalescing
// buffer and is intended for a single polling goroutine.
type Consumer[K comparable, V any, W cmp.Ordered] struct {
	state     *queueState[K, V, W]
	buffer    []Entry[K, V, W] // at most one entry per key, first-seen order
	exhausted bool
}

// NewQueue creates a connected producer/consumer pair.
func NewQueue[K comparable, V any, W cmp.Ordered]() (*Producer[K, V, W], *Consumer[K, V, W]) {
	state := &queueState[K, V, W]{
		producers: 1,
		wake:      make(chan struct{}, 1),
	}
	return &Producer[K, V, W]{state: state}, &Consumer[K, V, W]{state: state}
}

// Send enqueues an entry. It never blocks; the only failure is
// ErrConsumerClosed once the receiving side is gone.
func (p *Producer[K, V, W]) Send(e Entry[K, V, W]) error {
	s := p.state
	s.mu.Lock()
	if s.consumerGone {
		s.mu.Unlock()
		return ErrConsumerClosed
	}
	s.pending = append(s.pending, e)
	s.mu.Unlock()

	s.notify()
	return nil
}

// Clone returns a new producer handle feeding the same consumer.
func (p *Producer[K, V, W]) Clone() *Producer[K, V, W] {
	s := p.state
	s.mu.Lock()
	s.producers++
	s.mu.Unlock()
	return &Producer[K, V, W]{state: s}
}

// Close releases this producer handle. Once every handle is closed and the
// buffered entries are drained, the consumer observes ErrExhausted. Close is
// idempotent per handle.
func (p *Producer[K, V, W]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	s := p.state
	s.mu.Lock()
	s.producers--
	last := s.producers == 0
	s.mu.Unlock()

	if last {
		s.notify()
	}
	return nil
}

// Poll returns the next entry due for processing.
//
// It first drains everything producers have sent so far, merging by key:
// an already-buffered key keeps its position and is updated in place only
// when the incoming version is strictly greater; lower or equal versions
// are dropped. It then pops the front of the buffer, or reports ErrNotReady
// / ErrExhausted when the buffer is empty.
func (c *Consumer[K, V, W]) Poll() (Entry[K, V, W], error) {
	var zero Entry[K, V, W]
	if !c.exhausted {
		s := c.state
		s.mu.Lock()
		drained := s.pending
		s.pending = nil
		producersGone := s.producers == 0
		s.mu.Unlock()

		for _, item := range drained {
			c.merge(item)
		}
		if producersGone {
			c.exhausted = true
		}
	}

	if len(c.buffer) > 0 {
		front := c.buffer[0]
		c.buffer = c.buffer[1:]
		return front, nil
	}
	if c.exhausted {
		return zero, ErrExhausted
	}
	return zero, ErrNotReady
}

// merge folds one arrival into the coalescing buffer.
func (c *Consumer[K, V, W]) merge(item Entry[K, V, W]) {
	for i := range c.buffer {
		if c.buffer[i].Key != item.Key {
			continue
		}
		if c.buffer[i].Version < item.Version {
			c.buffer[i].Value = item.Value
			c.buffer[i].Version = item.Version
		}
		return
	}
	c.buffer = append(c.buffer, item)
}

// Wake returns a channel that receives a token when new entries arrive or
// the last producer closes. The polling loop should wait on it after
// ErrNotReady.
func (c *Consumer[K, V, W]) Wake() <-chan struct{} {
	return c.state.wake
}

// Close detaches the consumer. Later sends fail with ErrConsumerClosed;
// buffered entries are discarded. Close is idempotent.
func (c *Consumer[K, V, W]) Close() error {
	s := c.state
	s.mu.Lock()
	s.consumerGone = true
	s.pending = nil
	s.mu.Unlock()

	c.buffer = nil
	c.exhausted = true
	return nil
}
