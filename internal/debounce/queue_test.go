package debounce

import (
	"errors"
	"testing"
	"time"
)

func send(t *testing.T, p *Producer[string, string, int], key, value string, version int) {
	t.Helper()
	if err := p.Send(Entry[string, string, int]{Key: key, Value: value, Version: version}); err != nil {
		t.Fatalf("Send(%s v%d) error = %v", key, version, err)
	}
}

func TestQueue_LatestVersionWins(t *testing.T) {
	producer, consumer := NewQueue[string, string, int]()

	send(t, producer, "doc1", "a", 1)
	send(t, producer, "doc1", "c", 3)
	send(t, producer, "doc1", "b", 2)

	entry, err := consumer.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if entry.Key != "doc1" || entry.Version != 3 || entry.Value != "c" {
		t.Errorf("Poll() = %+v, want doc1 v3 %q", entry, "c")
	}

	// Exactly one entry is ever delivered for the key.
	if _, err := consumer.Poll(); !errors.Is(err, ErrNotReady) {
		t.Errorf("second Poll() error = %v, want ErrNotReady", err)
	}
}

func TestQueue_EqualVersionDropped(t *testing.T) {
	producer, consumer := NewQueue[string, string, int]()

	send(t, producer, "doc1", "first", 5)
	send(t, producer, "doc1", "second", 5)

	entry, err := consumer.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if entry.Value != "first" {
		t.Errorf("Poll() value = %q, want %q (equal versions must not replace)", entry.Value, "first")
	}
}

func TestQueue_FirstSeenOrderingAcrossKeys(t *testing.T) {
	producer, consumer := NewQueue[string, string, int]()

	send(t, producer, "a", "a1", 1)
	send(t, producer, "b", "b1", 1)
	// Superseding a must not move it behind b.
	send(t, producer, "a", "a2", 2)

	first, err := consumer.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if first.Key != "a" || first.Version != 2 {
		t.Errorf("first Poll() = %+v, want key a v2", first)
	}

	second, err := consumer.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if second.Key != "b" {
		t.Errorf("second Poll() = %+v, want key b", second)
	}
}

func TestQueue_NotReadyOnEmpty(t *testing.T) {
	_, consumer := NewQueue[string, int, int]()

	if _, err := consumer.Poll(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Poll() error = %v, want ErrNotReady", err)
	}
}

func TestQueue_ExhaustionIsTerminal(t *testing.T) {
	producer, consumer := NewQueue[string, string, int]()

	send(t, producer, "doc1", "x", 1)
	if err := producer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entry, err := consumer.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if entry.Key != "doc1" {
		t.Errorf("Poll() = %+v, want buffered entry before exhaustion", entry)
	}

	for i := 0; i < 3; i++ {
		if _, err := consumer.Poll(); !errors.Is(err, ErrExhausted) {
			t.Errorf("Poll() #%d error = %v, want ErrExhausted", i, err)
		}
	}
}

func TestQueue_CloneKeepsQueueAlive(t *testing.T) {
	producer, consumer := NewQueue[string, string, int]()
	clone := producer.Clone()

	if err := producer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Repeated close of the same handle must not release the clone.
	if err := producer.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	send(t, clone, "doc1", "x", 1)
	if _, err := consumer.Poll(); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if _, err := consumer.Poll(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Poll() error = %v, want ErrNotReady while a producer is open", err)
	}

	if err := clone.Close(); err != nil {
		t.Fatalf("clone Close() error = %v", err)
	}
	if _, err := consumer.Poll(); !errors.Is(err, ErrExhausted) {
		t.Errorf("Poll() error = %v, want ErrExhausted after last producer closes", err)
	}
}

func TestQueue_SendAfterConsumerClose(t *testing.T) {
	producer, consumer := NewQueue[string, string, int]()

	if err := consumer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	err := producer.Send(Entry[string, string, int]{Key: "doc1", Value: "x", Version: 1})
	if !errors.Is(err, ErrConsumerClosed) {
		t.Errorf("Send() error = %v, want ErrConsumerClosed", err)
	}
}

func TestQueue_WakeOnSend(t *testing.T) {
	producer, consumer := NewQueue[string, string, int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		producer.Send(Entry[string, string, int]{Key: "doc1", Value: "x", Version: 1})
	}()

	select {
	case <-consumer.Wake():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for wake signal")
	}

	entry, err := consumer.Poll()
	if err != nil {
		t.Fatalf("Poll() after wake error = %v", err)
	}
	if entry.Key != "doc1" {
		t.Errorf("Poll() = %+v, want doc1", entry)
	}
}

func TestQueue_WakeOnLastProducerClose(t *testing.T) {
	producer, consumer := NewQueue[string, string, int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		producer.Close()
	}()

	select {
	case <-consumer.Wake():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for wake signal")
	}
	if _, err := consumer.Poll(); !errors.Is(err, ErrExhausted) {
		t.Errorf("Poll() error = %v, want ErrExhausted", err)
	}
}

func TestQueue_ManyProducers(t *testing.T) {
	producer, consumer := NewQueue[int, int, int]()

	const producers = 8
	const perProducer = 50

	done := make(chan struct{})
	for i := 0; i < producers; i++ {
		p := producer.Clone()
		go func(base int) {
			for v := 1; v <= perProducer; v++ {
				p.Send(Entry[int, int, int]{Key: base, Value: v, Version: v})
			}
			p.Close()
			done <- struct{}{}
		}(i)
	}
	producer.Close()
	for i := 0; i < producers; i++ {
		<-done
	}

	// Each key is delivered exactly once with its maximum version.
	seen := make(map[int]int)
	for {
		entry, err := consumer.Poll()
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		if _, dup := seen[entry.Key]; dup {
			t.Fatalf("key %d delivered twice", entry.Key)
		}
		seen[entry.Key] = entry.Version
	}

	if len(seen) != producers {
		t.Fatalf("delivered %d keys, want %d", len(seen), producers)
	}
	for key, version := range seen {
		if version != perProducer {
			t.Errorf("key %d delivered at v%d, want v%d", key, version, perProducer)
		}
	}
}
