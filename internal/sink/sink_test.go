package sink

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// exclusiveSink fails the test if two operations ever overlap.
type exclusiveSink struct {
	t       *testing.T
	busy    atomic.Bool
	buf     bytes.Buffer
	flushes int
}

func (s *exclusiveSink) enter() {
	if !s.busy.CompareAndSwap(false, true) {
		s.t.Error("concurrent access to underlying sink")
	}
}

func (s *exclusiveSink) leave() { s.busy.Store(false) }

func (s *exclusiveSink) Write(p []byte) (int, error) {
	s.enter()
	defer s.leave()
	return s.buf.Write(p)
}

func (s *exclusiveSink) Flush() error {
	s.enter()
	defer s.leave()
	s.flushes++
	return nil
}

func TestShared_SerializesConcurrentWriters(t *testing.T) {
	underlying := &exclusiveSink{t: t}
	shared := NewShared(underlying)

	const writers = 8
	const writesPer = 100

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		clone := shared.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < writesPer; j++ {
				if _, err := clone.Write([]byte("x")); err != nil {
					t.Errorf("Write() error = %v", err)
					return
				}
				if err := clone.Flush(); err != nil {
					t.Errorf("Flush() error = %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := underlying.buf.Len(); got != writers*writesPer {
		t.Errorf("underlying sink holds %d bytes, want %d", got, writers*writesPer)
	}
}

func TestShared_CloseAffectsAllClones(t *testing.T) {
	underlying := &exclusiveSink{t: t}
	shared := NewShared(underlying)
	clone := shared.Clone()

	if err := shared.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := shared.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if _, err := clone.Write([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("clone Write() after Close error = %v, want ErrClosed", err)
	}
	if err := clone.Flush(); !errors.Is(err, ErrClosed) {
		t.Errorf("clone Flush() after Close error = %v, want ErrClosed", err)
	}
}

func TestShared_CloseFlushes(t *testing.T) {
	underlying := &exclusiveSink{t: t}
	shared := NewShared(underlying)

	if err := shared.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if underlying.flushes != 1 {
		t.Errorf("flushes = %d, want 1 (Close must flush pending output)", underlying.flushes)
	}
}

func TestFromWriter_PlainWriter(t *testing.T) {
	var buf bytes.Buffer
	s := FromWriter(&buf)

	if _, err := s.Write([]byte("data")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error = %v (plain writers flush as a no-op)", err)
	}
	if buf.String() != "data" {
		t.Errorf("buffer = %q, want %q", buf.String(), "data")
	}
}

func TestFromWriter_ForwardsFlush(t *testing.T) {
	var out strings.Builder
	bw := bufio.NewWriterSize(&out, 1024)
	s := FromWriter(bw)

	if _, err := s.Write([]byte("buffered")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if out.Len() != 0 {
		t.Fatal("bytes reached the destination before Flush")
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if out.String() != "buffered" {
		t.Errorf("destination = %q, want %q", out.String(), "buffered")
	}
}
