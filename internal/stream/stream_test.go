package stream

import (
	"sync"
	"testing"
	"time"
)

func TestPublishAndReceiveOrder(t *testing.T) {
	s := NewSubscription(4)

	if !s.Publish(Event{Content: "one"}) {
		t.Fatalf("publish one rejected")
	}
	if !s.Publish(Event{Content: "two"}) {
		t.Fatalf("publish two rejected")
	}
	s.Close()

	var got []string
	for ev := range s.Events() {
		got = append(got, ev.Content)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("events out of order: %v", got)
	}
}

func TestPublishAfterCloseDropsSilently(t *testing.T) {
	s := NewSubscription(4)
	s.Close()

	if s.Publish(Event{Content: "late"}) {
		t.Fatalf("publish after close must report false")
	}

	// Channel is closed and empty.
	if _, open := <-s.Events(); open {
		t.Fatalf("channel should be closed")
	}
}

func TestPublishFullBufferDrops(t *testing.T) {
	s := NewSubscription(1)
	if !s.Publish(Event{Content: "fits"}) {
		t.Fatalf("first publish should fit")
	}
	if s.Publish(Event{Content: "overflow"}) {
		t.Fatalf("publish into a full buffer must not block or succeed")
	}
}

func TestCloseAndCancelIdempotent(t *testing.T) {
	s := NewSubscription(1)
	s.Close()
	s.Close()
	s.Cancel() // must not panic on double close
}

func TestMinimumBuffer(t *testing.T) {
	s := NewSubscription(0)
	for i := 0; i < 8; i++ {
		if !s.Publish(Event{Content: "x"}) {
			t.Fatalf("publish %d rejected; default buffer too small", i)
		}
	}
}

func TestConcurrentPublishAndCancel(t *testing.T) {
	s := NewSubscription(2)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Publish(Event{Content: "c"})
		}()
	}
	time.Sleep(time.Millisecond)
	s.Cancel()
	wg.Wait() // no panic from publishing into a closed subscription
}
