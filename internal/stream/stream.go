// Package stream models a resolution's progressive output as an ordered,
// cancellable event sequence bound to a single caller.
//
// The orchestrator owns the publishing side and the delivery layer owns the
// consuming side. Cancelling the subscription tears down delivery only:
// publishes after cancellation are dropped silently, and the computation
// behind them keeps running to completion so its result can still be
// persisted.
package stream

import "sync"

// Event is one delivery unit. Exactly one of Content or Error is set.
type Event struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Subscription is a single-caller event channel for one resolution.
type Subscription struct {
	ch chan Event

	mu     sync.Mutex
	closed bool
}

// NewSubscription allocates a subscription. The buffer absorbs publishes
// racing with a slow consumer so the orchestrator never blocks on delivery.
func NewSubscription(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 8
	}
	return &Subscription{ch: make(chan Event, buffer)}
}

// Events returns the receive side. The channel is closed by Close (normal
// completion) or Cancel (caller went away).
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Publish enqueues an event. It reports whether the event was accepted;
// after cancellation or close, events are dropped and Publish returns false.
// A full buffer also drops (the consumer is gone in practice): delivery is
// best effort, persistence is not handled here.
func (s *Subscription) Publish(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// Close ends the sequence after a completed resolution. Idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Cancel ends the sequence because the caller disconnected. It is the same
// teardown as Close; the distinction is for call sites to read correctly.
func (s *Subscription) Cancel() { s.Close() }
