package event

import (
	"context"
	"sync"
)

// Subscription delivers full snapshots of a user's events. Every snapshot replaces the previous
// one. The channel holds one pending snapshot; a newer snapshot replaces an undelivered one, so
// producers never block on slow consumers.
//
// Producers call Deliver from a single goroutine and Finish once when done. Consumers read
// Snapshots until it is closed and then check Err.
type Subscription struct {
	snapshots  chan []Event
	cancel     context.CancelFunc
	closeOnce  sync.Once
	finishOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewSubscription creates a subscription whose Close calls cancel.
func NewSubscription(cancel context.CancelFunc) *Subscription {
	return &Subscription{
		snapshots: make(chan []Event, 1),
		cancel:    cancel,
	}
}

func (s *Subscription) Snapshots() <-chan []Event {
	return s.snapshots
}

// Deliver publishes a snapshot, dropping an older one the consumer has not read yet.
func (s *Subscription) Deliver(events []Event) {
	for {
		select {
		case s.snapshots <- events:
			return
		default:
		}
		select {
		case <-s.snapshots:
		default:
		}
	}
}

// Finish ends the stream. A nil err means the subscription was closed normally.
func (s *Subscription) Finish(err error) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.snapshots)
	})
}

// Close tears the subscription down. It is safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
