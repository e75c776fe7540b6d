package realtime

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Next once the subscription has been closed.
var ErrClosed = errors.New("subscription closed")

// Subscription is a FIFO queue of events for one listener. Producers never block; Next
// blocks until an event is available.
type Subscription struct {
	mu     sync.Mutex
	queue  []Event
	limit  int
	closed bool

	// ready holds at most one pending wake-up for the consumer.
	ready chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newSubscription(limit int) *Subscription {
	return &Subscription{
		limit: limit,
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// push appends ev. It reports false when the subscription is closed, and dropped when the
// queue was at its limit and the oldest event was discarded to make room.
func (s *Subscription) push(ev Event) (ok, dropped bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, false
	}
	if s.limit > 0 && len(s.queue) >= s.limit {
		s.queue[0] = Event{}
		s.queue = s.queue[1:]
		dropped = true
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
	return true, dropped
}

// Next returns the oldest queued event, waiting for one if the queue is empty. It returns
// ErrClosed after close, discarding anything still queued, or ctx.Err() on cancellation.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return Event{}, ErrClosed
		}
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue[0] = Event{}
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return ev, nil
		}
		s.mu.Unlock()

		select {
		case <-s.ready:
		case <-s.done:
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// Pending returns the number of queued events.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Done is closed when the subscription is closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		close(s.done)
	})
}
