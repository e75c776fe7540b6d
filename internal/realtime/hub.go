package realtime

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event names.
const (
	EventConnected        = "connected"
	EventResourceCreated  = "resource_created"
	EventResourceApproved = "resource_approved"
)

// Event is a small summary pushed to every subscriber.
type Event struct {
	ID         uint64    `json:"-"`
	Name       string    `json:"event"`
	ResourceID string    `json:"resource_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	At         time.Time `json:"-"`
}

// Hub maintains the set of live subscriptions and fans events out to them.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}

	// queueLimit bounds each subscription queue; 0 keeps queues unbounded.
	queueLimit int
	seq        uint64 // guarded by mu
	closed     bool

	logger *zap.Logger
}

// NewHub creates a Hub. queueLimit > 0 bounds every subscription queue with a drop-oldest
// overflow policy.
func NewHub(queueLimit int, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueLimit < 0 {
		queueLimit = 0
	}
	return &Hub{
		subscribers: make(map[*Subscription]struct{}),
		queueLimit:  queueLimit,
		logger:      logger.Named("hub"),
	}
}

// Subscribe registers a new subscription with a connected event already queued.
// Subscribing to a closed hub returns a closed subscription.
func (h *Hub) Subscribe() *Subscription {
	sub := newSubscription(h.queueLimit)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub
	}
	sub.push(h.stamp(Event{Name: EventConnected}))
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()

	h.logger.Debug("subscriber registered", zap.Int("subscribers", count))
	return sub
}

// Unsubscribe removes sub from the live set and closes it. Unknown subscriptions are ignored.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	delete(h.subscribers, sub)
	count := len(h.subscribers)
	h.mu.Unlock()

	sub.close()
	if ok {
		h.logger.Debug("subscriber removed", zap.Int("subscribers", count))
	}
}

// Broadcast enqueues ev on every subscription live at call time and returns how many
// accepted it. It never blocks on consumers.
//
// Stamping and fan-out share the write lock so concurrent broadcasts reach every
// subscription in id order.
func (h *Hub) Broadcast(ev Event) int {
	h.mu.Lock()
	ev = h.stamp(ev)
	delivered, dropped := 0, 0
	for sub := range h.subscribers {
		ok, lost := sub.push(ev)
		if !ok {
			continue
		}
		delivered++
		if lost {
			dropped++
		}
	}
	h.mu.Unlock()

	if dropped > 0 {
		h.logger.Warn("subscriber queue full, dropped oldest event",
			zap.Int("limit", h.queueLimit),
			zap.Int("subscribers", dropped),
			zap.String("event", ev.Name))
	}
	h.logger.Debug("event broadcast",
		zap.String("event", ev.Name),
		zap.Uint64("id", ev.ID),
		zap.Int("delivered", delivered))
	return delivered
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close unsubscribes everybody and rejects later subscriptions. Open streams observe
// ErrClosed from Next.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := h.subscribers
	h.subscribers = make(map[*Subscription]struct{})
	h.mu.Unlock()

	for sub := range subs {
		sub.close()
	}
	h.logger.Info("hub closed", zap.Int("subscribers", len(subs)))
}

// stamp must be called with mu held.
func (h *Hub) stamp(ev Event) Event {
	h.seq++
	ev.ID = h.seq
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return ev
}
