package realtime

import (
	"sync"

	"moondev-backend/internal/domain"
	"moondev-backend/pkg/logger"
)

// EventFilter decides whether a subscriber receives an event.
type EventFilter func(domain.SubmissionEvent) bool

// AllSubmissions passes every change event (evaluator view).
func AllSubmissions(domain.SubmissionEvent) bool { return true }

// ForUser passes only events for one developer's submission.
func ForUser(userID string) EventFilter {
	return func(ev domain.SubmissionEvent) bool {
		return ev.Submission != nil && ev.Submission.UserID == userID
	}
}

type subscriber struct {
	ch     chan domain.SubmissionEvent
	filter EventFilter
}

// Hub fans submission change events out to subscribed clients.
// Delivery is best effort and at most once: a subscriber whose buffer
// is full loses the event (logged, never fatal), and a client that
// reconnects must re-fetch the full list to resynchronize.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers a listener for events matching filter. The
// returned cancel func must be called on teardown; it removes the
// listener and closes the channel.
func (h *Hub) Subscribe(filter EventFilter) (<-chan domain.SubmissionEvent, func()) {
	if filter == nil {
		filter = AllSubmissions
	}
	sub := &subscriber{
		ch:     make(chan domain.SubmissionEvent, 16),
		filter: filter,
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Broadcast delivers ev to every matching subscriber without blocking.
func (h *Hub) Broadcast(ev domain.SubmissionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if !sub.filter(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			if logger.Log != nil {
				logger.Log.Warn("realtime: subscriber buffer full, event dropped",
					"kind", ev.Kind, "submission_id", submissionID(ev))
			}
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func submissionID(ev domain.SubmissionEvent) string {
	if ev.Submission == nil {
		return ""
	}
	return ev.Submission.ID
}
