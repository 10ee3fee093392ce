package realtime_test

import (
	"testing"

	"moondev-backend/internal/domain"
	"moondev-backend/internal/realtime"
	"moondev-backend/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func init() {
	logger.Init()
}

func event(kind, id, userID string) domain.SubmissionEvent {
	return domain.SubmissionEvent{
		Kind:       kind,
		Submission: &domain.Submission{ID: id, UserID: userID},
	}
}

func TestHubSubscribe(t *testing.T) {
	t.Run("Subscriber receives matching events", func(t *testing.T) {
		hub := realtime.NewHub()
		events, cancel := hub.Subscribe(realtime.AllSubmissions)
		defer cancel()

		hub.Broadcast(event(domain.SubmissionEventCreated, "sub1", "user1"))

		ev := <-events
		assert.Equal(t, domain.SubmissionEventCreated, ev.Kind)
		assert.Equal(t, "sub1", ev.Submission.ID)
	})

	t.Run("ForUser filter drops other users' events", func(t *testing.T) {
		hub := realtime.NewHub()
		events, cancel := hub.Subscribe(realtime.ForUser("user1"))
		defer cancel()

		hub.Broadcast(event(domain.SubmissionEventCreated, "sub2", "user2"))
		hub.Broadcast(event(domain.SubmissionEventUpdated, "sub1", "user1"))

		ev := <-events
		assert.Equal(t, "sub1", ev.Submission.ID)
		assert.Empty(t, events)
	})

	t.Run("Cancel removes the subscriber and closes the channel", func(t *testing.T) {
		hub := realtime.NewHub()
		events, cancel := hub.Subscribe(nil)
		assert.Equal(t, 1, hub.SubscriberCount())

		cancel()
		assert.Equal(t, 0, hub.SubscriberCount())

		_, open := <-events
		assert.False(t, open)

		// Second cancel is a no-op
		cancel()
	})
}

func TestHubDropOnFullBuffer(t *testing.T) {
	t.Run("Slow subscriber loses events instead of blocking broadcast", func(t *testing.T) {
		hub := realtime.NewHub()
		events, cancel := hub.Subscribe(realtime.AllSubmissions)
		defer cancel()

		// Nobody drains the channel; overfill its buffer.
		for i := 0; i < 32; i++ {
			hub.Broadcast(event(domain.SubmissionEventUpdated, "sub1", "user1"))
		}

		// Broadcast never blocked, and the buffered events are intact.
		received := 0
		for len(events) > 0 {
			<-events
			received++
		}
		assert.Equal(t, 16, received)
	})
}
