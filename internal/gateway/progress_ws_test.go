package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/models"
)

func TestProgressHub_PublishReachesSubscribers(t *testing.T) {
	hub := NewProgressHub()

	ch, cancel := hub.subscribe("s1")
	defer cancel()

	hub.Publish(models.ProgressEvent{SessionID: "s1", Phase: models.EventPhaseCritique, Message: "critique done"})

	select {
	case event := <-ch:
		assert.Equal(t, "s1", event.SessionID)
		assert.Equal(t, models.EventPhaseCritique, event.Phase)
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestProgressHub_SessionsAreIsolated(t *testing.T) {
	hub := NewProgressHub()

	ch, cancel := hub.subscribe("s1")
	defer cancel()

	hub.Publish(models.ProgressEvent{SessionID: "other", Phase: models.EventPhaseCompleted})

	select {
	case <-ch:
		t.Fatal("received an event for a different session")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProgressHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := NewProgressHub()

	ch, cancel := hub.subscribe("s1")
	cancel()

	hub.Publish(models.ProgressEvent{SessionID: "s1"})

	select {
	case <-ch:
		t.Fatal("received an event after unsubscribing")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProgressHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewProgressHub()

	_, cancel := hub.subscribe("s1")
	defer cancel()

	// more events than the subscriber buffer holds; Publish must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(models.ProgressEvent{SessionID: "s1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestProgressHub_MultipleSubscribers(t *testing.T) {
	hub := NewProgressHub()

	ch1, cancel1 := hub.subscribe("s1")
	defer cancel1()
	ch2, cancel2 := hub.subscribe("s1")
	defer cancel2()

	hub.Publish(models.ProgressEvent{SessionID: "s1", Message: "fan out"})

	for _, ch := range []chan models.ProgressEvent{ch1, ch2} {
		select {
		case event := <-ch:
			require.Equal(t, "fan out", event.Message)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}
