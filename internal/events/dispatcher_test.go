package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var received []Event
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "e1", Type: EventTicketCreated, TicketID: "t1"})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "t1", received[0].TicketID)

	// Other event types do not reach this subscriber.
	err = dispatcher.Publish(context.Background(), Event{ID: "e2", Type: EventCommentAdded, TicketID: "t1"})
	require.NoError(t, err)
	assert.Len(t, received, 1)
}

func TestDispatcherFailingHandlerDoesNotBlockOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	dispatcher.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		return errors.New("handler exploded")
	})
	var called bool
	dispatcher.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "e1", Type: EventTicketAssigned, TicketID: "t1"})
	require.NoError(t, err)
	assert.True(t, called)
}
