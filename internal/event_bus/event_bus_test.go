package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("should deliver to handlers in subscription order", func(t *testing.T) {
		bus := NewEventBus()
		var order []int
		for i := 1; i <= 5; i++ {
			i := i
			bus.Subscribe(EventCreated, func(e Event) error {
				order = append(order, i)
				return nil
			})
		}

		err := bus.Publish(NewEvent(context.Background(), EventCreated, EventChanged{EventId: "e1"}))

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, order)
	})

	t.Run("should collect handler errors and panics but keep delivering", func(t *testing.T) {
		bus := NewEventBus()
		delivered := 0
		bus.Subscribe(EventUpdated, func(e Event) error { return errors.New("boom") })
		bus.Subscribe(EventUpdated, func(e Event) error { panic("kaboom") })
		bus.Subscribe(EventUpdated, func(e Event) error {
			delivered++
			return nil
		})

		err := bus.Publish(NewEvent(context.Background(), EventUpdated, nil))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 handler(s) failed")
		assert.Equal(t, 1, delivered)
	})

	t.Run("should not publish with cancelled context", func(t *testing.T) {
		bus := NewEventBus()
		called := false
		bus.Subscribe(EventDeleted, func(e Event) error {
			called = true
			return nil
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := bus.Publish(NewEvent(ctx, EventDeleted, nil))

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	unsub := bus.SubscribeMany(EventChangeTypes, func(e Event) error {
		calls++
		return nil
	})
	for _, eventType := range EventChangeTypes {
		assert.Equal(t, 1, bus.SubscriberCount(eventType))
	}

	unsub()
	unsub()

	for _, eventType := range EventChangeTypes {
		assert.Equal(t, 0, bus.SubscriberCount(eventType))
		require.NoError(t, bus.Publish(NewEvent(context.Background(), eventType, nil)))
	}
	assert.Equal(t, 0, calls)
}

func TestSubscribeTyped(t *testing.T) {
	bus := NewEventBus()
	var received []EventChanged
	SubscribeTyped[EventChanged](bus, EventCreated, func(e EventT[EventChanged]) error {
		received = append(received, e.Data)
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), EventCreated, "not a change")))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), EventCreated, nil)))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), EventCreated, EventChanged{EventId: "e1", UserId: "u1"})))

	assert.Equal(t, []EventChanged{{EventId: "e1", UserId: "u1"}}, received)
}
