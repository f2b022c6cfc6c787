package event

import (
	"testing"
	"time"

	"github.com/eventdeck/eventdeck/internal/event_bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextSnapshot(t *testing.T, sub *Subscription) []Event {
	t.Helper()
	select {
	case events, ok := <-sub.Snapshots():
		require.True(t, ok, "subscription finished unexpectedly: %v", sub.Err())
		return events
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestBusWatcher(t *testing.T) {
	t.Run("should deliver initial snapshot and full snapshots after changes", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()
		existing, err := service.CreateEvent(ctx, standup)
		require.NoError(t, err)

		// when
		sub, err := service.Watch(ctx)
		require.NoError(t, err)
		defer sub.Close()

		// then
		assert.Equal(t, []string{existing.Id}, ids(nextSnapshot(t, sub)))

		created, err := service.CreateEvent(ctx, Fields{EventName: "Retro", Description: "Sprint retro", Location: "Room 2"})
		require.NoError(t, err)
		assert.Equal(t, []string{existing.Id, created.Id}, ids(nextSnapshot(t, sub)))

		require.NoError(t, service.DeleteEvent(ctx, existing.Id))
		assert.Equal(t, []string{created.Id}, ids(nextSnapshot(t, sub)))
	})

	t.Run("should ignore changes of other users", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()
		sub, err := service.Watch(ctx)
		require.NoError(t, err)
		defer sub.Close()
		assert.Empty(t, nextSnapshot(t, sub))
		listsBefore := repoStub.CallCount("ListByUser")

		_, err = service.CreateEvent(otherCtx, standup)
		require.NoError(t, err)

		select {
		case events := <-sub.Snapshots():
			t.Fatalf("unexpected snapshot %v", events)
		case <-time.After(50 * time.Millisecond):
		}
		assert.Equal(t, listsBefore, repoStub.CallCount("ListByUser"))
	})

	t.Run("should release the bus subscription on close", func(t *testing.T) {
		service, bus, teardown := setup(t)
		defer teardown()
		sub, err := service.Watch(ctx)
		require.NoError(t, err)
		nextSnapshot(t, sub)
		assert.Equal(t, 1, bus.SubscriberCount(event_bus.EventCreated))

		sub.Close()
		sub.Close()

		for range sub.Snapshots() {
		}
		assert.NoError(t, sub.Err())
		assert.Eventually(t, func() bool {
			return bus.SubscriberCount(event_bus.EventCreated) == 0
		}, time.Second, 10*time.Millisecond)
	})
}

func ids(events []Event) []string {
	result := make([]string, 0, len(events))
	for _, e := range events {
		result = append(result, e.Id)
	}
	return result
}
