package event

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/eventdeck/eventdeck/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFirestoreRepository(t *testing.T) Repository {
	test_utils.RequireFirestore(t, fsClient)
	test_utils.ClearFirestore(t)
	return NewFirestoreRepository(fsClient)
}

// awaitSnapshot reads snapshots until one satisfies match. Listeners may deliver intermediate
// states, so single reads are not enough.
func awaitSnapshot(t *testing.T, sub *Subscription, match func([]Event) bool) []Event {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case events, ok := <-sub.Snapshots():
			require.True(t, ok, "subscription finished unexpectedly: %v", sub.Err())
			if match(events) {
				return events
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching snapshot")
			return nil
		}
	}
}

func TestFirestoreRepository_CreateAndListByUser(t *testing.T) {
	// given
	repo := setupFirestoreRepository(t)
	base := time.Now().UTC().Truncate(time.Millisecond)
	second, err := repo.Create(ctx, newEvent("alice", "Second", base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newEvent("bob", "Foreign", base))
	require.NoError(t, err)
	first, err := repo.Create(ctx, newEvent("alice", "First", base))
	require.NoError(t, err)

	// when
	events, err := repo.ListByUser(ctx, "alice")

	// then
	require.NoError(t, err)
	assert.Equal(t, []string{first.Id, second.Id}, ids(events))
	assert.True(t, base.Equal(events[0].CreatedAt))
	assert.Equal(t, "alice", events[0].UserId)
	assert.Equal(t, "loc", events[0].Location)
}

func TestFirestoreRepository_UpdateAndDeleteAreOwnerScoped(t *testing.T) {
	// given
	repo := setupFirestoreRepository(t)
	now := time.Now().UTC().Truncate(time.Millisecond)
	created, err := repo.Create(ctx, newEvent("alice", "Party", now))
	require.NoError(t, err)

	// when
	foreign := created
	foreign.UserId = "bob"
	foreign.Location = "Hijacked"
	_, updateErr := repo.Update(ctx, foreign)
	deleteErr := repo.Delete(ctx, "bob", created.Id)

	// then
	assert.ErrorIs(t, updateErr, ErrEventNotFound)
	assert.ErrorIs(t, deleteErr, ErrEventNotFound)
	stored, err := repo.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "loc", stored.Location)
	assert.Equal(t, "alice", stored.UserId)

	t.Run("owner update keeps the creation time", func(t *testing.T) {
		changed := created
		changed.Location = "Garden"
		changed.CreatedAt = now.Add(24 * time.Hour)
		changed.UpdatedAt = now.Add(time.Hour)

		updated, err := repo.Update(ctx, changed)

		require.NoError(t, err)
		assert.Equal(t, "Garden", updated.Location)
		assert.True(t, now.Equal(updated.CreatedAt))
		stored, err := repo.Get(ctx, created.Id)
		require.NoError(t, err)
		assert.True(t, now.Equal(stored.CreatedAt))
	})

	t.Run("missing events are reported as not found", func(t *testing.T) {
		missing := created
		missing.Id = "does-not-exist"

		_, err := repo.Update(ctx, missing)

		assert.ErrorIs(t, err, ErrEventNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "alice", "does-not-exist"), ErrEventNotFound)
	})

	t.Run("owner delete removes the event", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "alice", created.Id))

		_, err := repo.Get(ctx, created.Id)

		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestFirestoreRepository_ListByIds(t *testing.T) {
	t.Run("should return events across several in-query chunks in the order given", func(t *testing.T) {
		// given
		repo := setupFirestoreRepository(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		var created []string
		for i := 0; i < MaxInQueryValues+5; i++ {
			e, err := repo.Create(ctx, newEvent("alice", fmt.Sprintf("Event %d", i), now))
			require.NoError(t, err)
			created = append(created, e.Id)
		}
		requested := slices.Clone(created)
		slices.Reverse(requested)
		requested = slices.Insert(requested, 10, "gone")

		// when
		events, err := repo.ListByIds(ctx, requested)

		// then
		require.NoError(t, err)
		want := slices.Clone(created)
		slices.Reverse(want)
		assert.Equal(t, want, ids(events))
	})

	t.Run("should reject an empty id list", func(t *testing.T) {
		repo := setupFirestoreRepository(t)

		_, err := repo.ListByIds(ctx, nil)

		assert.ErrorIs(t, err, ErrEmptyIdList)
	})
}

func TestFirestoreWatcher(t *testing.T) {
	t.Run("should deliver the initial snapshot and a full snapshot after every change", func(t *testing.T) {
		// given
		repo := setupFirestoreRepository(t)
		now := time.Now().UTC().Truncate(time.Millisecond)
		existing, err := repo.Create(ctx, newEvent("alice", "Existing", now))
		require.NoError(t, err)
		_, err = repo.Create(ctx, newEvent("bob", "Foreign", now))
		require.NoError(t, err)
		watcher := NewFirestoreWatcher(fsClient)

		// when
		sub, err := watcher.Watch(ctx, "alice")
		require.NoError(t, err)
		defer sub.Close()

		// then
		initial := awaitSnapshot(t, sub, func(events []Event) bool { return len(events) == 1 })
		assert.Equal(t, []string{existing.Id}, ids(initial))

		added, err := repo.Create(ctx, newEvent("alice", "Added", now.Add(time.Minute)))
		require.NoError(t, err)
		afterCreate := awaitSnapshot(t, sub, func(events []Event) bool { return len(events) == 2 })
		assert.Equal(t, []string{existing.Id, added.Id}, ids(afterCreate))

		require.NoError(t, repo.Delete(ctx, "alice", existing.Id))
		afterDelete := awaitSnapshot(t, sub, func(events []Event) bool { return len(events) == 1 })
		assert.Equal(t, []string{added.Id}, ids(afterDelete))
	})

	t.Run("should finish without error when closed", func(t *testing.T) {
		test_utils.RequireFirestore(t, fsClient)
		sub, err := NewFirestoreWatcher(fsClient).Watch(ctx, "alice")
		require.NoError(t, err)
		awaitSnapshot(t, sub, func([]Event) bool { return true })

		sub.Close()

		assert.Eventually(t, func() bool {
			select {
			case _, ok := <-sub.Snapshots():
				return !ok
			default:
				return false
			}
		}, 10*time.Second, 20*time.Millisecond)
		assert.NoError(t, sub.Err())
	})
}
