package event

import (
	"flag"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/eventdeck/eventdeck/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	db       *pgxpool.Pool
	fsClient *firestore.Client
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	var cleanup, fsCleanup func()
	db, cleanup = test_utils.TestWithDB()
	fsClient, fsCleanup = test_utils.TestWithFirestore()
	code := m.Run()
	fsCleanup()
	cleanup()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) Repository {
	test_utils.RequireDB(t, db)
	test_utils.Truncate(t, db)
	return NewRepository(db)
}

func newEvent(userId string, name string, createdAt time.Time) Event {
	return Event{
		UserId:    userId,
		Fields:    Fields{EventName: name, Description: "desc", Location: "loc"},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestRepositoryImpl_CreateAndListByUser(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	base := time.Now().UTC().Truncate(time.Millisecond)
	first, err := repo.Create(ctx, newEvent("alice", "First", base))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newEvent("bob", "Foreign", base))
	require.NoError(t, err)
	second, err := repo.Create(ctx, newEvent("alice", "Second", base.Add(time.Minute)))
	require.NoError(t, err)

	// when
	events, err := repo.ListByUser(ctx, "alice")

	// then
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.Id, events[0].Id)
	assert.Equal(t, second.Id, events[1].Id)
	assert.True(t, base.Equal(events[0].CreatedAt))
}

func TestRepositoryImpl_UpdateAndDeleteAreOwnerScoped(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	now := time.Now().UTC().Truncate(time.Millisecond)
	created, err := repo.Create(ctx, newEvent("alice", "Party", now))
	require.NoError(t, err)

	// when
	foreign := created
	foreign.UserId = "bob"
	_, updateErr := repo.Update(ctx, foreign)
	deleteErr := repo.Delete(ctx, "bob", created.Id)

	// then
	assert.ErrorIs(t, updateErr, ErrEventNotFound)
	assert.ErrorIs(t, deleteErr, ErrEventNotFound)

	created.Location = "Garden"
	created.UpdatedAt = now.Add(time.Hour)
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Garden", updated.Location)
	assert.True(t, now.Equal(updated.CreatedAt))

	require.NoError(t, repo.Delete(ctx, "alice", created.Id))
	_, err = repo.Get(ctx, created.Id)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRepositoryImpl_ListByIds(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	now := time.Now().UTC()
	a, _ := repo.Create(ctx, newEvent("alice", "A", now))
	b, _ := repo.Create(ctx, newEvent("alice", "B", now))
	_, _ = repo.Create(ctx, newEvent("alice", "C", now))

	// when
	events, err := repo.ListByIds(ctx, []string{b.Id, a.Id, "gone"})

	// then
	require.NoError(t, err)
	assert.Equal(t, []string{b.Id, a.Id}, ids(events))

	_, err = repo.ListByIds(ctx, []string{})
	assert.ErrorIs(t, err, ErrEmptyIdList)
}
