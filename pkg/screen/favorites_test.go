package screen

import (
	"errors"
	"testing"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/stretchr/testify/assert"
)

func TestFavoriteEvents_Load(t *testing.T) {
	t.Run("should show the empty state without listing events", func(t *testing.T) {
		backend := newBackendStub()
		screen := NewFavoriteEvents(backend, homeWith(navigation.FavoriteEvents, nil))

		assert.True(t, screen.Load(ctx))

		assert.True(t, screen.IsEmpty())
		assert.Equal(t, 0, backend.CallCount("ListFavorites"))
	})

	t.Run("should list the favorited events", func(t *testing.T) {
		backend := newBackendStub()
		backend.Ids = []string{"a", "b"}
		backend.Favorites = []event.Event{{Id: "a"}, {Id: "b"}}
		screen := NewFavoriteEvents(backend, homeWith(navigation.FavoriteEvents, nil))

		screen.Load(ctx)

		assert.False(t, screen.IsEmpty())
		assert.Equal(t, []event.Event{{Id: "a"}, {Id: "b"}}, screen.Events)
	})

	t.Run("should not claim emptiness after a failed load", func(t *testing.T) {
		backend := newBackendStub()
		backend.IdsErr = errors.New("offline")
		screen := NewFavoriteEvents(backend, homeWith(navigation.FavoriteEvents, nil))

		assert.False(t, screen.Load(ctx))

		assert.False(t, screen.IsEmpty())
		_, ok := screen.Notice()
		assert.True(t, ok)
	})
}

func TestFavoriteEvents_Remove(t *testing.T) {
	t.Run("should drop the event after the server confirmed", func(t *testing.T) {
		backend := newBackendStub()
		backend.Ids = []string{"a", "b"}
		backend.Favorites = []event.Event{{Id: "a"}, {Id: "b"}}
		screen := NewFavoriteEvents(backend, homeWith(navigation.FavoriteEvents, nil))
		screen.Load(ctx)

		assert.True(t, screen.Remove(ctx, "a"))

		assert.Equal(t, []event.Event{{Id: "b"}}, screen.Events)
	})

	t.Run("should keep the list when removal fails", func(t *testing.T) {
		backend := newBackendStub()
		backend.Ids = []string{"a"}
		backend.Favorites = []event.Event{{Id: "a"}}
		backend.RemoveErr = errors.New("offline")
		screen := NewFavoriteEvents(backend, homeWith(navigation.FavoriteEvents, nil))
		screen.Load(ctx)

		assert.False(t, screen.Remove(ctx, "a"))

		assert.Len(t, screen.Events, 1)
	})
}
