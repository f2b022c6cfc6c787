package screen

import (
	"context"
	"slices"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/pkg/event"
)

const EmptyFavorites = "No favorite events yet."

type FavoriteEvents struct {
	notices
	service FavoritesService
	nav     *navigation.Stack

	Events []event.Event
	loaded bool
}

func NewFavoriteEvents(service FavoritesService, nav *navigation.Stack) *FavoriteEvents {
	return &FavoriteEvents{service: service, nav: nav}
}

// Load reads the favorited ids first and only resolves events when there is at least one.
func (f *FavoriteEvents) Load(ctx context.Context) bool {
	ids, err := f.service.FavoriteIds(ctx)
	if err != nil {
		f.fail("Could not load favorites", err)
		return false
	}
	if len(ids) == 0 {
		f.Events, f.loaded = nil, true
		return true
	}
	events, err := f.service.ListFavorites(ctx)
	if err != nil {
		f.fail("Could not load favorites", err)
		return false
	}
	f.Events, f.loaded = events, true
	return true
}

// IsEmpty reports a successful load without favorites.
func (f *FavoriteEvents) IsEmpty() bool {
	return f.loaded && len(f.Events) == 0
}

// Remove unfavorites the event and drops it from the list once the server confirmed.
func (f *FavoriteEvents) Remove(ctx context.Context, eventId string) bool {
	if err := f.service.RemoveFavorite(ctx, eventId); err != nil {
		f.fail("Could not remove favorite", err)
		return false
	}
	f.Events = slices.DeleteFunc(f.Events, func(e event.Event) bool { return e.Id == eventId })
	return true
}

func (f *FavoriteEvents) ShowEvent(e event.Event) {
	f.nav.Navigate(navigation.EventDetail, navigation.WithEvent(e))
}

func (f *FavoriteEvents) Back() {
	f.nav.GoBack()
}
