package screen

import (
	"context"
	"sync"

	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/eventdeck/eventdeck/pkg/favorite"
	"github.com/eventdeck/eventdeck/pkg/user"
)

// backendStub implements every collaborator of the screens and counts calls.
type backendStub struct {
	mu    sync.Mutex
	Calls map[string]int
	Args  map[string][]string

	Session      user.Session
	AuthErr      error
	Saved        event.Event
	WriteErr     error
	DeleteErr    error
	SignOutErr   error
	WatchErr     error
	Ids          []string
	IdsErr       error
	Toggle       favorite.ToggleResult
	ToggleErr    error
	Favorites    []event.Event
	ListErr      error
	RemoveErr    error
	Subscription *event.Subscription
}

func newBackendStub() *backendStub {
	return &backendStub{Calls: map[string]int{}, Args: map[string][]string{}}
}

func (s *backendStub) record(method string, args ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls[method]++
	s.Args[method] = append(s.Args[method], args...)
}

func (s *backendStub) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[method]
}

func (s *backendStub) SignIn(ctx context.Context, email, password string) (user.Session, error) {
	s.record("SignIn", email)
	return s.Session, s.AuthErr
}

func (s *backendStub) SignUp(ctx context.Context, email, password, confirmation string) (user.Session, error) {
	s.record("SignUp", email)
	return s.Session, s.AuthErr
}

func (s *backendStub) SignOut(ctx context.Context) error {
	s.record("SignOut")
	return s.SignOutErr
}

func (s *backendStub) CreateEvent(ctx context.Context, fields event.Fields) (event.Event, error) {
	s.record("CreateEvent", fields.EventName)
	return s.Saved, s.WriteErr
}

func (s *backendStub) UpdateEvent(ctx context.Context, id string, fields event.Fields) (event.Event, error) {
	s.record("UpdateEvent", id)
	return s.Saved, s.WriteErr
}

func (s *backendStub) DeleteEvent(ctx context.Context, id string) error {
	s.record("DeleteEvent", id)
	return s.DeleteErr
}

func (s *backendStub) WatchEvents(ctx context.Context) (*event.Subscription, error) {
	s.record("WatchEvents")
	if s.WatchErr != nil {
		return nil, s.WatchErr
	}
	if s.Subscription == nil {
		var sub *event.Subscription
		sub = event.NewSubscription(func() { sub.Finish(nil) })
		s.Subscription = sub
	}
	return s.Subscription, nil
}

func (s *backendStub) FavoriteIds(ctx context.Context) ([]string, error) {
	s.record("FavoriteIds")
	return s.Ids, s.IdsErr
}

func (s *backendStub) ToggleFavorite(ctx context.Context, eventId string) (favorite.ToggleResult, error) {
	s.record("ToggleFavorite", eventId)
	return s.Toggle, s.ToggleErr
}

func (s *backendStub) ListFavorites(ctx context.Context) ([]event.Event, error) {
	s.record("ListFavorites")
	return s.Favorites, s.ListErr
}

func (s *backendStub) RemoveFavorite(ctx context.Context, eventId string) error {
	s.record("RemoveFavorite", eventId)
	return s.RemoveErr
}
