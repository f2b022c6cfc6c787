package favorite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventdeck/eventdeck/internal/event_bus"
	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/eventdeck/eventdeck/pkg/user"
	log "github.com/sirupsen/logrus"
)

// EventLookup resolves favorited ids into events.
// Both methods only return events owned by the current user.
type EventLookup interface {
	GetEvent(ctx context.Context, id string) (event.Event, error)
	GetEventsByIds(ctx context.Context, ids []string) ([]event.Event, error)
}

type Service interface {
	Toggle(ctx context.Context, eventId string) (ToggleResult, error)
	FavoriteIds(ctx context.Context) ([]string, error)
	// ListFavorites materializes the favorites join. A user without favorites gets an empty
	// list and no event lookup is made. Any failure aborts without a partial result.
	ListFavorites(ctx context.Context) ([]event.Event, error)
	Remove(ctx context.Context, eventId string) error
	Calendar(ctx context.Context, loc *time.Location) (string, error)
}

// Auditor reports (user, event) pairs holding more than one marker.
type Auditor interface {
	FindDuplicates(ctx context.Context) ([]Duplicate, error)
}

type ServiceImpl struct {
	repo   Repository
	events EventLookup
	bus    *event_bus.EventBus
	now    func() time.Time
}

func NewService(repo Repository, events EventLookup, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, events: events, bus: bus, now: time.Now}
}

func (s *ServiceImpl) Toggle(ctx context.Context, eventId string) (ToggleResult, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if eventId == "" {
		return ToggleResult{}, ErrEventIdRequired
	}
	if _, err := s.events.GetEvent(ctx, eventId); err != nil {
		return ToggleResult{}, fmt.Errorf("cannot favorite event %s: %w", eventId, err)
	}

	favorited, err := s.repo.Toggle(ctx, userId, eventId)
	if err != nil {
		return ToggleResult{}, err
	}
	ids, err := s.repo.ListEventIds(ctx, userId)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("failed to read favorites after toggle: %w", err)
	}
	log.Debugf("user %s toggled favorite %s: %t", userId, eventId, favorited)

	change := event_bus.FavoriteChanged{EventId: eventId, UserId: userId, Favorited: favorited}
	if err := s.bus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.FavoriteToggled, change)); err != nil {
		log.Warnf("failed to publish favorite change: %v", err)
	}
	return ToggleResult{EventId: eventId, Favorited: favorited, EventIds: ids}, nil
}

func (s *ServiceImpl) FavoriteIds(ctx context.Context) ([]string, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListEventIds(ctx, userId)
}

func (s *ServiceImpl) ListFavorites(ctx context.Context) ([]event.Event, error) {
	ids, err := s.FavoriteIds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorite markers: %w", err)
	}
	if len(ids) == 0 {
		return []event.Event{}, nil
	}
	events, err := s.events.GetEventsByIds(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorite events: %w", err)
	}
	return events, nil
}

func (s *ServiceImpl) Remove(ctx context.Context, eventId string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if eventId == "" {
		return ErrEventIdRequired
	}
	removed, err := s.repo.Remove(ctx, userId, eventId)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if removed == 0 {
		log.Debugf("event %s was not a favorite of user %s", eventId, userId)
		return nil
	}
	change := event_bus.FavoriteChanged{EventId: eventId, UserId: userId, Favorited: false}
	if err := s.bus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.FavoriteToggled, change)); err != nil {
		log.Warnf("failed to publish favorite change: %v", err)
	}
	return nil
}

func (s *ServiceImpl) Calendar(ctx context.Context, loc *time.Location) (string, error) {
	events, err := s.ListFavorites(ctx)
	if err != nil {
		return "", err
	}
	return RenderCalendar(events, loc, s.now()), nil
}

func (s *ServiceImpl) FindDuplicates(ctx context.Context) ([]Duplicate, error) {
	return s.repo.FindDuplicates(ctx)
}

// IsClientError reports whether err is caused by the request rather than the store.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEventIdRequired)
}
