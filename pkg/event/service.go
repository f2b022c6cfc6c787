package event

import (
	"context"
	"fmt"

	"github.com/eventdeck/eventdeck/internal/event_bus"
	"github.com/eventdeck/eventdeck/internal/utils"
	"github.com/eventdeck/eventdeck/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	CreateEvent(ctx context.Context, fields Fields) (Event, error)
	UpdateEvent(ctx context.Context, id string, fields Fields) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
	// GetEvent returns an event owned by the current user.
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	// GetEventsByIds resolves ids to events owned by the current user; unknown and foreign ids
	// are dropped. An empty list is rejected with ErrEmptyIdList.
	GetEventsByIds(ctx context.Context, ids []string) ([]Event, error)
	Watch(ctx context.Context) (*Subscription, error)
}

type ServiceImpl struct {
	repo    Repository
	watcher Watcher
	bus     *event_bus.EventBus
	clock   utils.Clock
}

func NewService(repo Repository, watcher Watcher, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, watcher: watcher, bus: bus, clock: utils.SystemClock{}}
}

func (s *ServiceImpl) CreateEvent(ctx context.Context, fields Fields) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := fields.Validate(); err != nil {
		return Event{}, err
	}

	now := s.clock.Now()
	created, err := s.repo.Create(ctx, Event{
		UserId:    userId,
		Fields:    fields.Normalized(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	s.publish(ctx, event_bus.EventCreated, created)
	return created, nil
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, id string, fields Fields) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := fields.Validate(); err != nil {
		return Event{}, err
	}

	updated, err := s.repo.Update(ctx, Event{
		Id:        id,
		UserId:    userId,
		Fields:    fields.Normalized(),
		UpdatedAt: s.clock.Now(),
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event %s: %w", id, err)
	}
	s.publish(ctx, event_bus.EventUpdated, updated)
	return updated, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, id string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.repo.Delete(ctx, userId, id); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	s.publish(ctx, event_bus.EventDeleted, Event{Id: id, UserId: userId})
	return nil
}

func (s *ServiceImpl) GetEvent(ctx context.Context, id string) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if e.UserId != userId {
		return Event{}, ErrEventNotFound
	}
	return e, nil
}

func (s *ServiceImpl) ListEvents(ctx context.Context) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListByUser(ctx, userId)
}

func (s *ServiceImpl) GetEventsByIds(ctx context.Context, ids []string) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	events, err := s.repo.ListByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	owned := events[:0]
	for _, e := range events {
		if e.UserId == userId {
			owned = append(owned, e)
		}
	}
	return owned, nil
}

func (s *ServiceImpl) Watch(ctx context.Context) (*Subscription, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.watcher.Watch(ctx, userId)
}

// publish notifies watchers. The write already succeeded, so a failing subscriber is only logged.
func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, e Event) {
	change := event_bus.EventChanged{EventId: e.Id, UserId: e.UserId}
	if err := s.bus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), eventType, change)); err != nil {
		log.Warnf("failed to publish %s for event %s: %v", eventType, e.Id, err)
	}
}
