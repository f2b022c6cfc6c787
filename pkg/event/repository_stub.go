package event

import (
	"context"
	"fmt"
	"sync"
)

// RepositoryStub is an in-memory Repository counting the calls it receives.
type RepositoryStub struct {
	mu     sync.Mutex
	nextId int
	events map[string]Event
	order  []string

	Calls        map[string]int
	ListByIdsErr error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{events: map[string]Event{}, Calls: map[string]int{}}
}

func (s *RepositoryStub) Create(ctx context.Context, e Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["Create"]++
	s.nextId++
	e.Id = fmt.Sprintf("event-%d", s.nextId)
	s.events[e.Id] = e
	s.order = append(s.order, e.Id)
	return e, nil
}

func (s *RepositoryStub) Update(ctx context.Context, e Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["Update"]++
	current, ok := s.events[e.Id]
	if !ok || current.UserId != e.UserId {
		return Event{}, ErrEventNotFound
	}
	e.CreatedAt = current.CreatedAt
	s.events[e.Id] = e
	return e, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, userId string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["Delete"]++
	current, ok := s.events[id]
	if !ok || current.UserId != userId {
		return ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *RepositoryStub) Get(ctx context.Context, id string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["Get"]++
	e, ok := s.events[id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	return e, nil
}

func (s *RepositoryStub) ListByUser(ctx context.Context, userId string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["ListByUser"]++
	events := []Event{}
	for _, id := range s.order {
		if e, ok := s.events[id]; ok && e.UserId == userId {
			events = append(events, e)
		}
	}
	return events, nil
}

func (s *RepositoryStub) ListByIds(ctx context.Context, ids []string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["ListByIds"]++
	if len(ids) == 0 {
		return nil, ErrEmptyIdList
	}
	if s.ListByIdsErr != nil {
		return nil, s.ListByIdsErr
	}
	var found []Event
	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			found = append(found, e)
		}
	}
	return OrderByIds(ids, found), nil
}

func (s *RepositoryStub) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[method]
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId = 0
	s.events = map[string]Event{}
	s.order = nil
	s.Calls = map[string]int{}
	s.ListByIdsErr = nil
}
