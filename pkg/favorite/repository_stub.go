package favorite

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RepositoryStub keeps markers in memory. Unlike the real stores it accepts duplicate markers
// through AddMarker, which lets tests model legacy data.
type RepositoryStub struct {
	mu      sync.Mutex
	nextId  int
	markers []Marker
	Calls   map[string]int
	Err     error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{Calls: map[string]int{}}
}

func (s *RepositoryStub) AddMarker(userId, eventId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(userId, eventId)
}

func (s *RepositoryStub) add(userId, eventId string) {
	s.nextId++
	s.markers = append(s.markers, Marker{
		Id:        fmt.Sprintf("marker-%d", s.nextId),
		UserId:    userId,
		EventId:   eventId,
		CreatedAt: time.Unix(int64(s.nextId), 0),
	})
}

func (s *RepositoryStub) removePair(userId, eventId string) int {
	kept := s.markers[:0]
	removed := 0
	for _, m := range s.markers {
		if m.UserId == userId && m.EventId == eventId {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.markers = kept
	return removed
}

func (s *RepositoryStub) Toggle(ctx context.Context, userId, eventId string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["Toggle"]++
	if s.Err != nil {
		return false, s.Err
	}
	if s.removePair(userId, eventId) > 0 {
		return false, nil
	}
	s.add(userId, eventId)
	return true, nil
}

func (s *RepositoryStub) ListEventIds(ctx context.Context, userId string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["ListEventIds"]++
	if s.Err != nil {
		return nil, s.Err
	}
	var own []Marker
	for _, m := range s.markers {
		if m.UserId == userId {
			own = append(own, m)
		}
	}
	return uniqueEventIds(own), nil
}

func (s *RepositoryStub) Remove(ctx context.Context, userId, eventId string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["Remove"]++
	if s.Err != nil {
		return 0, s.Err
	}
	return s.removePair(userId, eventId), nil
}

func (s *RepositoryStub) FindDuplicates(ctx context.Context) ([]Duplicate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["FindDuplicates"]++
	if s.Err != nil {
		return nil, s.Err
	}
	return countDuplicates(s.markers), nil
}

func (s *RepositoryStub) MarkerCount(userId, eventId string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.markers {
		if m.UserId == userId && m.EventId == eventId {
			n++
		}
	}
	return n
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId = 0
	s.markers = nil
	s.Calls = map[string]int{}
	s.Err = nil
}

func (s *RepositoryStub) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[method]
}
