package user

import (
	"context"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu          sync.Mutex
	credentials map[string]Credentials
	sessions    map[string]SessionRecord
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		credentials: map[string]Credentials{},
		sessions:    map[string]SessionRecord{},
	}
}

func (s *RepositoryStub) CreateUser(ctx context.Context, credentials Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.credentials {
		if NormalizeEmail(c.User.Email) == NormalizeEmail(credentials.User.Email) {
			return ErrEmailTaken
		}
	}
	s.credentials[credentials.User.Uid] = credentials
	return nil
}

func (s *RepositoryStub) GetUser(ctx context.Context, uid string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credentials[uid]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return c.User, nil
}

func (s *RepositoryStub) GetCredentials(ctx context.Context, email string) (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.credentials {
		if NormalizeEmail(c.User.Email) == NormalizeEmail(email) {
			return c, nil
		}
	}
	return Credentials{}, ErrUserNotFound
}

func (s *RepositoryStub) CreateSession(ctx context.Context, session SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Id] = session
	return nil
}

func (s *RepositoryStub) GetSession(ctx context.Context, id string) (SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return SessionRecord{}, ErrInvalidSession
	}
	return session, nil
}

func (s *RepositoryStub) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *RepositoryStub) DeleteSessionsExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, session := range s.sessions {
		if session.ExpiresAt.Before(t) {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *RepositoryStub) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials = map[string]Credentials{}
	s.sessions = map[string]SessionRecord{}
}
