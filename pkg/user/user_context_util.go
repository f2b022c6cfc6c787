package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const SessionKey contextKey = "session"

var ErrNoSession = errors.New("no session in context")

// CurrentId retrieves the current user's ID from the context. Returns ErrNoSession if there is none.
func CurrentId(ctx context.Context) (string, error) {
	session, err := CurrentSession(ctx)
	if err != nil {
		return "", err
	}
	return session.UserId, nil
}

func CurrentSession(ctx context.Context) (Session, error) {
	session, ok := ctx.Value(SessionKey).(Session)
	if !ok || session.UserId == "" {
		log.Trace("session not found in context")
		return Session{}, ErrNoSession
	}
	return session, nil
}

func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}
