// Package screen holds the view-models of the app screens. Each screen receives its
// collaborators and session explicitly; remote failures become a dismissible Notice and are
// never retried.
package screen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/eventdeck/eventdeck/pkg/client"
	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/eventdeck/eventdeck/pkg/favorite"
	"github.com/eventdeck/eventdeck/pkg/user"
	log "github.com/sirupsen/logrus"
)

// FormErrorField keys an inline error not tied to a single input, such as bad credentials.
const FormErrorField = "form"

type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (user.Session, error)
	SignUp(ctx context.Context, email, password, confirmation string) (user.Session, error)
}

type EventWriter interface {
	CreateEvent(ctx context.Context, fields event.Fields) (event.Event, error)
	UpdateEvent(ctx context.Context, id string, fields event.Fields) (event.Event, error)
}

type DashboardService interface {
	WatchEvents(ctx context.Context) (*event.Subscription, error)
	DeleteEvent(ctx context.Context, id string) error
	FavoriteIds(ctx context.Context) ([]string, error)
	ToggleFavorite(ctx context.Context, eventId string) (favorite.ToggleResult, error)
	SignOut(ctx context.Context) error
}

type FavoritesService interface {
	FavoriteIds(ctx context.Context) ([]string, error)
	ListFavorites(ctx context.Context) ([]event.Event, error)
	RemoveFavorite(ctx context.Context, eventId string) error
}

// Notice is a dismissible message about a failed operation.
type Notice struct {
	Message string
}

type notices struct {
	mu      sync.Mutex
	current *Notice
}

// Notice returns the pending notice, if any.
func (n *notices) Notice() (Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notice{}, false
	}
	return *n.current, true
}

func (n *notices) DismissNotice() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = nil
}

func (n *notices) fail(action string, err error) {
	log.Warnf("%s: %v", action, err)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = &Notice{Message: fmt.Sprintf("%s: %s", action, describe(err))}
}

func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, client.ErrNotSignedIn):
		return "please sign in again"
	default:
		return err.Error()
	}
}

// remoteFieldErrors extracts per-field messages from a rejected request. It reports false
// when err carries none.
func remoteFieldErrors(err error) (map[string]string, bool) {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return nil, false
	}
	fields := make(map[string]string, len(apiErr.Fields))
	for _, f := range apiErr.Fields {
		fields[f.Field] = f.Message
	}
	return fields, true
}

// authFailure maps an error of the auth collaborator to inline form errors. It reports false
// for failures that are not about the submitted credentials.
func authFailure(err error) (map[string]string, bool) {
	if field := user.FieldOf(err); field != "" {
		return map[string]string{field: err.Error()}, true
	}
	if errors.Is(err, user.ErrInvalidCredentials) {
		return map[string]string{FormErrorField: err.Error()}, true
	}
	if fields, ok := remoteFieldErrors(err); ok {
		return fields, true
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return map[string]string{FormErrorField: apiErr.Message}, true
		case http.StatusConflict:
			return map[string]string{"email": apiErr.Message}, true
		}
	}
	return nil, false
}
