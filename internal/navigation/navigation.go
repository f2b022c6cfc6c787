package navigation

import (
	"github.com/eventdeck/eventdeck/pkg/event"
)

type Name string

const (
	SignIn         Name = "SignIn"
	SignUp         Name = "SignUp"
	Home           Name = "Home"
	CreateEvent    Name = "CreateEvent"
	EditEvent      Name = "EditEvent"
	EventDetail    Name = "EventDetail"
	FavoriteEvents Name = "FavoriteEvents"
)

// EventParam is the route parameter carrying the selected event to edit and detail screens.
const EventParam = "event"

type Route struct {
	Name   Name
	Params map[string]any
}

// EventOf returns the event passed to the route, if any.
func (r Route) EventOf() (event.Event, bool) {
	e, ok := r.Params[EventParam].(event.Event)
	return e, ok
}

// WithEvent builds params passing e forward.
func WithEvent(e event.Event) map[string]any {
	return map[string]any{EventParam: e}
}

// Stack is a linear history of screens. It always holds at least one route.
// It is not safe for concurrent use.
type Stack struct {
	routes []Route
}

// NewStack starts at the sign-in screen.
func NewStack() *Stack {
	return &Stack{routes: []Route{{Name: SignIn}}}
}

// Navigate pushes a screen on top of the current one.
func (s *Stack) Navigate(name Name, params map[string]any) {
	s.routes = append(s.routes, Route{Name: name, Params: params})
}

// Replace swaps the current screen, so going back skips it.
func (s *Stack) Replace(name Name, params map[string]any) {
	s.routes[len(s.routes)-1] = Route{Name: name, Params: params}
}

// Reset drops the whole history and starts again at name.
func (s *Stack) Reset(name Name, params map[string]any) {
	s.routes = []Route{{Name: name, Params: params}}
}

// GoBack pops the current screen. It reports false and does nothing at the root.
func (s *Stack) GoBack() bool {
	if len(s.routes) == 1 {
		return false
	}
	s.routes = s.routes[:len(s.routes)-1]
	return true
}

func (s *Stack) Current() Route {
	return s.routes[len(s.routes)-1]
}

func (s *Stack) Depth() int {
	return len(s.routes)
}
