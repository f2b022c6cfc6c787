package screen

import (
	"fmt"
	"strings"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/pkg/event"
)

const NotSpecified = "Not specified"

type Line struct {
	Label string
	Value string
}

type EventDetail struct {
	nav   *navigation.Stack
	Event event.Event
}

func NewEventDetail(nav *navigation.Stack) (*EventDetail, error) {
	e, ok := nav.Current().EventOf()
	if !ok {
		return nil, fmt.Errorf("%s: %w", navigation.EventDetail, ErrNoEventSelected)
	}
	return &EventDetail{nav: nav, Event: e}, nil
}

func (d *EventDetail) Lines() []Line {
	return []Line{
		{Label: "Event", Value: d.Event.EventName},
		{Label: "Description", Value: d.Event.Description},
		{Label: "Location", Value: d.Event.Location},
		{Label: "Date", Value: orNotSpecified(d.Event.Date)},
		{Label: "Time", Value: orNotSpecified(d.Event.Time)},
	}
}

func (d *EventDetail) Edit() {
	d.nav.Navigate(navigation.EditEvent, navigation.WithEvent(d.Event))
}

func (d *EventDetail) Back() {
	d.nav.GoBack()
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return NotSpecified
	}
	return v
}
