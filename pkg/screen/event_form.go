package screen

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/pkg/event"
)

var ErrNoEventSelected = errors.New("no event passed to the screen")

// EventForm backs both the create and the edit screen.
type EventForm struct {
	notices
	events  EventWriter
	nav     *navigation.Stack
	editing *event.Event

	event.Fields
	Errors map[string]string
}

func NewCreateEvent(events EventWriter, nav *navigation.Stack) *EventForm {
	return &EventForm{events: events, nav: nav}
}

// NewEditEvent initialises the form from the event passed to the current route.
func NewEditEvent(events EventWriter, nav *navigation.Stack) (*EventForm, error) {
	e, ok := nav.Current().EventOf()
	if !ok {
		return nil, fmt.Errorf("%s: %w", navigation.EditEvent, ErrNoEventSelected)
	}
	return &EventForm{events: events, nav: nav, editing: &e, Fields: e.Fields}, nil
}

func (f *EventForm) IsEdit() bool {
	return f.editing != nil
}

// Submit validates the required fields, issues one create or update call and goes back on
// success.
func (f *EventForm) Submit(ctx context.Context) (event.Event, bool) {
	f.Errors = nil
	if err := f.Fields.Validate(); err != nil {
		f.Errors = validationErrors(err)
		return event.Event{}, false
	}

	var (
		saved  event.Event
		err    error
		action string
	)
	if f.editing != nil {
		action = "Update failed"
		saved, err = f.events.UpdateEvent(ctx, f.editing.Id, f.Fields)
	} else {
		action = "Create failed"
		saved, err = f.events.CreateEvent(ctx, f.Fields)
	}
	if err != nil {
		if fields, ok := remoteFieldErrors(err); ok {
			f.Errors = fields
		} else {
			f.fail(action, err)
		}
		return event.Event{}, false
	}
	f.nav.GoBack()
	return saved, true
}

func (f *EventForm) Cancel() {
	f.nav.GoBack()
}

func validationErrors(err error) map[string]string {
	var validation *event.ValidationError
	if !errors.As(err, &validation) {
		return map[string]string{FormErrorField: err.Error()}
	}
	fields := make(map[string]string, len(validation.Fields))
	for _, fe := range validation.Fields {
		fields[fe.Field] = fe.Message
	}
	return fields
}
