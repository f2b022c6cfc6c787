package screen

import (
	"errors"
	"net/http"
	"testing"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/internal/rest"
	"github.com/eventdeck/eventdeck/pkg/client"
	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func homeWith(route navigation.Name, params map[string]any) *navigation.Stack {
	nav := navigation.NewStack()
	nav.Reset(navigation.Home, nil)
	nav.Navigate(route, params)
	return nav
}

func TestCreateEvent_Submit(t *testing.T) {
	t.Run("should flag a missing location and make no remote call", func(t *testing.T) {
		backend := newBackendStub()
		nav := homeWith(navigation.CreateEvent, nil)
		form := NewCreateEvent(backend, nav)
		form.EventName, form.Description = "Standup", "Daily sync"

		_, ok := form.Submit(ctx)

		assert.False(t, ok)
		assert.Equal(t, map[string]string{"location": "Location is required"}, form.Errors)
		assert.Equal(t, 0, backend.CallCount("CreateEvent"))
		assert.Equal(t, navigation.CreateEvent, nav.Current().Name)
	})

	t.Run("should create once and go back", func(t *testing.T) {
		backend := newBackendStub()
		backend.Saved = event.Event{Id: "e1"}
		nav := homeWith(navigation.CreateEvent, nil)
		form := NewCreateEvent(backend, nav)
		form.Fields = event.Fields{EventName: "Standup", Description: "Daily sync", Location: "Room 1"}

		saved, ok := form.Submit(ctx)

		assert.True(t, ok)
		assert.Equal(t, "e1", saved.Id)
		assert.Equal(t, 1, backend.CallCount("CreateEvent"))
		assert.Equal(t, navigation.Home, nav.Current().Name)
	})

	t.Run("should keep the form open with a notice when the store fails", func(t *testing.T) {
		backend := newBackendStub()
		backend.WriteErr = &client.APIError{Status: http.StatusInternalServerError, Message: "Event store failed"}
		nav := homeWith(navigation.CreateEvent, nil)
		form := NewCreateEvent(backend, nav)
		form.Fields = event.Fields{EventName: "Standup", Description: "Daily sync", Location: "Room 1"}

		_, ok := form.Submit(ctx)

		assert.False(t, ok)
		notice, _ := form.Notice()
		assert.Equal(t, "Create failed: Event store failed", notice.Message)
		assert.Equal(t, navigation.CreateEvent, nav.Current().Name)
	})

	t.Run("should show field errors returned by the server", func(t *testing.T) {
		backend := newBackendStub()
		backend.WriteErr = &client.APIError{Status: http.StatusBadRequest, Fields: []rest.FieldError{{Field: "eventName", Message: "Event name is required"}}}
		form := NewCreateEvent(backend, homeWith(navigation.CreateEvent, nil))
		form.Fields = event.Fields{EventName: "x", Description: "y", Location: "z"}

		form.Submit(ctx)

		assert.Equal(t, map[string]string{"eventName": "Event name is required"}, form.Errors)
	})
}

func TestEditEvent(t *testing.T) {
	standup := event.Event{Id: "e1", Fields: event.Fields{EventName: "Standup", Description: "Daily sync", Location: "Room 1"}}

	t.Run("should start from the event passed by navigation", func(t *testing.T) {
		form, err := NewEditEvent(newBackendStub(), homeWith(navigation.EditEvent, navigation.WithEvent(standup)))

		require.NoError(t, err)
		assert.True(t, form.IsEdit())
		assert.Equal(t, standup.Fields, form.Fields)
	})

	t.Run("should fail without an event parameter", func(t *testing.T) {
		_, err := NewEditEvent(newBackendStub(), homeWith(navigation.EditEvent, nil))

		assert.True(t, errors.Is(err, ErrNoEventSelected))
	})

	t.Run("should update by id", func(t *testing.T) {
		backend := newBackendStub()
		nav := homeWith(navigation.EditEvent, navigation.WithEvent(standup))
		form, err := NewEditEvent(backend, nav)
		require.NoError(t, err)
		form.Location = "Room 2"

		_, ok := form.Submit(ctx)

		assert.True(t, ok)
		assert.Equal(t, []string{"e1"}, backend.Args["UpdateEvent"])
		assert.Equal(t, navigation.Home, nav.Current().Name)
	})
}

func TestEventDetail(t *testing.T) {
	t.Run("should show missing date and time as not specified", func(t *testing.T) {
		e := event.Event{Id: "e1", Fields: event.Fields{EventName: "Standup", Description: "Daily", Location: "Room 1", Time: "09:30"}}
		detail, err := NewEventDetail(homeWith(navigation.EventDetail, navigation.WithEvent(e)))
		require.NoError(t, err)

		lines := detail.Lines()

		assert.Contains(t, lines, Line{Label: "Date", Value: NotSpecified})
		assert.Contains(t, lines, Line{Label: "Time", Value: "09:30"})
	})

	t.Run("should open the edit screen with the same event", func(t *testing.T) {
		e := event.Event{Id: "e1"}
		nav := homeWith(navigation.EventDetail, navigation.WithEvent(e))
		detail, err := NewEventDetail(nav)
		require.NoError(t, err)

		detail.Edit()

		got, ok := nav.Current().EventOf()
		assert.True(t, ok)
		assert.Equal(t, navigation.EditEvent, nav.Current().Name)
		assert.Equal(t, "e1", got.Id)
	})
}
