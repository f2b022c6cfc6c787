package navigation

import (
	"testing"

	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	t.Run("should start at sign in", func(t *testing.T) {
		s := NewStack()

		assert.Equal(t, SignIn, s.Current().Name)
		assert.Equal(t, 1, s.Depth())
	})

	t.Run("should not go back past the root", func(t *testing.T) {
		s := NewStack()

		assert.False(t, s.GoBack())
		assert.Equal(t, SignIn, s.Current().Name)
	})

	t.Run("should replace sign in with home so back does not return to it", func(t *testing.T) {
		s := NewStack()
		s.Navigate(SignUp, nil)

		s.Replace(Home, nil)

		assert.Equal(t, Home, s.Current().Name)
		assert.True(t, s.GoBack())
		assert.Equal(t, SignIn, s.Current().Name)
	})

	t.Run("should pass the selected event forward", func(t *testing.T) {
		s := NewStack()
		s.Reset(Home, nil)
		e := event.Event{Id: "e1", Fields: event.Fields{EventName: "Standup"}}

		s.Navigate(EditEvent, WithEvent(e))

		got, ok := s.Current().EventOf()
		assert.True(t, ok)
		assert.Equal(t, e, got)
		s.GoBack()
		_, ok = s.Current().EventOf()
		assert.False(t, ok)
	})

	t.Run("should drop history on reset", func(t *testing.T) {
		s := NewStack()
		s.Reset(Home, nil)
		s.Navigate(FavoriteEvents, nil)

		s.Reset(SignIn, nil)

		assert.Equal(t, 1, s.Depth())
		assert.Equal(t, SignIn, s.Current().Name)
	})
}
