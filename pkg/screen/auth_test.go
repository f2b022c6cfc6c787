package screen

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/pkg/client"
	"github.com/eventdeck/eventdeck/pkg/user"
	"github.com/stretchr/testify/assert"
)

var ctx = context.Background()

func TestSignIn_Submit(t *testing.T) {
	t.Run("should show an inline error for an empty password without calling the backend", func(t *testing.T) {
		backend := newBackendStub()
		nav := navigation.NewStack()
		screen := NewSignIn(backend, nav)
		screen.Email = "alice@example.com"

		_, ok := screen.Submit(ctx)

		assert.False(t, ok)
		assert.Equal(t, map[string]string{"password": user.ErrPasswordRequired.Error()}, screen.Errors)
		assert.Equal(t, 0, backend.CallCount("SignIn"))
		assert.Equal(t, navigation.SignIn, nav.Current().Name)
	})

	t.Run("should replace the screen with home on success", func(t *testing.T) {
		backend := newBackendStub()
		backend.Session = user.Session{Token: "t", UserId: "alice"}
		nav := navigation.NewStack()
		screen := NewSignIn(backend, nav)
		screen.Email, screen.Password = "alice@example.com", "secret1"

		session, ok := screen.Submit(ctx)

		assert.True(t, ok)
		assert.Equal(t, "alice", session.UserId)
		assert.Equal(t, navigation.Home, nav.Current().Name)
		assert.Equal(t, 1, nav.Depth())
		assert.Empty(t, screen.Password)
	})

	t.Run("should show bad credentials inline", func(t *testing.T) {
		backend := newBackendStub()
		backend.AuthErr = &client.APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
		screen := NewSignIn(backend, navigation.NewStack())
		screen.Email, screen.Password = "alice@example.com", "wrong"

		_, ok := screen.Submit(ctx)

		assert.False(t, ok)
		assert.Equal(t, "Invalid email or password", screen.Errors[FormErrorField])
		_, hasNotice := screen.Notice()
		assert.False(t, hasNotice)
	})

	t.Run("should raise a notice when the backend is unreachable", func(t *testing.T) {
		backend := newBackendStub()
		backend.AuthErr = errors.New("connection refused")
		screen := NewSignIn(backend, navigation.NewStack())
		screen.Email, screen.Password = "alice@example.com", "secret1"

		screen.Submit(ctx)

		notice, ok := screen.Notice()
		assert.True(t, ok)
		assert.Equal(t, "Sign in failed: connection refused", notice.Message)
		screen.DismissNotice()
		_, ok = screen.Notice()
		assert.False(t, ok)
	})
}

func TestSignUp_Submit(t *testing.T) {
	t.Run("should reject mismatched passwords locally", func(t *testing.T) {
		backend := newBackendStub()
		nav := navigation.NewStack()
		nav.Navigate(navigation.SignUp, nil)
		screen := NewSignUp(backend, nav)
		screen.Email, screen.Password, screen.ConfirmPassword = "alice@example.com", "secret1", "secret2"

		_, ok := screen.Submit(ctx)

		assert.False(t, ok)
		assert.Equal(t, map[string]string{"confirmPassword": "passwords do not match"}, screen.Errors)
		assert.Equal(t, 0, backend.CallCount("SignUp"))
	})

	t.Run("should show a taken email next to the email field", func(t *testing.T) {
		backend := newBackendStub()
		backend.AuthErr = &client.APIError{Status: http.StatusConflict, Message: "Email is already registered"}
		screen := NewSignUp(backend, navigation.NewStack())
		screen.Email, screen.Password, screen.ConfirmPassword = "alice@example.com", "secret1", "secret1"

		screen.Submit(ctx)

		assert.Equal(t, "Email is already registered", screen.Errors["email"])
	})

	t.Run("should replace sign up with home on success", func(t *testing.T) {
		backend := newBackendStub()
		nav := navigation.NewStack()
		nav.Navigate(navigation.SignUp, nil)
		screen := NewSignUp(backend, nav)
		screen.Email, screen.Password, screen.ConfirmPassword = "alice@example.com", "secret1", "secret1"

		_, ok := screen.Submit(ctx)

		assert.True(t, ok)
		assert.Equal(t, navigation.Home, nav.Current().Name)
		assert.Equal(t, 2, nav.Depth())
	})
}
