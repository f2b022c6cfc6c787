package screen

import (
	"context"

	"github.com/eventdeck/eventdeck/internal/navigation"
	"github.com/eventdeck/eventdeck/pkg/user"
)

type SignIn struct {
	notices
	auth Authenticator
	nav  *navigation.Stack

	Email    string
	Password string
	// Errors holds inline messages keyed by field name or FormErrorField.
	Errors map[string]string
}

func NewSignIn(auth Authenticator, nav *navigation.Stack) *SignIn {
	return &SignIn{auth: auth, nav: nav}
}

// Submit signs in and replaces the screen with Home. Local validation failures never reach
// the auth collaborator.
func (s *SignIn) Submit(ctx context.Context) (user.Session, bool) {
	s.Errors = nil
	if err := user.ValidateSignIn(s.Email, s.Password); err != nil {
		s.Errors = map[string]string{user.FieldOf(err): err.Error()}
		return user.Session{}, false
	}

	session, err := s.auth.SignIn(ctx, s.Email, s.Password)
	if err != nil {
		if inline, ok := authFailure(err); ok {
			s.Errors = inline
		} else {
			s.fail("Sign in failed", err)
		}
		return user.Session{}, false
	}
	s.Password = ""
	s.nav.Replace(navigation.Home, nil)
	return session, true
}

func (s *SignIn) GoToSignUp() {
	s.nav.Navigate(navigation.SignUp, nil)
}

type SignUp struct {
	notices
	auth Authenticator
	nav  *navigation.Stack

	Email           string
	Password        string
	ConfirmPassword string
	Errors          map[string]string
}

func NewSignUp(auth Authenticator, nav *navigation.Stack) *SignUp {
	return &SignUp{auth: auth, nav: nav}
}

// Submit creates the account and replaces the screen with Home.
func (s *SignUp) Submit(ctx context.Context) (user.Session, bool) {
	s.Errors = nil
	if err := user.ValidateSignUp(s.Email, s.Password, s.ConfirmPassword); err != nil {
		s.Errors = map[string]string{user.FieldOf(err): err.Error()}
		return user.Session{}, false
	}

	session, err := s.auth.SignUp(ctx, s.Email, s.Password, s.ConfirmPassword)
	if err != nil {
		if inline, ok := authFailure(err); ok {
			s.Errors = inline
		} else {
			s.fail("Sign up failed", err)
		}
		return user.Session{}, false
	}
	s.Password, s.ConfirmPassword = "", ""
	s.nav.Replace(navigation.Home, nil)
	return session, true
}

func (s *SignUp) GoToSignIn() {
	s.nav.GoBack()
}
