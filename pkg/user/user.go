package user

import (
	"errors"
	"strings"
	"time"
)

const MinPasswordLength = 6

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("email address is invalid")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidSession     = errors.New("session is invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
)

type User struct {
	Uid       string
	Email     string
	CreatedAt time.Time
}

// Session is an authenticated user session. Id identifies the server-side session record and is
// empty for providers that do not keep one.
type Session struct {
	Id        string
	Token     string
	UserId    string
	Email     string
	ExpiresAt time.Time
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSignIn checks the sign-in form locally, before anything is sent to the auth provider.
func ValidateSignIn(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}

func ValidateSignUp(email, password, confirmation string) error {
	if err := ValidateSignIn(email, password); err != nil {
		return err
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// FieldOf names the form field a validation error belongs to, or "" when err is not a field error.
func FieldOf(err error) string {
	switch {
	case errors.Is(err, ErrEmailRequired), errors.Is(err, ErrEmailInvalid), errors.Is(err, ErrEmailTaken):
		return "email"
	case errors.Is(err, ErrPasswordRequired), errors.Is(err, ErrPasswordTooShort):
		return "password"
	case errors.Is(err, ErrPasswordMismatch):
		return "confirmPassword"
	default:
		return ""
	}
}
