package user

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
)

type passwordClientStub struct {
	signupCalls int
	verifyCalls int
	signupErr   error
	verifyErr   error
}

func (p *passwordClientStub) VerifyPassword(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error) {
	p.verifyCalls++
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return &identitytoolkit.VerifyPasswordResponse{IdToken: "id-token", LocalId: "fb-uid", Email: email, ExpiresIn: 3600}, nil
}

func (p *passwordClientStub) SignupNewUser(ctx context.Context, email, password string) (*identitytoolkit.SignupNewUserResponse, error) {
	p.signupCalls++
	if p.signupErr != nil {
		return nil, p.signupErr
	}
	return &identitytoolkit.SignupNewUserResponse{LocalId: "fb-uid", Email: email}, nil
}

type tokenVerifierStub struct {
	revoked []string
}

func (v *tokenVerifierStub) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error) {
	if idToken != "id-token" {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: "fb-uid", Expires: 1700000000, Claims: map[string]interface{}{"email": "fb@example.com"}}, nil
}

func (v *tokenVerifierStub) RevokeRefreshTokens(ctx context.Context, uid string) error {
	v.revoked = append(v.revoked, uid)
	return nil
}

func (v *tokenVerifierStub) GetUser(ctx context.Context, uid string) (*auth.UserRecord, error) {
	return &auth.UserRecord{UserInfo: &auth.UserInfo{UID: uid, Email: "fb@example.com"}}, nil
}

func TestFirebaseAuth_SignUp(t *testing.T) {
	t.Run("should sign up and then sign in", func(t *testing.T) {
		passwords := &passwordClientStub{}
		a := NewFirebaseAuth(passwords, &tokenVerifierStub{})

		session, err := a.SignUp(context.Background(), "fb@example.com", "secret1", "secret1")

		require.NoError(t, err)
		assert.Equal(t, "id-token", session.Token)
		assert.Equal(t, "fb-uid", session.UserId)
		assert.Equal(t, 1, passwords.signupCalls)
		assert.Equal(t, 1, passwords.verifyCalls)
	})

	t.Run("should not call firebase when confirmation mismatches", func(t *testing.T) {
		passwords := &passwordClientStub{}
		a := NewFirebaseAuth(passwords, &tokenVerifierStub{})

		_, err := a.SignUp(context.Background(), "fb@example.com", "secret1", "secret9")

		assert.ErrorIs(t, err, ErrPasswordMismatch)
		assert.Equal(t, 0, passwords.signupCalls)
	})

	t.Run("should map existing email", func(t *testing.T) {
		passwords := &passwordClientStub{signupErr: &googleapi.Error{Code: 400, Message: "EMAIL_EXISTS"}}
		a := NewFirebaseAuth(passwords, &tokenVerifierStub{})

		_, err := a.SignUp(context.Background(), "fb@example.com", "secret1", "secret1")

		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestFirebaseAuth_AuthenticateAndSignOut(t *testing.T) {
	verifier := &tokenVerifierStub{}
	a := NewFirebaseAuth(&passwordClientStub{}, verifier)

	session, err := a.Authenticate(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "fb@example.com", session.Email)

	_, err = a.Authenticate(context.Background(), "forged")
	assert.ErrorIs(t, err, ErrInvalidSession)

	require.NoError(t, a.SignOut(context.Background(), session))
	assert.Equal(t, []string{"fb-uid"}, verifier.revoked)
}

func TestMapIdentityError(t *testing.T) {
	tests := []struct {
		message string
		want    error
	}{
		{"EMAIL_NOT_FOUND", ErrInvalidCredentials},
		{"INVALID_PASSWORD", ErrInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", ErrInvalidCredentials},
		{"WEAK_PASSWORD : Password should be at least 6 characters", ErrPasswordTooShort},
		{"EMAIL_EXISTS", ErrEmailTaken},
		{"INVALID_EMAIL", ErrEmailInvalid},
		{"MISSING_EMAIL", ErrEmailRequired},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.ErrorIs(t, mapIdentityError(&googleapi.Error{Code: 400, Message: tt.message}), tt.want)
		})
	}

	t.Run("transport errors are wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := mapIdentityError(cause)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("a malformed address is reported on the email field", func(t *testing.T) {
		err := mapIdentityError(&googleapi.Error{Code: 400, Message: "INVALID_EMAIL"})

		assert.NotErrorIs(t, err, ErrEmailRequired)
		assert.Equal(t, "email", FieldOf(err))
		assert.Equal(t, "email address is invalid", err.Error())
	})
}
