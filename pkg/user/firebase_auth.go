package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
)

// PasswordClient signs users in and up with email and password.
type PasswordClient interface {
	VerifyPassword(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error)
	SignupNewUser(ctx context.Context, email, password string) (*identitytoolkit.SignupNewUserResponse, error)
}

// TokenVerifier is the part of the Firebase Admin auth client used to check ID tokens.
type TokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
}

// FirebaseAuth delegates credentials and tokens to Firebase Authentication.
type FirebaseAuth struct {
	passwords PasswordClient
	tokens    TokenVerifier
}

func NewFirebaseAuth(passwords PasswordClient, tokens TokenVerifier) *FirebaseAuth {
	return &FirebaseAuth{passwords: passwords, tokens: tokens}
}

func (a *FirebaseAuth) SignUp(ctx context.Context, email, password, confirmation string) (Session, error) {
	if err := ValidateSignUp(email, password, confirmation); err != nil {
		return Session{}, err
	}
	created, err := a.passwords.SignupNewUser(ctx, NormalizeEmail(email), password)
	if err != nil {
		return Session{}, mapIdentityError(err)
	}
	log.Infof("firebase user %s signed up", created.LocalId)
	return a.SignIn(ctx, email, password)
}

func (a *FirebaseAuth) SignIn(ctx context.Context, email, password string) (Session, error) {
	if err := ValidateSignIn(email, password); err != nil {
		return Session{}, err
	}
	resp, err := a.passwords.VerifyPassword(ctx, NormalizeEmail(email), password)
	if err != nil {
		return Session{}, mapIdentityError(err)
	}
	return Session{
		Token:     resp.IdToken,
		UserId:    resp.LocalId,
		Email:     resp.Email,
		ExpiresAt: time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

// SignOut revokes the user's refresh tokens. ID tokens issued before now stop verifying.
func (a *FirebaseAuth) SignOut(ctx context.Context, session Session) error {
	if err := a.tokens.RevokeRefreshTokens(ctx, session.UserId); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}

func (a *FirebaseAuth) Authenticate(ctx context.Context, token string) (Session, error) {
	verified, err := a.tokens.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		log.Tracef("rejecting firebase token: %v", err)
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	email, _ := verified.Claims["email"].(string)
	return Session{
		Token:     token,
		UserId:    verified.UID,
		Email:     email,
		ExpiresAt: time.Unix(verified.Expires, 0),
	}, nil
}

func (a *FirebaseAuth) GetUser(ctx context.Context, uid string) (User, error) {
	record, err := a.tokens.GetUser(ctx, uid)
	if auth.IsUserNotFound(err) {
		return User{}, ErrUserNotFound
	} else if err != nil {
		return User{}, fmt.Errorf("failed to get firebase user: %w", err)
	}
	u := User{Uid: record.UID, Email: record.Email}
	if record.UserMetadata != nil {
		u.CreatedAt = time.UnixMilli(record.UserMetadata.CreationTimestamp)
	}
	return u, nil
}

// mapIdentityError translates Identity Toolkit error codes into auth errors.
func mapIdentityError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("identity toolkit request failed: %w", err)
	}
	code := apiErr.Message
	switch {
	case strings.HasPrefix(code, "EMAIL_EXISTS"):
		return ErrEmailTaken
	case strings.HasPrefix(code, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(code, "INVALID_PASSWORD"),
		strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(code, "USER_DISABLED"):
		return ErrInvalidCredentials
	case strings.HasPrefix(code, "WEAK_PASSWORD"):
		return ErrPasswordTooShort
	case strings.HasPrefix(code, "MISSING_EMAIL"):
		return ErrEmailRequired
	case strings.HasPrefix(code, "INVALID_EMAIL"):
		return ErrEmailInvalid
	}
	return fmt.Errorf("identity toolkit request failed: %w", err)
}

// ToolkitClient adapts the generated Identity Toolkit service to PasswordClient.
type ToolkitClient struct {
	svc *identitytoolkit.Service
}

func NewToolkitClient(svc *identitytoolkit.Service) *ToolkitClient {
	return &ToolkitClient{svc: svc}
}

func (c *ToolkitClient) VerifyPassword(ctx context.Context, email, password string) (*identitytoolkit.VerifyPasswordResponse, error) {
	return c.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
}

func (c *ToolkitClient) SignupNewUser(ctx context.Context, email, password string) (*identitytoolkit.SignupNewUserResponse, error) {
	return c.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
}
