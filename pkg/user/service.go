package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventdeck/eventdeck/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "eventdeck"

// Service is the auth collaborator. Sessions are passed explicitly; there is no global
// "current user".
type Service interface {
	SignUp(ctx context.Context, email, password, confirmation string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, session Session) error
	// Authenticate resolves a bearer token into a session, or ErrInvalidSession.
	Authenticate(ctx context.Context, token string) (Session, error)
	GetUser(ctx context.Context, uid string) (User, error)
}

// SessionPurger is implemented by providers keeping server-side session records.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LocalAuth keeps users and sessions in Postgres and issues HS256 tokens whose id is the
// session row.
type LocalAuth struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
	clock  utils.Clock
}

func NewLocalAuth(repo Repository, secret string, ttl time.Duration, clock utils.Clock) *LocalAuth {
	return &LocalAuth{repo: repo, secret: []byte(secret), ttl: ttl, clock: clock}
}

func (a *LocalAuth) SignUp(ctx context.Context, email, password, confirmation string) (Session, error) {
	if err := ValidateSignUp(email, password, confirmation); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("failed to hash password: %w", err)
	}
	u := User{
		Uid:       uuid.NewString(),
		Email:     NormalizeEmail(email),
		CreatedAt: a.clock.Now(),
	}
	if err := a.repo.CreateUser(ctx, Credentials{User: u, PasswordHash: string(hash)}); err != nil {
		return Session{}, err
	}
	log.Infof("user %s signed up", u.Uid)
	return a.startSession(ctx, u)
}

func (a *LocalAuth) SignIn(ctx context.Context, email, password string) (Session, error) {
	if err := ValidateSignIn(email, password); err != nil {
		return Session{}, err
	}

	credentials, err := a.repo.GetCredentials(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	} else if err != nil {
		return Session{}, fmt.Errorf("failed to load credentials: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(credentials.PasswordHash), []byte(password)); err != nil {
		log.Debugf("password mismatch for user %s", credentials.User.Uid)
		return Session{}, ErrInvalidCredentials
	}
	return a.startSession(ctx, credentials.User)
}

func (a *LocalAuth) SignOut(ctx context.Context, session Session) error {
	if session.Id == "" {
		return ErrInvalidSession
	}
	return a.repo.DeleteSession(ctx, session.Id)
}

func (a *LocalAuth) Authenticate(ctx context.Context, token string) (Session, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.clock.Now),
	)
	if err != nil {
		log.Tracef("rejecting token: %v", err)
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	record, err := a.repo.GetSession(ctx, claims.ID)
	if err != nil {
		return Session{}, err
	}
	if record.UserUid != claims.Subject || !record.ExpiresAt.After(a.clock.Now()) {
		return Session{}, ErrInvalidSession
	}
	return Session{
		Id:        record.Id,
		Token:     token,
		UserId:    record.UserUid,
		Email:     claims.Email,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (a *LocalAuth) GetUser(ctx context.Context, uid string) (User, error) {
	return a.repo.GetUser(ctx, uid)
}

func (a *LocalAuth) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return a.repo.DeleteSessionsExpiredBefore(ctx, a.clock.Now())
}

func (a *LocalAuth) startSession(ctx context.Context, u User) (Session, error) {
	now := a.clock.Now()
	record := SessionRecord{
		Id:        uuid.NewString(),
		UserUid:   u.Uid,
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
	}
	claims := tokenClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        record.Id,
			Subject:   u.Uid,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign token: %w", err)
	}
	if err := a.repo.CreateSession(ctx, record); err != nil {
		return Session{}, err
	}
	return Session{
		Id:        record.Id,
		Token:     token,
		UserId:    u.Uid,
		Email:     u.Email,
		ExpiresAt: record.ExpiresAt,
	}, nil
}
