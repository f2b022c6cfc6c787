package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

// Credentials is a stored user together with its password hash.
type Credentials struct {
	User         User
	PasswordHash string
}

// SessionRecord is the server-side row behind a locally issued token.
type SessionRecord struct {
	Id        string
	UserUid   string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	CreateUser(ctx context.Context, credentials Credentials) error
	GetUser(ctx context.Context, uid string) (User, error)
	GetCredentials(ctx context.Context, email string) (Credentials, error)
	CreateSession(ctx context.Context, session SessionRecord) error
	GetSession(ctx context.Context, id string) (SessionRecord, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsExpiredBefore(ctx context.Context, t time.Time) (int64, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) CreateUser(ctx context.Context, credentials Credentials) error {
	query := `INSERT INTO users (uid, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	u := credentials.User
	_, err := r.db.Exec(ctx, query, u.Uid, u.Email, credentials.PasswordHash, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		log.Errorf("failed to create user: %v", err)
		return err
	}
	return nil
}

func (r *repositoryImpl) GetUser(ctx context.Context, uid string) (User, error) {
	query := `SELECT uid, email, created_at FROM users WHERE uid = $1`
	var u User
	err := r.db.QueryRow(ctx, query, uid).Scan(&u.Uid, &u.Email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return u, nil
}

func (r *repositoryImpl) GetCredentials(ctx context.Context, email string) (Credentials, error) {
	query := `SELECT uid, email, created_at, password_hash FROM users WHERE lower(email) = lower($1)`
	var c Credentials
	err := r.db.QueryRow(ctx, query, email).Scan(&c.User.Uid, &c.User.Email, &c.User.CreatedAt, &c.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get credentials: %v", err)
		return Credentials{}, err
	}
	return c, nil
}

func (r *repositoryImpl) CreateSession(ctx context.Context, session SessionRecord) error {
	query := `INSERT INTO sessions (id, user_uid, expires_at, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, session.Id, session.UserUid, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		log.Errorf("failed to create session: %v", err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetSession(ctx context.Context, id string) (SessionRecord, error) {
	query := `SELECT id, user_uid, expires_at, created_at FROM sessions WHERE id = $1`
	var s SessionRecord
	err := r.db.QueryRow(ctx, query, id).Scan(&s.Id, &s.UserUid, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SessionRecord{}, ErrInvalidSession
	} else if err != nil {
		log.Errorf("failed to get session: %v", err)
		return SessionRecord{}, err
	}
	return s, nil
}

func (r *repositoryImpl) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		log.Errorf("failed to delete session: %v", err)
		return err
	}
	return nil
}

func (r *repositoryImpl) DeleteSessionsExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, t)
	if err != nil {
		log.Errorf("failed to purge sessions: %v", err)
		return 0, err
	}
	return tag.RowsAffected(), nil
}
