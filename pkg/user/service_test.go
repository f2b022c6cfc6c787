package user

import (
	"context"
	"testing"
	"time"

	"github.com/eventdeck/eventdeck/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var repoStub = NewRepositoryStub()

var clock = utils.NewMockClock(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))

var service *LocalAuth

func setup(t *testing.T) func() {
	clock.SetNow(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	service = NewLocalAuth(repoStub, "test-secret", time.Hour, clock)
	return func() {
		repoStub.Cleanup()
	}
}

func TestLocalAuth_SignUp(t *testing.T) {
	t.Run("should create user and open a session", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		session, err := service.SignUp(ctx, " Alice@Example.com ", "secret1", "secret1")

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, "alice@example.com", session.Email)
		assert.Equal(t, clock.Now().Add(time.Hour), session.ExpiresAt)
		assert.Equal(t, 1, repoStub.SessionCount())
	})

	t.Run("should reject mismatched confirmation without touching the store", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.SignUp(ctx, "alice@example.com", "secret1", "secret2")

		assert.ErrorIs(t, err, ErrPasswordMismatch)
		_, lookupErr := repoStub.GetCredentials(ctx, "alice@example.com")
		assert.ErrorIs(t, lookupErr, ErrUserNotFound)
	})

	t.Run("should reject duplicate email", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		_, err := service.SignUp(ctx, "alice@example.com", "secret1", "secret1")
		require.NoError(t, err)

		_, err = service.SignUp(ctx, "ALICE@example.com", "secret2", "secret2")

		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLocalAuth_SignIn(t *testing.T) {
	t.Run("should sign in with correct password", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		created, err := service.SignUp(ctx, "bob@example.com", "secret1", "secret1")
		require.NoError(t, err)

		session, err := service.SignIn(ctx, "bob@example.com", "secret1")

		require.NoError(t, err)
		assert.Equal(t, created.UserId, session.UserId)
		assert.NotEqual(t, created.Id, session.Id)
	})

	t.Run("should map wrong password and unknown email to invalid credentials", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		_, err := service.SignUp(ctx, "bob@example.com", "secret1", "secret1")
		require.NoError(t, err)

		_, wrongPassword := service.SignIn(ctx, "bob@example.com", "nope-nope")
		_, unknownEmail := service.SignIn(ctx, "carol@example.com", "secret1")

		assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	})
}

func TestLocalAuth_Authenticate(t *testing.T) {
	t.Run("should resolve a fresh token", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		session, err := service.SignUp(ctx, "dan@example.com", "secret1", "secret1")
		require.NoError(t, err)

		resolved, err := service.Authenticate(ctx, session.Token)

		require.NoError(t, err)
		assert.Equal(t, session.UserId, resolved.UserId)
		assert.Equal(t, session.Id, resolved.Id)
		assert.Equal(t, "dan@example.com", resolved.Email)
	})

	t.Run("should reject token after sign out", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		session, err := service.SignUp(ctx, "dan@example.com", "secret1", "secret1")
		require.NoError(t, err)
		require.NoError(t, service.SignOut(ctx, session))

		_, err = service.Authenticate(ctx, session.Token)

		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("should reject expired token", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		session, err := service.SignUp(ctx, "dan@example.com", "secret1", "secret1")
		require.NoError(t, err)
		clock.Advance(2 * time.Hour)

		_, err = service.Authenticate(ctx, session.Token)

		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("should reject token signed with another secret", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		other := NewLocalAuth(repoStub, "other-secret", time.Hour, clock)
		session, err := other.SignUp(ctx, "eve@example.com", "secret1", "secret1")
		require.NoError(t, err)

		_, err = service.Authenticate(ctx, session.Token)

		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestLocalAuth_PurgeExpiredSessions(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	// given
	_, err := service.SignUp(ctx, "old@example.com", "secret1", "secret1")
	require.NoError(t, err)
	clock.Advance(90 * time.Minute)
	_, err = service.SignIn(ctx, "old@example.com", "secret1")
	require.NoError(t, err)

	// when
	purged, err := service.PurgeExpiredSessions(ctx)

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, 1, repoStub.SessionCount())
}
