package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionworks/authcore/internal/auth"
	"github.com/sessionworks/authcore/internal/logging"
	"github.com/sessionworks/authcore/internal/user"
)

func newTestService() (*auth.Service, *user.MemoryStore) {
	store := user.NewMemoryStore()
	svc := auth.NewService(
		store,
		auth.NewArgon2Hasher(),
		auth.NewRandomTokenSource(),
		nil,
		logging.NewLogger(true),
	)
	return svc, store
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("registered credentials log in", func(t *testing.T) {
		svc, _ := newTestService()

		u, err := svc.Register(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", u.Email)
		assert.NotEmpty(t, u.HashedPassword)
		assert.NotEqual(t, "pw1", u.HashedPassword)

		ok, err := svc.ValidLogin(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("duplicate email fails and keeps the original credential", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Register(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "a@x.com", "pw2")
		assert.ErrorIs(t, err, user.ErrDuplicateEmail)

		ok, err := svc.ValidLogin(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.ValidLogin(ctx, "a@x.com", "pw2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty fields are rejected", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Register(ctx, "", "pw")
		assert.ErrorIs(t, err, auth.ErrEmailRequired)

		_, err = svc.Register(ctx, "a@x.com", "")
		assert.ErrorIs(t, err, auth.ErrPasswordRequired)
	})
}

func TestValidLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		ok, err := svc.ValidLogin(ctx, "a@x.com", "wrong")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = svc.ValidLogin(ctx, "nobody@x.com", "anything")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("issued token resolves to the user", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Register(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		token, err := svc.CreateSession(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		u, err := svc.GetUserFromSession(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "a@x.com", u.Email)
	})

	t.Run("unknown email yields empty token, not an error", func(t *testing.T) {
		svc, _ := newTestService()

		token, err := svc.CreateSession(ctx, "nobody@x.com")
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("second login orphans the first token", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Register(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		t1, err := svc.CreateSession(ctx, "a@x.com")
		require.NoError(t, err)
		t2, err := svc.CreateSession(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotEqual(t, t1, t2)

		u, err := svc.GetUserFromSession(ctx, t1)
		require.NoError(t, err)
		assert.Nil(t, u)

		u, err = svc.GetUserFromSession(ctx, t2)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "a@x.com", u.Email)
	})
}

func TestGetUserFromSession(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token is a soft nil", func(t *testing.T) {
		svc, _ := newTestService()
		u, err := svc.GetUserFromSession(ctx, "no-such-token")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("empty token short-circuits without a store call", func(t *testing.T) {
		store := &countingStore{Store: user.NewMemoryStore()}
		svc := auth.NewService(
			store,
			auth.NewArgon2Hasher(),
			auth.NewRandomTokenSource(),
			nil,
			logging.NewLogger(true),
		)

		u, err := svc.GetUserFromSession(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, u)
		assert.Zero(t, store.sessionLookups)
	})
}

func TestDestroySession(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidates the issued token", func(t *testing.T) {
		svc, _ := newTestService()
		u, err := svc.Register(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		token, err := svc.CreateSession(ctx, "a@x.com")
		require.NoError(t, err)

		require.NoError(t, svc.DestroySession(ctx, u.ID))

		got, err := svc.GetUserFromSession(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("unknown user id is a silent no-op", func(t *testing.T) {
		svc, _ := newTestService()
		assert.NoError(t, svc.DestroySession(ctx, 999))
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email propagates not found", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.GetResetToken(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("reset token is single use", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Register(ctx, "a@x.com", "oldpw")
		require.NoError(t, err)

		resetToken, err := svc.GetResetToken(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotEmpty(t, resetToken)

		require.NoError(t, svc.UpdatePassword(ctx, resetToken, "newpw"))

		ok, err := svc.ValidLogin(ctx, "a@x.com", "newpw")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.ValidLogin(ctx, "a@x.com", "oldpw")
		require.NoError(t, err)
		assert.False(t, ok)

		err = svc.UpdatePassword(ctx, resetToken, "anything")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("unknown reset token propagates not found", func(t *testing.T) {
		svc, _ := newTestService()
		err := svc.UpdatePassword(ctx, "no-such-token", "newpw")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("empty new password is rejected", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Register(ctx, "a@x.com", "pw")
		require.NoError(t, err)
		resetToken, err := svc.GetResetToken(ctx, "a@x.com")
		require.NoError(t, err)

		err = svc.UpdatePassword(ctx, resetToken, "")
		assert.ErrorIs(t, err, auth.ErrPasswordRequired)
	})
}

func TestSessionLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	u, err := svc.Register(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	t1, err := svc.CreateSession(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, t1)

	_, err = svc.Register(ctx, "a@x.com", "pw2")
	require.ErrorIs(t, err, user.ErrDuplicateEmail)

	got, err := svc.GetUserFromSession(ctx, t1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, svc.DestroySession(ctx, u.ID))

	got, err = svc.GetUserFromSession(ctx, t1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// countingStore records session-token lookups to verify short-circuits.
type countingStore struct {
	user.Store
	sessionLookups int
}

func (s *countingStore) GetBySessionToken(ctx context.Context, token string) (*user.User, error) {
	s.sessionLookups++
	return s.Store.GetBySessionToken(ctx, token)
}
