package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionworks/authcore/internal/user"
)

func TestMemoryStoreInsert(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()

	t.Run("assigns sequential ids and nil tokens", func(t *testing.T) {
		u1, err := store.Insert(ctx, "a@x.com", "hash-a")
		require.NoError(t, err)
		u2, err := store.Insert(ctx, "b@x.com", "hash-b")
		require.NoError(t, err)

		assert.Equal(t, int64(1), u1.ID)
		assert.Equal(t, int64(2), u2.ID)
		assert.Equal(t, "a@x.com", u1.Email)
		assert.Equal(t, "hash-a", u1.HashedPassword)
		assert.Nil(t, u1.SessionToken)
		assert.Nil(t, u1.ResetToken)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := store.Insert(ctx, "a@x.com", "other-hash")
		assert.ErrorIs(t, err, user.ErrDuplicateEmail)
	})
}

func TestMemoryStoreLookups(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()

	u, err := store.Insert(ctx, "a@x.com", "hash-a")
	require.NoError(t, err)
	require.NoError(t, store.UpdateFields(ctx, u.ID,
		user.SetSessionToken("sess-1"),
		user.SetResetToken("reset-1"),
	))

	t.Run("by id", func(t *testing.T) {
		got, err := store.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, got.Email)
	})

	t.Run("by email", func(t *testing.T) {
		got, err := store.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("by session token", func(t *testing.T) {
		got, err := store.GetBySessionToken(ctx, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("by reset token", func(t *testing.T) {
		got, err := store.GetByResetToken(ctx, "reset-1")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("absence is ErrNotFound, not a zero user", func(t *testing.T) {
		for _, err := range []error{
			errOf(store.GetByID(ctx, 999)),
			errOf(store.GetByEmail(ctx, "nobody@x.com")),
			errOf(store.GetBySessionToken(ctx, "no-such-token")),
			errOf(store.GetByResetToken(ctx, "no-such-token")),
		} {
			assert.ErrorIs(t, err, user.ErrNotFound)
		}
	})
}

func TestMemoryStoreUpdateFields(t *testing.T) {
	ctx := context.Background()

	t.Run("read-your-writes on the same record", func(t *testing.T) {
		store := user.NewMemoryStore()
		u, err := store.Insert(ctx, "a@x.com", "hash-a")
		require.NoError(t, err)

		require.NoError(t, store.UpdateFields(ctx, u.ID, user.SetSessionToken("tok")))

		got, err := store.GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got.SessionToken)
		assert.Equal(t, "tok", *got.SessionToken)
	})

	t.Run("clearing a token removes it from lookup", func(t *testing.T) {
		store := user.NewMemoryStore()
		u, err := store.Insert(ctx, "a@x.com", "hash-a")
		require.NoError(t, err)

		require.NoError(t, store.UpdateFields(ctx, u.ID, user.SetSessionToken("tok")))
		require.NoError(t, store.UpdateFields(ctx, u.ID, user.ClearSessionToken()))

		_, err = store.GetBySessionToken(ctx, "tok")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("combined update applies atomically", func(t *testing.T) {
		store := user.NewMemoryStore()
		u, err := store.Insert(ctx, "a@x.com", "old-hash")
		require.NoError(t, err)
		require.NoError(t, store.UpdateFields(ctx, u.ID, user.SetResetToken("r1")))

		require.NoError(t, store.UpdateFields(ctx, u.ID,
			user.SetHashedPassword("new-hash"),
			user.ClearResetToken(),
		))

		got, err := store.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.HashedPassword)
		assert.Nil(t, got.ResetToken)
	})

	t.Run("unknown id is ErrNotFound", func(t *testing.T) {
		store := user.NewMemoryStore()
		err := store.UpdateFields(ctx, 42, user.ClearSessionToken())
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("zero-value update is ErrInvalidField and nothing sticks", func(t *testing.T) {
		store := user.NewMemoryStore()
		u, err := store.Insert(ctx, "a@x.com", "hash-a")
		require.NoError(t, err)

		err = store.UpdateFields(ctx, u.ID, user.SetSessionToken("tok"), user.FieldUpdate{})
		assert.ErrorIs(t, err, user.ErrInvalidField)

		got, err := store.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Nil(t, got.SessionToken)
	})
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := user.NewMemoryStore()

	u, err := store.Insert(ctx, "a@x.com", "hash-a")
	require.NoError(t, err)

	// Mutating a returned value must not leak into the store.
	u.Email = "tampered@x.com"

	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
}

func errOf(_ *user.User, err error) error { return err }
