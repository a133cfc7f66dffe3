package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) (*AppSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewAppSessionStore(rdb, ttl), mr
}

func TestCreateGetDelete(t *testing.T) {
	s, _ := newStore(t, time.Hour)
	ctx := context.Background()

	created, err := s.Create(ctx, "jti-1", "user-1", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.IssuedAt+3600, created.ExpiresAt)

	got, err := s.Get(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "a@example.com", got.Email)

	require.NoError(t, s.Delete(ctx, "jti-1"))
	_, err = s.Get(ctx, "jti-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionExpires(t *testing.T) {
	s, mr := newStore(t, time.Minute)
	ctx := context.Background()

	_, err := s.Create(ctx, "jti-1", "user-1", "a@example.com")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = s.Get(ctx, "jti-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokeAllForUser(t *testing.T) {
	s, mr := newStore(t, time.Hour)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := s.Create(ctx, id, "user-1", "a@example.com")
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, "c", "user-2", "b@example.com")
	require.NoError(t, err)

	require.NoError(t, s.RevokeAllForUser(ctx, "user-1"))

	for _, id := range []string{"a", "b"} {
		_, err := s.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	_, err = s.Get(ctx, "c")
	assert.NoError(t, err)
	assert.False(t, mr.Exists(userSetKey("user-1")))
}
