package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStore_Lifecycle(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	userID := uuid.New()

	sess, err := store.Create(ctx, userID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("session:"+sess.ID))
	assert.Equal(t, time.Hour, mr.TTL("session:"+sess.ID))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)

	require.NoError(t, store.Delete(ctx, sess.ID))
	assert.False(t, mr.Exists("session:"+sess.ID))
	assert.ErrorIs(t, store.Delete(ctx, sess.ID), ErrNotFound)
}

func TestRedisStore_GetUnknown(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, uuid.New())
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("session:broken", "{not json"))

	_, err := store.Get(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_DeleteByUser(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	jane, john := uuid.New(), uuid.New()

	a, err := store.Create(ctx, jane)
	require.NoError(t, err)
	b, err := store.Create(ctx, jane)
	require.NoError(t, err)
	c, err := store.Create(ctx, john)
	require.NoError(t, err)

	require.NoError(t, store.DeleteByUser(ctx, jane))

	assert.False(t, mr.Exists("session:"+a.ID))
	assert.False(t, mr.Exists("session:"+b.ID))
	assert.False(t, mr.Exists("user-sessions:"+jane.String()))
	assert.True(t, mr.Exists("session:"+c.ID))
}
