package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewRedisStore(client), mr
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()
	key := PlaylistSongsKey("pl-1")

	_, err := store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Set(ctx, key, []byte(`[{"id":"song-7"}]`), time.Minute))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"song-7"}]`, string(got))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)

	assert.NoError(t, store.Delete(ctx, key), "deleting an absent key is not an error")
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 30*time.Second))
	assert.Equal(t, 30*time.Second, mr.TTL("k"))

	mr.FastForward(31 * time.Second)
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisStore_ConnectivityFailureIsNotAMiss(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := store.Get(ctx, "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMiss))

	assert.Error(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	assert.Error(t, store.Delete(ctx, "k"))
}

func TestRedisStore_SetIfGeneration(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()
	key := PlaylistSongsKey("pl-1")

	gen, err := store.Generation(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	stored, err := store.SetIfGeneration(ctx, key, []byte(`[]`), time.Minute, gen)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, time.Minute, mr.TTL(key))

	require.NoError(t, store.Invalidate(ctx, key))
	assert.False(t, mr.Exists(key))

	stored, err = store.SetIfGeneration(ctx, key, []byte(`["old"]`), time.Minute, gen)
	require.NoError(t, err)
	assert.False(t, stored, "a write from before the invalidation is dropped")
	assert.False(t, mr.Exists(key))

	gen, err = store.Generation(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	stored, err = store.SetIfGeneration(ctx, key, []byte(`["new"]`), time.Minute, gen)
	require.NoError(t, err)
	assert.True(t, stored)
	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `["new"]`, string(got))
}

func TestRedisStore_InvalidateWhenDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Error(t, store.Invalidate(ctx, "k"))
	_, err := store.Generation(ctx, "k")
	assert.Error(t, err)
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, s.Delete(ctx, "k"))
	assert.NoError(t, s.Invalidate(ctx, "k"))
	stored, err := s.SetIfGeneration(ctx, "k", []byte("v"), time.Minute, 0)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestPlaylistSongsKey(t *testing.T) {
	assert.Equal(t, "playlist:pl-1:songs", PlaylistSongsKey("pl-1"))
	assert.Equal(t, "playlist:pl-1:songs:gen", GenerationKey(PlaylistSongsKey("pl-1")))
}
