package redis

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ikkim/hwawon-backend/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { c.Close() })
	return mr, c
}

func TestIdempotencyStore_Reserve(t *testing.T) {
	mr, c := newTestClient(t)
	store := NewIdempotencyStore(c, "payment")
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "T-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "T-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("payment:T-1"))

	require.NoError(t, store.Release(ctx, "T-1"))
	ok, err = store.Reserve(ctx, "T-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyStore_TTL(t *testing.T) {
	mr, c := newTestClient(t)
	store := NewIdempotencyStore(c, "payment")
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "T-2", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = store.Reserve(ctx, "T-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBalanceCache(t *testing.T) {
	mr, c := newTestClient(t)
	cache := NewBalanceCache(c, 5*time.Second)
	ctx := context.Background()

	type summary struct {
		Available int64 `json:"available"`
	}

	var got summary
	hit, err := cache.Get(ctx, "01012345678", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "01012345678", summary{Available: 12000}))
	hit, err = cache.Get(ctx, "01012345678", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(12000), got.Available)

	mr.FastForward(6 * time.Second)
	hit, err = cache.Get(ctx, "01012345678", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "01012345678", summary{Available: 1}))
	require.NoError(t, cache.Invalidate(ctx, "01012345678"))
	hit, err = cache.Get(ctx, "01012345678", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInit(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	require.NoError(t, Init(&config.RedisConfig{Enabled: true, Host: host, Port: port}))
	require.NotNil(t, GetClient())
	assert.NoError(t, GetClient().Ping(context.Background()).Err())
	assert.NoError(t, Close())
	SetClient(nil)
}

func TestInit_Disabled(t *testing.T) {
	SetClient(nil)
	require.NoError(t, Init(&config.RedisConfig{Enabled: false}))
	assert.Nil(t, GetClient())
}
