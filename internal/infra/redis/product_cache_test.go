package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func setupTestRedis(t *testing.T) (*ProductCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewProductCache(client, time.Minute), mr
}

func TestProductCache_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	p, err := cache.Get(context.Background(), 1)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestProductCache_SetGetDelete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	in := &domain.Product{ID: 7, Name: "Kopi", Price: decimal.NewFromInt(15000), Stock: 3, IsActive: true}
	require.NoError(t, cache.Set(ctx, in))
	assert.True(t, mr.Exists(cacheKey(7)))

	ttl := mr.TTL(cacheKey(7))
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, time.Minute+12*time.Second)

	out, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Kopi", out.Name)
	assert.True(t, in.Price.Equal(out.Price))
	assert.Equal(t, 3, out.Stock)

	require.NoError(t, cache.Delete(ctx, 7))
	_, err = cache.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestProductCache_Expires(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &domain.Product{ID: 1, Name: "Teh"}))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestProductCache_CorruptEntry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey(9), "{not json"))

	_, err := cache.Get(context.Background(), 9)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestProductCache_RedisDown(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.Get(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
