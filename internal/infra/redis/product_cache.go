package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"storefront/internal/domain"
)

type ProductCache struct {
	client  goredis.UniversalClient
	baseTTL time.Duration
}

func NewProductCache(client goredis.UniversalClient, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ProductCache{client: client, baseTTL: ttl}
}

func (c *ProductCache) Get(ctx context.Context, productID uint64) (*domain.Product, error) {
	data, err := c.client.Get(ctx, cacheKey(productID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var p domain.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err)
	}
	return &p, nil
}

// Set stores the product with a little jitter so entries written together expire apart.
func (c *ProductCache) Set(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	jitter := time.Duration(rand.Int63n(int64(c.baseTTL)/5 + 1))
	if err := c.client.Set(ctx, cacheKey(product.ID), data, c.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *ProductCache) Delete(ctx context.Context, productID uint64) error {
	if err := c.client.Del(ctx, cacheKey(productID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(productID uint64) string {
	return fmt.Sprintf("storefront:product:%d", productID)
}

// NewClient dials Redis and checks the connection.
func NewClient(ctx context.Context, addr string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DB:           db,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
