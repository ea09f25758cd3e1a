package redis

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

type ProductCacheInterface interface {
	Get(ctx context.Context, productID uint64) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, productID uint64) error
}

var ErrCacheMiss = errors.New("cache miss")

var _ ProductCacheInterface = (*ProductCache)(nil)
