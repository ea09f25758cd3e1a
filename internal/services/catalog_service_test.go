package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/infra/redis"
	"storefront/internal/mocks"
	"storefront/internal/repository"
)

func TestCatalogService_GetProduct(t *testing.T) {
	tests := []struct {
		name       string
		setupCache func(*mocks.MockProductCache, *domain.Product)
		inactive   bool
		wantError  error
	}{
		{
			name: "cache hit skips the database",
			setupCache: func(c *mocks.MockProductCache, p *domain.Product) {
				c.On("Get", mock.Anything, p.ID).Return(&domain.Product{ID: p.ID, Name: "cached"}, nil)
			},
		},
		{
			name: "miss loads and fills",
			setupCache: func(c *mocks.MockProductCache, p *domain.Product) {
				c.On("Get", mock.Anything, p.ID).Return(nil, redis.ErrCacheMiss)
				c.On("Set", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)
			},
		},
		{
			name: "cache errors fall back to the database",
			setupCache: func(c *mocks.MockProductCache, p *domain.Product) {
				c.On("Get", mock.Anything, p.ID).Return(nil, errors.New("redis down"))
				c.On("Set", mock.Anything, mock.Anything).Return(errors.New("redis down"))
			},
		},
		{
			name:     "inactive product is not found",
			inactive: true,
			setupCache: func(c *mocks.MockProductCache, p *domain.Product) {
				c.On("Get", mock.Anything, p.ID).Return(nil, redis.ErrCacheMiss)
			},
			wantError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			log, _ := test.NewNullLogger()
			p := f.product(t, "Kopi", 15000, 5)
			if tt.inactive {
				require.NoError(t, f.db.Model(p).Update("is_active", false).Error)
			}
			cache := new(mocks.MockProductCache)
			tt.setupCache(cache, p)
			svc := NewCatalogService(f.store, cache, f.auditor, log)

			got, err := svc.GetProduct(context.Background(), p.ID)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, p.ID, got.ID)
			}
			cache.AssertExpectations(t)
		})
	}
}

func TestCatalogService_GetProductWithRedis(t *testing.T) {
	f := newFixture(t)
	log, _ := test.NewNullLogger()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := redis.NewProductCache(client, time.Minute)
	svc := NewCatalogService(f.store, cache, f.auditor, log)
	ctx := context.Background()
	p := f.product(t, "Teh", 8000, 5)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.GetProduct(ctx, p.ID)
			assert.NoError(t, err)
			assert.Equal(t, "Teh", got.Name)
		}()
	}
	wg.Wait()

	cached, err := cache.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, cached.Stock)

	_, err = svc.UpdateStock(ctx, admin, p.ID, 9, "restock")
	require.NoError(t, err)
	_, err = cache.Get(ctx, p.ID)
	assert.ErrorIs(t, err, redis.ErrCacheMiss)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)
}

func TestCatalogService_UpdateStock(t *testing.T) {
	f := newFixture(t)
	log, _ := test.NewNullLogger()
	ctx := context.Background()
	svc := NewCatalogService(f.store, nil, f.auditor, log)
	p := f.product(t, "Gula", 12000, 7)

	change, err := svc.UpdateStock(ctx, staff, p.ID, 3, "stock take")
	require.NoError(t, err)
	assert.Equal(t, 7, change.OldStock)
	assert.Equal(t, 3, change.NewStock)
	assert.Equal(t, -4, change.Difference)
	assert.Equal(t, 3, f.stock(t, p.ID))

	f.auditor.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(a *domain.Audit) bool {
		return a.EntityKind == domain.EntityProduct && a.OldValues["stock"] == 7 && a.NewValues["stock"] == 3
	}))

	_, err = svc.UpdateStock(ctx, staff, p.ID, -1, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.UpdateStock(ctx, customer, p.ID, 1, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.UpdateStock(ctx, admin, 999, 1, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogService_ListProducts(t *testing.T) {
	f := newFixture(t)
	log, _ := test.NewNullLogger()
	svc := NewCatalogService(f.store, nil, f.auditor, log)
	for _, name := range []string{"Kopi Susu", "Kopi Hitam", "Teh"} {
		f.product(t, name, 10000, 5)
	}

	page, err := svc.ListProducts(context.Background(), repository.ProductFilter{Search: " Kopi "})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 15, page.PerPage)
}

func TestCatalogService_Suggest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	svc := NewCatalogService(f.store, nil, f.auditor, log)

	f.product(t, "Kopi Susu", 18000, 5)
	teh := f.product(t, "Teh Tarik", 15000, 5)
	require.NoError(t, f.db.Model(teh).Update("description", "Cocok dengan kopi pagi").Error)
	lampu := f.product(t, "Lampu", 90000, 5)
	require.NoError(t, f.db.Model(&domain.Category{}).Where("id = ?", lampu.CategoryID).Update("name", "Kopi Corner").Error)
	basi := f.product(t, "Kopi Basi", 1000, 5)
	require.NoError(t, f.db.Model(basi).Update("is_active", false).Error)
	f.product(t, "Sabun", 5000, 5)

	got, err := svc.Suggest(ctx, " kopi ")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Kopi Susu", got[0].Name)
	assert.Equal(t, "Lampu", got[1].Name)
	assert.Equal(t, "Kopi Corner", got[1].Category)
	assert.Equal(t, "Teh Tarik", got[2].Name)

	short, err := svc.Suggest(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, short)
	assert.Empty(t, short)
}

func TestCatalogService_SuggestLimit(t *testing.T) {
	f := newFixture(t)
	log, _ := test.NewNullLogger()
	svc := NewCatalogService(f.store, nil, f.auditor, log)
	for i := 0; i < 10; i++ {
		f.product(t, fmt.Sprintf("Kursi %02d", i), 100000, 3)
	}

	got, err := svc.Suggest(context.Background(), "kursi")
	require.NoError(t, err)
	assert.Len(t, got, 8)
	assert.Equal(t, "Kursi 00", got[0].Name)
}
