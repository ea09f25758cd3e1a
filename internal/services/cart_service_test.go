package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestCartService_AddItem(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		inCart    int
		add       int
		active    bool
		wantQty   int
		wantError error
	}{
		{name: "new line", stock: 5, add: 2, active: true, wantQty: 2},
		{name: "merges into live line", stock: 5, inCart: 2, add: 3, active: true, wantQty: 5},
		{name: "merged quantity over stock", stock: 5, inCart: 4, add: 2, active: true, wantError: domain.ErrInsufficientStock},
		{name: "merged quantity capped at 99", stock: 500, inCart: 98, add: 5, active: true, wantQty: 99},
		{name: "more than stock", stock: 1, add: 2, active: true, wantError: domain.ErrInsufficientStock},
		{name: "zero quantity", stock: 5, add: 0, active: true, wantError: domain.ErrValidation},
		{name: "over the cart limit", stock: 500, add: 100, active: true, wantError: domain.ErrValidation},
		{name: "inactive product", stock: 5, add: 1, active: false, wantError: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			p := f.product(t, "Kopi", 15000, tt.stock)
			if !tt.active {
				require.NoError(t, f.db.Model(p).Update("is_active", false).Error)
			}
			if tt.inCart > 0 {
				_, err := f.carts.AddItem(ctx, "u1", p.ID, tt.inCart)
				require.NoError(t, err)
			}

			line, err := f.carts.AddItem(ctx, "u1", p.ID, tt.add)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQty, line.Quantity)
			assert.True(t, line.IsSelected)

			summary, err := f.carts.ListItems(ctx, "u1")
			require.NoError(t, err)
			assert.Len(t, summary.Items, 1, "one live line per product")
		})
	}
}

func TestCartService_AddItem_NamesProduct(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Teh Botol", 5000, 1)

	_, err := f.carts.AddItem(context.Background(), "u1", p.ID, 3)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Teh Botol", stockErr.ProductName)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
}

func TestCartService_SetQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Gula", 12000, 4)
	line, err := f.carts.AddItem(ctx, "u1", p.ID, 1)
	require.NoError(t, err)

	updated, err := f.carts.SetQuantity(ctx, "u1", line.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = f.carts.SetQuantity(ctx, "u1", line.ID, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.carts.SetQuantity(ctx, "u2", line.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.carts.RemoveItem(ctx, "u1", line.ID))
	_, err = f.carts.SetQuantity(ctx, "u1", line.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartService_SelectionAndSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 1000, 50)
	b := f.product(t, "B", 2500, 3)

	la, err := f.carts.AddItem(ctx, "u1", a.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "u1", b.ID, 3)
	require.NoError(t, err)

	toggled, err := f.carts.ToggleSelection(ctx, "u1", la.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsSelected)

	summary, err := f.carts.ListItems(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.LineCount)
	assert.Equal(t, 1, summary.SelectedCount)
	assert.Equal(t, 3, summary.TotalItems)
	assert.True(t, decimal.NewFromInt(7500).Equal(summary.TotalPrice), summary.TotalPrice.String())

	for _, item := range summary.Items {
		switch item.ProductID {
		case a.ID:
			assert.Equal(t, 50, item.MaxQuantity)
			assert.Equal(t, domain.StockAvailable, item.StockStatus)
		case b.ID:
			assert.Equal(t, 3, item.MaxQuantity)
			assert.Equal(t, domain.StockLow, item.StockStatus)
		}
	}

	require.NoError(t, f.carts.SelectAll(ctx, "u1", true))
	summary, err = f.carts.ListItems(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SelectedCount)
	assert.Equal(t, 5, summary.TotalItems)

	n, err := f.carts.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestCartService_Remove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Beras", 60000, 10)
	q := f.product(t, "Minyak", 30000, 10)

	line, err := f.carts.AddItem(ctx, "u1", p.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "u1", q.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.carts.RemoveItem(ctx, "u1", line.ID))
	assert.ErrorIs(t, f.carts.RemoveItem(ctx, "u1", line.ID), domain.ErrNotFound)
	assert.Equal(t, 10, f.stock(t, p.ID), "carts never hold stock")

	n, err := f.carts.RemoveSelected(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	summary, err := f.carts.ListItems(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, summary.Items)

	again, err := f.carts.AddItem(ctx, "u1", p.ID, 1)
	require.NoError(t, err)
	assert.NotEqual(t, line.ID, again.ID)
	assert.Equal(t, 1, again.Quantity)
}

func TestCartService_AddItemKeepsConcurrentAdds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Minyak", 30000, 20)
	_, err := f.carts.AddItem(ctx, "u1", p.ID, 2)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	busy := NewCartService(busyCartStore{Store: f.store}, log)

	line, err := busy.AddItem(ctx, "u1", p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, line.Quantity)

	n, err := f.carts.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
}

func TestCartService_AddItemRecheckAfterConcurrentAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Garam", 3000, 5)
	_, err := f.carts.AddItem(ctx, "u1", p.ID, 3)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	busy := NewCartService(busyCartStore{Store: f.store}, log)

	_, err = busy.AddItem(ctx, "u1", p.ID, 2)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested)

	n, err := f.carts.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
