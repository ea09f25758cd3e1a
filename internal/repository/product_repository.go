package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductSales struct {
	ID        uint64          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImagePath string          `json:"imagePath"`
	TotalSold int64           `json:"totalSold"`
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	List(ctx context.Context, f ProductFilter) ([]domain.Product, int64, error)
	// Suggest matches active products on name, description or category name.
	Suggest(ctx context.Context, term string, limit int) ([]domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	FirstOrCreate(ctx context.Context, p *domain.Product) error
	FirstOrCreateCategory(ctx context.Context, c *domain.Category) error

	// Reserve decrements stock by qty only when at least qty is available.
	Reserve(ctx context.Context, id uint64, qty int) (bool, error)
	Release(ctx context.Context, id uint64, qty int) error
	IncrementSold(ctx context.Context, id uint64, qty int) error
	SetStock(ctx context.Context, id uint64, stock int) error

	CountLowStock(ctx context.Context, threshold int) (int64, error)
	LowStock(ctx context.Context, threshold, limit int) ([]domain.Product, error)
	TopSelling(ctx context.Context, limit int) ([]ProductSales, error)
}
