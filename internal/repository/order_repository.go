package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindForUser(ctx context.Context, userID string, id uint64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, f OrderFilter) ([]domain.Order, int64, error)
	Recent(ctx context.Context, limit int) ([]domain.Order, error)

	// UpdateStatus moves the order only if it is still in status from.
	UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus) (bool, error)

	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	RevenueBetween(ctx context.Context, status domain.OrderStatus, from, to time.Time) (decimal.Decimal, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	FindByOrderID(ctx context.Context, orderID uint64) (*domain.Payment, error)

	// MarkPaid and MarkFailed only touch a payment that is still pending.
	MarkPaid(ctx context.Context, orderID uint64, method domain.PaymentMethod, paidAt time.Time, meta domain.JSONMap) (bool, error)
	MarkFailed(ctx context.Context, orderID uint64) (bool, error)
}
