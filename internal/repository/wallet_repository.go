package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type WalletRepository interface {
	// Find returns nil without creating the wallet when it does not exist yet.
	Find(ctx context.Context) (*domain.Wallet, error)
	Ensure(ctx context.Context) (*domain.Wallet, error)
	// Credit appends tx and adds its amount to the wallet balance.
	Credit(ctx context.Context, tx *domain.WalletTransaction) (*domain.Wallet, error)
	Transactions(ctx context.Context, f TransactionFilter) ([]domain.WalletTransaction, int64, error)
	SumTransactions(ctx context.Context) (decimal.Decimal, error)
	SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type AuditRepository interface {
	Create(ctx context.Context, a *domain.Audit) error
	ListFor(ctx context.Context, kind domain.EntityKind, entityID string) ([]domain.Audit, error)
}
