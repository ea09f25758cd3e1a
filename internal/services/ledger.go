package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Ledger owns the store's single wallet. Credit must run on the Store of the
// transaction that settles the payment so both commit together.
type Ledger interface {
	Credit(ctx context.Context, tx repository.Store, order *domain.Order) (*domain.WalletTransaction, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
	Transactions(ctx context.Context, f repository.TransactionFilter) ([]domain.WalletTransaction, int64, error)
}

type WalletLedger struct {
	store repository.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewWalletLedger(store repository.Store, log logrus.FieldLogger) *WalletLedger {
	return &WalletLedger{store: store, log: log, now: time.Now}
}

// Credit returns nil without writing anything for a zero total.
func (l *WalletLedger) Credit(ctx context.Context, tx repository.Store, order *domain.Order) (*domain.WalletTransaction, error) {
	if !order.Total.IsPositive() {
		return nil, nil
	}

	now := l.now()
	wt := &domain.WalletTransaction{
		ID:          uuid.NewString(),
		WalletID:    domain.MainWalletID,
		OrderID:     order.ID,
		Amount:      order.Total,
		Description: fmt.Sprintf("Payment received for order #%d", order.ID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	wallet, err := tx.Wallets().Credit(ctx, wt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
	}

	l.log.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"amount":      wt.Amount.String(),
		"new_balance": wallet.Balance.String(),
	}).Info("Wallet transaction created")
	return wt, nil
}

// Balance is zero until the first credit creates the wallet.
func (l *WalletLedger) Balance(ctx context.Context) (decimal.Decimal, error) {
	w, err := l.store.Wallets().Find(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
	}
	if w == nil {
		return decimal.Zero, nil
	}
	return w.Balance, nil
}

func (l *WalletLedger) Transactions(ctx context.Context, f repository.TransactionFilter) ([]domain.WalletTransaction, int64, error) {
	if f.Page.PerPage == 0 {
		f.Page = repository.NewPage(f.Page.Page, 20)
	}
	return l.store.Wallets().Transactions(ctx, f)
}

var _ Ledger = (*WalletLedger)(nil)
