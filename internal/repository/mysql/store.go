package mysql

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"storefront/internal/repository"
)

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) repository.Store {
	return &store{db: db}
}

func (s *store) Products() repository.ProductRepository { return &productRepo{db: s.db} }
func (s *store) Carts() repository.CartRepository       { return &cartRepo{db: s.db} }
func (s *store) Orders() repository.OrderRepository     { return &orderRepo{db: s.db} }
func (s *store) Payments() repository.PaymentRepository { return &paymentRepo{db: s.db} }
func (s *store) Wallets() repository.WalletRepository   { return &walletRepo{db: s.db} }
func (s *store) Audits() repository.AuditRepository     { return &auditRepo{db: s.db} }

func (s *store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}

func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(repository.ErrDuplicate, msg)
	}
	return errors.Wrap(err, msg)
}

func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
