package mysql

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type walletRepo struct {
	db *gorm.DB
}

func (r *walletRepo) Find(ctx context.Context) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := r.db.WithContext(ctx).First(&w, domain.MainWalletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrap(err, "find wallet")
	}
	return &w, nil
}

func (r *walletRepo) Ensure(ctx context.Context) (*domain.Wallet, error) {
	w := domain.Wallet{ID: domain.MainWalletID, Balance: decimal.Zero}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&w).Error
	if err != nil {
		return nil, wrap(err, "ensure wallet")
	}
	found, err := r.Find(ctx)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.New("wallet missing after ensure")
	}
	return found, nil
}

// Credit runs the insert and the increment on the same connection so that the
// row lock taken by the UPDATE serializes concurrent credits until commit.
func (r *walletRepo) Credit(ctx context.Context, tx *domain.WalletTransaction) (*domain.Wallet, error) {
	if _, err := r.Ensure(ctx); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return nil, wrap(err, "append wallet transaction")
	}
	res := r.db.WithContext(ctx).Model(&domain.Wallet{}).
		Where("id = ?", tx.WalletID).
		Update("balance", gorm.Expr("balance + ?", tx.Amount))
	if res.Error != nil {
		return nil, wrap(res.Error, "increment wallet balance")
	}
	if res.RowsAffected != 1 {
		return nil, errors.Errorf("wallet %d not updated", tx.WalletID)
	}
	return r.Find(ctx)
}

func (r *walletRepo) Transactions(ctx context.Context, f repository.TransactionFilter) ([]domain.WalletTransaction, int64, error) {
	from, to := repository.DayRange(f.DateFrom, f.DateTo)
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&domain.WalletTransaction{}).
			Where("wallet_id = ?", domain.MainWalletID)
		if from != nil {
			q = q.Where("created_at >= ?", *from)
		}
		if to != nil {
			q = q.Where("created_at < ?", *to)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count wallet transactions")
	}

	var out []domain.WalletTransaction
	err := base().
		Preload("Order", unscoped).
		Order("created_at DESC").
		Offset(f.Page.Offset()).Limit(f.Page.Limit()).
		Find(&out).Error
	if err != nil {
		return nil, 0, wrap(err, "list wallet transactions")
	}
	return out, total, nil
}

func (r *walletRepo) SumTransactions(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&domain.WalletTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("wallet_id = ?", domain.MainWalletID).
		Row().Scan(&sum)
	return sum, wrap(err, "sum wallet transactions")
}

func (r *walletRepo) SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&domain.WalletTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("wallet_id = ? AND created_at >= ? AND created_at < ?", domain.MainWalletID, from, to).
		Row().Scan(&sum)
	return sum, wrap(err, "sum wallet transactions between")
}

type auditRepo struct {
	db *gorm.DB
}

func (r *auditRepo) Create(ctx context.Context, a *domain.Audit) error {
	return wrap(r.db.WithContext(ctx).Create(a).Error, "create audit")
}

func (r *auditRepo) ListFor(ctx context.Context, kind domain.EntityKind, entityID string) ([]domain.Audit, error) {
	var out []domain.Audit
	err := r.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", kind, entityID).
		Order("id ASC").
		Find(&out).Error
	return out, wrap(err, "list audits")
}
