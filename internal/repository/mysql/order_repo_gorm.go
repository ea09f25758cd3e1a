package mysql

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product", unscoped).
		Preload("Payment")
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return wrap(err, "create order")
	}
	if order.ID == 0 {
		return errors.New("failed to assign order ID")
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := withDetails(r.db.WithContext(ctx)).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrap(err, "find order")
	}
	return &o, nil
}

func (r *orderRepo) FindForUser(ctx context.Context, userID string, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := withDetails(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrap(err, "find user order")
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := withDetails(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, wrap(err, "list user orders")
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, int64, error) {
	from, to := repository.DayRange(f.DateFrom, f.DateTo)
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&domain.Order{})
		if f.Status != "" {
			q = q.Where("orders.status = ?", f.Status)
		}
		if f.PaymentStatus != "" {
			q = q.Where("EXISTS (SELECT 1 FROM payments WHERE payments.order_id = orders.id AND payments.status = ?)", f.PaymentStatus)
		}
		if from != nil {
			q = q.Where("orders.created_at >= ?", *from)
		}
		if to != nil {
			q = q.Where("orders.created_at < ?", *to)
		}
		if f.Search != "" {
			like := "%" + f.Search + "%"
			q = q.Where("(CAST(orders.id AS CHAR) LIKE ? OR orders.user_id LIKE ?)", like, like)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count orders")
	}

	var out []domain.Order
	err := withDetails(base()).
		Order("orders.created_at DESC, orders.id DESC").
		Offset(f.Page.Offset()).Limit(f.Page.Limit()).
		Find(&out).Error
	if err != nil {
		return nil, 0, wrap(err, "list orders")
	}
	return out, total, nil
}

func (r *orderRepo) Recent(ctx context.Context, limit int) ([]domain.Order, error) {
	var out []domain.Order
	err := withDetails(r.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, wrap(err, "recent orders")
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, wrap(res.Error, "update order status")
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepo) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	var rows []struct {
		Status domain.OrderStatus
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err, "count orders by status")
	}
	out := make(map[domain.OrderStatus]int64, len(domain.OrderStatuses))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *orderRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&n).Error
	return n, wrap(err, "count orders created")
}

func (r *orderRepo) RevenueBetween(ctx context.Context, status domain.OrderStatus, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Where("status = ? AND created_at >= ? AND created_at < ?", status, from, to).
		Row().Scan(&sum)
	return sum, wrap(err, "sum order revenue")
}

type paymentRepo struct {
	db *gorm.DB
}

func (r *paymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	return wrap(r.db.WithContext(ctx).Create(p).Error, "create payment")
}

func (r *paymentRepo) FindByOrderID(ctx context.Context, orderID uint64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrap(err, "find payment")
	}
	return &p, nil
}

func (r *paymentRepo) MarkPaid(ctx context.Context, orderID uint64, method domain.PaymentMethod, paidAt time.Time, meta domain.JSONMap) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("order_id = ? AND status = ?", orderID, domain.PaymentPending).
		Updates(map[string]any{
			"method":  string(method),
			"status":  domain.PaymentSuccess,
			"paid_at": paidAt,
			"meta":    meta,
		})
	if res.Error != nil {
		return false, wrap(res.Error, "mark payment paid")
	}
	return res.RowsAffected == 1, nil
}

func (r *paymentRepo) MarkFailed(ctx context.Context, orderID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("order_id = ? AND status = ?", orderID, domain.PaymentPending).
		Update("status", domain.PaymentFailed)
	if res.Error != nil {
		return false, wrap(res.Error, "mark payment failed")
	}
	return res.RowsAffected == 1, nil
}
