package mysql

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"storefront/internal/domain"
)

type cartRepo struct {
	db *gorm.DB
}

func (r *cartRepo) FindLive(ctx context.Context, userID string, productID uint64) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrap(err, "find cart line")
	}
	return &line, nil
}

func (r *cartRepo) FindLiveByID(ctx context.Context, userID, lineID string) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.db.WithContext(ctx).
		Preload("Product", unscoped).
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrap(err, "find cart line by id")
	}
	return &line, nil
}

func (r *cartRepo) Create(ctx context.Context, line *domain.CartLine) error {
	return wrap(r.db.WithContext(ctx).Create(line).Error, "create cart line")
}

func (r *cartRepo) Update(ctx context.Context, line *domain.CartLine) error {
	err := r.db.WithContext(ctx).Model(line).Updates(map[string]any{
		"quantity":    line.Quantity,
		"is_selected": line.IsSelected,
	}).Error
	return wrap(err, "update cart line")
}

func (r *cartRepo) Merge(ctx context.Context, lineID string, qty, stock int) (bool, error) {
	const merged = "CASE WHEN quantity + ? > ? THEN ? ELSE quantity + ? END"
	limit := domain.MaxCartQuantity
	res := r.db.WithContext(ctx).Model(&domain.CartLine{}).
		Where("id = ?", lineID).
		Where(merged+" <= ?", qty, limit, limit, qty, stock).
		Updates(map[string]any{
			"quantity":    gorm.Expr(merged, qty, limit, limit, qty),
			"is_selected": true,
		})
	if res.Error != nil {
		return false, wrap(res.Error, "merge cart line")
	}
	return res.RowsAffected == 1, nil
}

func (r *cartRepo) SetSelectedAll(ctx context.Context, userID string, selected bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.CartLine{}).
		Where("user_id = ?", userID).
		Update("is_selected", selected)
	return res.RowsAffected, wrap(res.Error, "select all cart lines")
}

func (r *cartRepo) ListLive(ctx context.Context, userID string) ([]domain.CartLine, error) {
	var out []domain.CartLine
	err := r.db.WithContext(ctx).
		Preload("Product", unscoped).
		Preload("Product.Category", unscoped).
		Where("user_id = ?", userID).
		Order("updated_at DESC, created_at DESC").
		Find(&out).Error
	return out, wrap(err, "list cart lines")
}

func (r *cartRepo) ListSelected(ctx context.Context, userID string) ([]domain.CartLine, error) {
	var out []domain.CartLine
	err := r.db.WithContext(ctx).
		Preload("Product", unscoped).
		Where("user_id = ? AND is_selected = ?", userID, true).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, wrap(err, "list selected cart lines")
}

func (r *cartRepo) Remove(ctx context.Context, userID string, lineIDs ...string) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&domain.CartLine{}).
		Where("user_id = ? AND id IN ?", userID, lineIDs).
		Updates(tombstone())
	return res.RowsAffected, wrap(res.Error, "remove cart lines")
}

func (r *cartRepo) RemoveSelected(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.CartLine{}).
		Where("user_id = ? AND is_selected = ?", userID, true).
		Updates(tombstone())
	return res.RowsAffected, wrap(res.Error, "remove selected cart lines")
}

func (r *cartRepo) CountQuantity(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.CartLine{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("user_id = ?", userID).
		Scan(&n).Error
	return n, wrap(err, "count cart quantity")
}

func tombstone() map[string]any {
	return map[string]any{"deleted_at": time.Now(), "live": nil}
}
