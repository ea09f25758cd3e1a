package mysql

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type productRepo struct {
	db *gorm.DB
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrap(err, "find product")
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&domain.Product{}).Where("products.is_active = ?", true)
		if f.CategorySlug != "" {
			q = q.Joins("JOIN categories ON categories.id = products.category_id").
				Where("categories.slug = ?", f.CategorySlug)
		}
		if f.Search != "" {
			q = q.Where("products.name LIKE ?", "%"+f.Search+"%")
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, wrap(err, "count products")
	}

	var out []domain.Product
	err := base().Preload("Category").
		Order("products.created_at DESC, products.id DESC").
		Offset(f.Page.Offset()).Limit(f.Page.Limit()).
		Find(&out).Error
	if err != nil {
		return nil, 0, wrap(err, "list products")
	}
	return out, total, nil
}

func (r *productRepo) Suggest(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	like := "%" + term + "%"
	var out []domain.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Joins("LEFT JOIN categories ON categories.id = products.category_id AND categories.deleted_at IS NULL").
		Where("products.is_active = ?", true).
		Where("products.name LIKE ? OR products.description LIKE ? OR categories.name LIKE ?", like, like, like).
		Order("products.name ASC, products.id ASC").
		Limit(limit).
		Find(&out).Error
	return out, wrap(err, "suggest products")
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	return wrap(r.db.WithContext(ctx).Create(p).Error, "create product")
}

func (r *productRepo) FirstOrCreate(ctx context.Context, p *domain.Product) error {
	return wrap(r.db.WithContext(ctx).Where("name = ?", p.Name).FirstOrCreate(p).Error, "first or create product")
}

func (r *productRepo) FirstOrCreateCategory(ctx context.Context, c *domain.Category) error {
	return wrap(r.db.WithContext(ctx).Where("slug = ?", c.Slug).FirstOrCreate(c).Error, "first or create category")
}

func (r *productRepo) Reserve(ctx context.Context, id uint64, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, wrap(res.Error, "reserve stock")
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) Release(ctx context.Context, id uint64, qty int) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).Unscoped().
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty))
	return wrap(res.Error, "release stock")
}

func (r *productRepo) IncrementSold(ctx context.Context, id uint64, qty int) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).Unscoped().
		Where("id = ?", id).
		Update("sold", gorm.Expr("sold + ?", qty))
	return wrap(res.Error, "increment sold")
}

func (r *productRepo) SetStock(ctx context.Context, id uint64, stock int) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Update("stock", stock)
	return wrap(res.Error, "set stock")
}

func (r *productRepo) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("stock < ? AND is_active = ?", threshold, true).
		Count(&n).Error
	return n, wrap(err, "count low stock")
}

func (r *productRepo) LowStock(ctx context.Context, threshold, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.WithContext(ctx).
		Where("stock < ? AND is_active = ?", threshold, true).
		Order("stock ASC, id ASC").
		Limit(limit).
		Find(&out).Error
	return out, wrap(err, "low stock products")
}

// TopSelling ranks active products by quantity ordered, ignoring cancelled orders.
func (r *productRepo) TopSelling(ctx context.Context, limit int) ([]repository.ProductSales, error) {
	var out []repository.ProductSales
	err := r.db.WithContext(ctx).Table("products").
		Select("products.id, products.name, products.price, products.image_path, "+
			"COALESCE(SUM(CASE WHEN orders.id IS NULL THEN 0 ELSE order_items.quantity END), 0) AS total_sold").
		Joins("LEFT JOIN order_items ON order_items.product_id = products.id").
		Joins("LEFT JOIN orders ON orders.id = order_items.order_id AND orders.status <> ? AND orders.deleted_at IS NULL", domain.StatusCancelled).
		Where("products.is_active = ? AND products.deleted_at IS NULL", true).
		Group("products.id, products.name, products.price, products.image_path").
		Order("total_sold DESC, products.id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, wrap(err, "top selling products")
}
