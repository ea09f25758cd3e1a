package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"storefront/internal/domain"
	"storefront/internal/infra/redis"
	"storefront/internal/repository"
)

type CatalogService struct {
	store   repository.Store
	cache   redis.ProductCacheInterface
	auditor Auditor
	log     logrus.FieldLogger
	group   singleflight.Group
}

// NewCatalogService accepts a nil cache; reads then always hit the database.
func NewCatalogService(store repository.Store, cache redis.ProductCacheInterface, auditor Auditor, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{store: store, cache: cache, auditor: auditor, log: log}
}

type ProductPage struct {
	Products []domain.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"perPage"`
}

func (s *CatalogService) ListProducts(ctx context.Context, f repository.ProductFilter) (*ProductPage, error) {
	f.Search = strings.TrimSpace(f.Search)
	f.Page = repository.NewPage(f.Page.Page, f.Page.PerPage)
	products, total, err := s.store.Products().List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, Total: total, Page: f.Page.Page, PerPage: f.Page.Limit()}, nil
}

const (
	suggestionMinLength = 2
	suggestionLimit     = 8
)

type Suggestion struct {
	ID       uint64          `json:"id"`
	Name     string          `json:"name"`
	Image    string          `json:"image,omitempty"`
	Category string          `json:"category,omitempty"`
	Price    decimal.Decimal `json:"price"`
}

// Suggest backs the search box. Terms shorter than two characters match nothing.
func (s *CatalogService) Suggest(ctx context.Context, term string) ([]Suggestion, error) {
	term = strings.TrimSpace(term)
	out := []Suggestion{}
	if utf8.RuneCountInString(term) < suggestionMinLength {
		return out, nil
	}

	products, err := s.store.Products().Suggest(ctx, term, suggestionLimit)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		sg := Suggestion{ID: p.ID, Name: p.Name, Image: p.ImagePath, Price: p.Price}
		if p.Category != nil {
			sg.Category = p.Category.Name
		}
		out = append(out, sg)
	}
	return out, nil
}

// GetProduct reads through the cache. Concurrent misses for the same product
// share one database read.
func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	if s.cache != nil {
		p, err := s.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.WithError(err).WithField("product_id", id).Warn("Product cache read failed")
		}
	}

	v, err, _ := s.group.Do(strconv.FormatUint(id, 10), func() (any, error) {
		p, err := s.store.Products().FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !p.Purchasable() {
			return nil, domain.NotFoundf("product %d", id)
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, p); err != nil {
				s.log.WithError(err).WithField("product_id", id).Warn("Product cache write failed")
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

type StockChange struct {
	ProductID  uint64 `json:"productId"`
	OldStock   int    `json:"oldStock"`
	NewStock   int    `json:"newStock"`
	Difference int    `json:"difference"`
	Reason     string `json:"reason,omitempty"`
}

// UpdateStock sets an absolute stock level.
func (s *CatalogService) UpdateStock(ctx context.Context, actor domain.Identity, id uint64, stock int, reason string) (*StockChange, error) {
	if !actor.IsBackOffice() {
		return nil, domain.ErrForbidden
	}
	if stock < 0 {
		return nil, domain.Validationf("stock must not be negative")
	}
	if len(reason) > 255 {
		return nil, domain.Validationf("reason must be at most 255 characters")
	}

	var change *StockChange
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := tx.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFoundf("product %d", id)
		}
		if err := tx.Products().SetStock(ctx, id, stock); err != nil {
			return err
		}
		change = &StockChange{ProductID: id, OldStock: p.Stock, NewStock: stock, Difference: stock - p.Stock, Reason: reason}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, &domain.Audit{
		ActorID:    actor.UserID,
		EntityKind: domain.EntityProduct,
		EntityID:   strconv.FormatUint(id, 10),
		Event:      domain.AuditUpdate,
		OldValues:  domain.JSONMap{"stock": change.OldStock},
		NewValues:  domain.JSONMap{"stock": change.NewStock, "reason": reason},
	})
	s.Invalidate(ctx, id)

	s.log.WithFields(logrus.Fields{
		"product_id": id,
		"old_stock":  change.OldStock,
		"new_stock":  change.NewStock,
		"admin_id":   actor.UserID,
	}).Info("Product stock updated")
	return change, nil
}

func (s *CatalogService) Invalidate(ctx context.Context, id uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.WithError(err).WithField("product_id", id).Warn("Failed to evict cached product")
	}
}
