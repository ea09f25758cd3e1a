package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type CartService struct {
	store repository.Store
	log   logrus.FieldLogger
}

func NewCartService(store repository.Store, log logrus.FieldLogger) *CartService {
	return &CartService{store: store, log: log}
}

type CartItem struct {
	domain.CartLine
	Subtotal    decimal.Decimal    `json:"subtotal"`
	MaxQuantity int                `json:"maxQuantity"`
	StockStatus domain.StockStatus `json:"stockStatus"`
	Available   bool               `json:"available"`
}

type CartSummary struct {
	Items         []CartItem      `json:"items"`
	TotalItems    int             `json:"totalItems"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	LineCount     int             `json:"lineCount"`
	SelectedCount int             `json:"selectedCount"`
}

func validQuantity(qty int) error {
	if qty < 1 || qty > domain.MaxCartQuantity {
		return domain.Validationf("quantity must be between 1 and %d", domain.MaxCartQuantity)
	}
	return nil
}

// AddItem merges into the user's live line for the product when there is one.
func (s *CartService) AddItem(ctx context.Context, userID string, productID uint64, qty int) (*domain.CartLine, error) {
	if userID == "" {
		return nil, domain.Validationf("user is required")
	}
	if err := validQuantity(qty); err != nil {
		return nil, err
	}

	line, err := s.addItem(ctx, userID, productID, qty)
	if errors.Is(err, repository.ErrDuplicate) {
		// A concurrent add created the line first; merge into it.
		line, err = s.addItem(ctx, userID, productID, qty)
	}
	return line, err
}

func (s *CartService) addItem(ctx context.Context, userID string, productID uint64, qty int) (*domain.CartLine, error) {
	product, err := s.store.Products().FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Purchasable() {
		return nil, domain.NotFoundf("product %d", productID)
	}

	existing, err := s.store.Carts().FindLive(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		ok, err := s.store.Carts().Merge(ctx, existing.ID, qty, product.Stock)
		if err != nil {
			return nil, err
		}
		current, err := s.store.Carts().FindLiveByID(ctx, userID, existing.ID)
		if err != nil {
			return nil, err
		}
		if current != nil {
			if !ok {
				return nil, domain.NewInsufficientStock(product, min(current.Quantity+qty, domain.MaxCartQuantity))
			}
			current.Product = product
			return current, nil
		}
		// Removed since it was read; start a fresh line.
	}

	if qty > product.Stock {
		return nil, domain.NewInsufficientStock(product, qty)
	}
	line := domain.NewCartLine(userID, productID, qty)
	if err := s.store.Carts().Create(ctx, line); err != nil {
		return nil, err
	}
	line.Product = product
	return line, nil
}

func (s *CartService) findLine(ctx context.Context, userID, lineID string) (*domain.CartLine, error) {
	line, err := s.store.Carts().FindLiveByID(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, domain.NotFoundf("cart item %s", lineID)
	}
	return line, nil
}

func (s *CartService) SetQuantity(ctx context.Context, userID, lineID string, qty int) (*domain.CartLine, error) {
	if err := validQuantity(qty); err != nil {
		return nil, err
	}
	line, err := s.findLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if line.Product == nil || qty > line.Product.Stock {
		product := line.Product
		if product == nil {
			product = &domain.Product{ID: line.ProductID}
		}
		return nil, domain.NewInsufficientStock(product, qty)
	}

	line.Quantity = qty
	if err := s.store.Carts().Update(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *CartService) ToggleSelection(ctx context.Context, userID, lineID string) (*domain.CartLine, error) {
	line, err := s.findLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	line.IsSelected = !line.IsSelected
	if err := s.store.Carts().Update(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *CartService) SelectAll(ctx context.Context, userID string, selected bool) error {
	_, err := s.store.Carts().SetSelectedAll(ctx, userID, selected)
	return err
}

// RemoveItem tombstones the line. Stock is untouched since carts never reserve it.
func (s *CartService) RemoveItem(ctx context.Context, userID, lineID string) error {
	n, err := s.store.Carts().Remove(ctx, userID, lineID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundf("cart item %s", lineID)
	}
	return nil
}

func (s *CartService) RemoveSelected(ctx context.Context, userID string) (int64, error) {
	return s.store.Carts().RemoveSelected(ctx, userID)
}

func (s *CartService) ListItems(ctx context.Context, userID string) (*CartSummary, error) {
	lines, err := s.store.Carts().ListLive(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &CartSummary{
		Items:      make([]CartItem, 0, len(lines)),
		TotalPrice: decimal.Zero,
		LineCount:  len(lines),
	}
	for _, line := range lines {
		item := CartItem{
			CartLine:    line,
			Subtotal:    line.Subtotal(),
			MaxQuantity: line.MaxQuantity(),
			StockStatus: domain.StockOutOfStock,
		}
		if line.Product != nil {
			item.StockStatus = line.Product.StockStatus()
			item.Available = line.Product.Purchasable() && line.Product.Stock >= line.Quantity
		}
		if line.IsSelected {
			summary.SelectedCount++
			summary.TotalItems += line.Quantity
			summary.TotalPrice = summary.TotalPrice.Add(item.Subtotal)
		}
		summary.Items = append(summary.Items, item)
	}
	return summary, nil
}

// Count is the number of units in the user's cart, for the header badge.
func (s *CartService) Count(ctx context.Context, userID string) (int64, error) {
	return s.store.Carts().CountQuantity(ctx, userID)
}
