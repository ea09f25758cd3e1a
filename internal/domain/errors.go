package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrEmptyCheckout       = errors.New("no selected cart items to checkout")
	ErrInvalidState        = errors.New("invalid state")
	ErrNotFound            = errors.New("not found")
	ErrInvoiceNotAvailable = errors.New("invoice is only available for paid orders")
	ErrLedgerUnavailable   = errors.New("wallet ledger unavailable")
	ErrForbidden           = errors.New("forbidden")
)

// InsufficientStockError names the product that could not cover the requested quantity.
type InsufficientStockError struct {
	ProductID   uint64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func NewInsufficientStock(p *Product, requested int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Available:   p.Stock,
		Requested:   requested,
	}
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func InvalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
