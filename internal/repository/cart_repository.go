package repository

import (
	"context"

	"storefront/internal/domain"
)

// CartRepository only ever sees live lines; Remove tombstones them.
type CartRepository interface {
	FindLive(ctx context.Context, userID string, productID uint64) (*domain.CartLine, error)
	FindLiveByID(ctx context.Context, userID, lineID string) (*domain.CartLine, error)
	Create(ctx context.Context, line *domain.CartLine) error
	Update(ctx context.Context, line *domain.CartLine) error
	// Merge adds qty to a live line in place, capped at MaxCartQuantity, and
	// re-selects it. It changes nothing when the capped result would exceed stock.
	Merge(ctx context.Context, lineID string, qty, stock int) (bool, error)
	SetSelectedAll(ctx context.Context, userID string, selected bool) (int64, error)
	ListLive(ctx context.Context, userID string) ([]domain.CartLine, error)
	ListSelected(ctx context.Context, userID string) ([]domain.CartLine, error)
	Remove(ctx context.Context, userID string, lineIDs ...string) (int64, error)
	RemoveSelected(ctx context.Context, userID string) (int64, error)
	CountQuantity(ctx context.Context, userID string) (int64, error)
}
