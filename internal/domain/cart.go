package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const MaxCartQuantity = 99

// CartLine is a user's intent to buy a product. Removed lines keep their row;
// Live is true for the line that is still in the cart and NULL once removed,
// so the unique index on (user_id, product_id, live) allows one live line per product.
type CartLine struct {
	ID         string         `json:"id" gorm:"type:char(36);primaryKey"`
	UserID     string         `json:"userId" gorm:"size:64;not null;index:idx_carts_user_selected,priority:1;uniqueIndex:idx_carts_live_line,priority:1"`
	ProductID  uint64         `json:"productId" gorm:"not null;uniqueIndex:idx_carts_live_line,priority:2"`
	Product    *Product       `json:"product,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	Quantity   int            `json:"quantity" gorm:"not null"`
	IsSelected bool           `json:"isSelected" gorm:"not null;index:idx_carts_user_selected,priority:2"`
	Live       *bool          `json:"-" gorm:"uniqueIndex:idx_carts_live_line,priority:3"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt" gorm:"index"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (CartLine) TableName() string { return "carts" }

func NewCartLine(userID string, productID uint64, quantity int) *CartLine {
	live := true
	return &CartLine{
		ID:         uuid.NewString(),
		UserID:     userID,
		ProductID:  productID,
		Quantity:   quantity,
		IsSelected: true,
		Live:       &live,
	}
}

func (l *CartLine) Subtotal() decimal.Decimal {
	if l.Product == nil {
		return decimal.Zero
	}
	return l.Product.LineTotal(l.Quantity)
}

// MaxQuantity is the most a customer can ask for on this line.
func (l *CartLine) MaxQuantity() int {
	if l.Product == nil {
		return 0
	}
	return min(l.Product.Stock, MaxCartQuantity)
}
