package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockStatus string

const (
	StockOutOfStock StockStatus = "out_of_stock"
	StockLow        StockStatus = "low"
	StockAvailable  StockStatus = "available"
)

type Category struct {
	ID          uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string         `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Slug        string         `json:"slug" gorm:"size:120;not null;uniqueIndex"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	IsActive    bool           `json:"isActive" gorm:"not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

type Product struct {
	ID          uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	CategoryID  uint64          `json:"categoryId" gorm:"not null;index"`
	Category    *Category       `json:"category,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	Name        string          `json:"name" gorm:"size:191;not null;index"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(15,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;index"`
	Sold        int             `json:"sold" gorm:"not null"`
	ImagePath   string          `json:"imagePath,omitempty" gorm:"size:500"`
	IsActive    bool            `json:"isActive" gorm:"not null"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// Purchasable reports whether customers may put the product into a cart or order.
func (p *Product) Purchasable() bool {
	return p != nil && p.IsActive && !p.DeletedAt.Valid
}

func (p *Product) StockStatus() StockStatus {
	switch {
	case p.Stock <= 0:
		return StockOutOfStock
	case p.Stock <= 10:
		return StockLow
	default:
		return StockAvailable
	}
}

// LineTotal is the price of qty units at the current price.
func (p *Product) LineTotal(qty int) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(qty)))
}
