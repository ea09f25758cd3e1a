package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MainWalletID identifies the store's single revenue wallet.
const MainWalletID uint64 = 1

type Wallet struct {
	ID           uint64              `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Balance      decimal.Decimal     `json:"balance" gorm:"type:decimal(15,2);not null"`
	Transactions []WalletTransaction `json:"transactions,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// WalletTransaction is append-only. The unique order reference keeps a
// second credit for the same order from ever being stored.
type WalletTransaction struct {
	ID          string          `json:"id" gorm:"type:char(36);primaryKey"`
	WalletID    uint64          `json:"walletId" gorm:"not null;index:idx_wallet_tx_wallet_created,priority:1"`
	OrderID     uint64          `json:"orderId" gorm:"not null;uniqueIndex"`
	Order       *Order          `json:"order,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(15,2);not null"`
	Description string          `json:"description" gorm:"size:255;not null"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"index:idx_wallet_tx_wallet_created,priority:2;index"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
