package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusProgress  OrderStatus = "progress"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusProgress, StatusCompleted, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) Label() string {
	switch s {
	case StatusPending:
		return "Awaiting payment"
	case StatusProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// AdminCanMove reports whether back-office staff may move an order from s to next.
// pending -> progress is reserved for payment processing.
func (s OrderStatus) AdminCanMove(next OrderStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusCancelled
	case StatusProgress:
		return next == StatusCompleted
	}
	return false
}

type OrderSource string

const (
	SourceBuyNow       OrderSource = "buy_now"
	SourceCartCheckout OrderSource = "cart_checkout"
)

type OrderNote struct {
	Source         OrderSource `json:"source"`
	CreatedVia     string      `json:"created_via,omitempty"`
	CartItemsCount int         `json:"cart_items_count,omitempty"`
}

func (n OrderNote) Value() (driver.Value, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (n *OrderNote) Scan(src any) error {
	return scanJSON(src, n)
}

type Order struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string          `json:"userId" gorm:"size:64;not null;index:idx_orders_user_status,priority:1"`
	Status    OrderStatus     `json:"status" gorm:"type:varchar(16);not null;index:idx_orders_user_status,priority:2;index:idx_orders_status_created,priority:1"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(15,2);not null"`
	Note      OrderNote       `json:"note" gorm:"type:json"`
	Items     []OrderItem     `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Payment   *Payment        `json:"payment,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time       `json:"createdAt" gorm:"index:idx_orders_status_created,priority:2"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (o *Order) Number() string {
	return fmt.Sprintf("ORD-%08d", o.ID)
}

func (o *Order) CanPay() bool {
	return o.Status == StatusPending && (o.Payment == nil || o.Payment.Status == PaymentPending)
}

func (o *Order) IsPaid() bool {
	return o.Payment != nil && o.Payment.Status == PaymentSuccess
}

// OrderItem is frozen at creation: Subtotal is quantity times the unit price of that moment.
type OrderItem struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"orderId" gorm:"not null;index"`
	ProductID uint64          `json:"productId" gorm:"not null;index:idx_order_items_product_created,priority:1"`
	Product   *Product        `json:"product,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(15,2);not null"`
	CreatedAt time.Time       `json:"createdAt" gorm:"index:idx_order_items_product_created,priority:2"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type TimelineStep struct {
	Status OrderStatus `json:"status"`
	Label  string      `json:"label"`
	Active bool        `json:"active"`
}

func (o *Order) Timeline() []TimelineStep {
	reached := map[OrderStatus]bool{StatusPending: true}
	switch o.Status {
	case StatusProgress:
		reached[StatusProgress] = true
	case StatusCompleted:
		reached[StatusProgress] = true
		reached[StatusCompleted] = true
	}
	steps := []TimelineStep{
		{Status: StatusPending, Label: "Order placed"},
		{Status: StatusProgress, Label: StatusProgress.Label()},
		{Status: StatusCompleted, Label: StatusCompleted.Label()},
	}
	for i := range steps {
		steps[i].Active = reached[steps[i].Status]
	}
	if o.Status == StatusCancelled {
		steps = append(steps, TimelineStep{Status: StatusCancelled, Label: StatusCancelled.Label(), Active: true})
	}
	return steps
}
