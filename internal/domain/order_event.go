package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderPaid          = "order.paid"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCompleted     = "order.completed"
)

type OrderCreatedEvent struct {
	OrderID   uint64          `json:"orderId"`
	UserID    string          `json:"userId"`
	Total     decimal.Decimal `json:"total"`
	Source    OrderSource     `json:"source"`
	CreatedAt time.Time       `json:"createdAt"`
}

type OrderPaidEvent struct {
	OrderID uint64          `json:"orderId"`
	UserID  string          `json:"userId"`
	Method  PaymentMethod   `json:"method"`
	Amount  decimal.Decimal `json:"amount"`
	PaidAt  time.Time       `json:"paidAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   uint64      `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedBy string      `json:"changedBy"`
	ChangedAt time.Time   `json:"changedAt"`
}
