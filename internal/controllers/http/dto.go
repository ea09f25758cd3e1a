package http

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type AddCartItemRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=99"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=99"`
}

type SelectAllRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

type BuyNowRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type PayRequest struct {
	Method domain.PaymentMethod `json:"method" binding:"required"`
}

type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type UpdateStockRequest struct {
	Stock  *int   `json:"stock" binding:"required,min=0"`
	Reason string `json:"reason" binding:"max=255"`
}

type OrderListQuery struct {
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status"`
	DateFrom      string `form:"date_from"`
	DateTo        string `form:"date_to"`
	Search        string `form:"search"`
	Page          int    `form:"page"`
}

type WalletQuery struct {
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Page     int    `form:"page"`
}

type ProductQuery struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
}

type OrderResponse struct {
	ID          uint64                `json:"id"`
	Number      string                `json:"number"`
	UserID      string                `json:"userId"`
	Status      domain.OrderStatus    `json:"status"`
	StatusLabel string                `json:"statusLabel"`
	Total       decimal.Decimal       `json:"total"`
	Note        domain.OrderNote      `json:"note"`
	Items       []domain.OrderItem    `json:"items"`
	Payment     *domain.Payment       `json:"payment,omitempty"`
	CanPay      bool                  `json:"canPay"`
	Timeline    []domain.TimelineStep `json:"timeline,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

func newOrderResponse(o *domain.Order, withTimeline bool) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		Number:      o.Number(),
		UserID:      o.UserID,
		Status:      o.Status,
		StatusLabel: o.Status.Label(),
		Total:       o.Total,
		Note:        o.Note,
		Items:       o.Items,
		Payment:     o.Payment,
		CanPay:      o.CanPay(),
		CreatedAt:   o.CreatedAt,
	}
	if resp.Items == nil {
		resp.Items = []domain.OrderItem{}
	}
	if withTimeline {
		resp.Timeline = o.Timeline()
	}
	return resp
}

func newOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderResponse(&orders[i], false))
	}
	return out
}

const dateLayout = "2006-01-02"

// parseDate returns nil for an empty value.
func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return nil, domain.Validationf("invalid date %q, expected YYYY-MM-DD", v)
	}
	return &t, nil
}
