package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Company struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type InvoiceLine struct {
	ProductID   uint64          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Invoice is the document data for a paid order; rendering is left to the caller.
type Invoice struct {
	OrderID     uint64          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Company     Company         `json:"company"`
	CustomerID  string          `json:"customerId"`
	InvoiceDate time.Time       `json:"invoiceDate"`
	PaidAt      time.Time       `json:"paidAt"`
	Method      PaymentMethod   `json:"method"`
	Lines       []InvoiceLine   `json:"lines"`
	Total       decimal.Decimal `json:"total"`
}
