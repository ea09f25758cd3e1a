package domain

import (
	"time"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentSuccess || s == PaymentFailed
}

type PaymentMethod string

const (
	MethodGoPay     PaymentMethod = "gopay"
	MethodDana      PaymentMethod = "dana"
	MethodShopeePay PaymentMethod = "shopeepay"
	MethodOVO       PaymentMethod = "ovo"
	MethodBCA       PaymentMethod = "bca"
)

type PaymentMethodInfo struct {
	Code        PaymentMethod `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
}

var PaymentMethods = []PaymentMethodInfo{
	{Code: MethodGoPay, Name: "GoPay", Description: "Pay with GoPay"},
	{Code: MethodDana, Name: "DANA", Description: "Pay with DANA"},
	{Code: MethodShopeePay, Name: "ShopeePay", Description: "Pay with ShopeePay"},
	{Code: MethodOVO, Name: "OVO", Description: "Pay with OVO"},
	{Code: MethodBCA, Name: "BCA", Description: "BCA bank transfer"},
}

func (m PaymentMethod) Valid() bool {
	for _, info := range PaymentMethods {
		if info.Code == m {
			return true
		}
	}
	return false
}

// Payment settles exactly one order. Method stays NULL until the customer pays.
type Payment struct {
	ID        uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64         `json:"orderId" gorm:"not null;uniqueIndex"`
	UserID    string         `json:"userId" gorm:"size:64;not null;index:idx_payments_user_status,priority:1"`
	Method    *PaymentMethod `json:"method" gorm:"type:varchar(16);index:idx_payments_status_method,priority:2"`
	Status    PaymentStatus  `json:"status" gorm:"type:varchar(16);not null;index:idx_payments_status_method,priority:1;index:idx_payments_user_status,priority:2"`
	PaidAt    *time.Time     `json:"paidAt" gorm:"index"`
	Meta      JSONMap        `json:"meta,omitempty" gorm:"type:json"`
	CreatedAt time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
