package repository

import (
	"time"

	"storefront/internal/domain"
)

type Page struct {
	Page    int
	PerPage int
}

func NewPage(page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}
	return Page{Page: page, PerPage: perPage}
}

func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

func (p Page) Limit() int {
	if p.PerPage < 1 {
		return 15
	}
	return p.PerPage
}

type ProductFilter struct {
	CategorySlug string
	Search       string
	Page         Page
}

// OrderFilter dates are inclusive calendar days.
type OrderFilter struct {
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	DateFrom      *time.Time
	DateTo        *time.Time
	Search        string
	Page          Page
}

type TransactionFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Page     Page
}

// DayRange returns [start of from, start of the day after to).
func DayRange(from, to *time.Time) (start, end *time.Time) {
	if from != nil {
		s := startOfDay(*from)
		start = &s
	}
	if to != nil {
		e := startOfDay(*to).AddDate(0, 0, 1)
		end = &e
	}
	return start, end
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
