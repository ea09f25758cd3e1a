package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

const (
	recentOrdersLimit = 5
	topProductsLimit  = 3
	lowStockLimit     = 5
)

type DashboardService struct {
	store             repository.Store
	ledger            Ledger
	lowStockThreshold int
	log               logrus.FieldLogger
	now               func() time.Time
}

func NewDashboardService(store repository.Store, ledger Ledger, lowStockThreshold int, log logrus.FieldLogger) *DashboardService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 5
	}
	return &DashboardService{
		store:             store,
		ledger:            ledger,
		lowStockThreshold: lowStockThreshold,
		log:               log,
		now:               time.Now,
	}
}

type Alert struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type Dashboard struct {
	TotalSales       decimal.Decimal           `json:"totalSales"`
	TodaySales       decimal.Decimal           `json:"todaySales"`
	YesterdaySales   decimal.Decimal           `json:"yesterdaySales"`
	SalesGrowth      float64                   `json:"salesGrowth"`
	PendingOrders    int64                     `json:"pendingOrders"`
	TodayOrders      int64                     `json:"todayOrders"`
	LowStockCount    int64                     `json:"lowStockCount"`
	RecentOrders     []domain.Order            `json:"recentOrders"`
	TopProducts      []repository.ProductSales `json:"topProducts"`
	LowStockProducts []domain.Product          `json:"lowStockProducts"`
	Alerts           []Alert                   `json:"alerts"`
}

func (s *DashboardService) Stats(ctx context.Context, actor domain.Identity) (*Dashboard, error) {
	if !actor.IsBackOffice() {
		return nil, domain.ErrForbidden
	}

	today, tomorrow := dayBounds(s.now())
	yesterday := today.AddDate(0, 0, -1)

	var (
		d      Dashboard
		counts map[domain.OrderStatus]int64
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TotalSales, err = s.ledger.Balance(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.TodaySales, err = s.store.Wallets().SumBetween(ctx, today, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		d.YesterdaySales, err = s.store.Wallets().SumBetween(ctx, yesterday, today)
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.store.Orders().CountByStatus(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.TodayOrders, err = s.store.Orders().CountCreatedBetween(ctx, today, tomorrow)
		return err
	})
	g.Go(func() (err error) {
		d.LowStockCount, err = s.store.Products().CountLowStock(ctx, s.lowStockThreshold)
		return err
	})
	g.Go(func() (err error) {
		d.RecentOrders, err = s.store.Orders().Recent(ctx, recentOrdersLimit)
		return err
	})
	g.Go(func() (err error) {
		d.TopProducts, err = s.store.Products().TopSelling(ctx, topProductsLimit)
		return err
	})
	g.Go(func() (err error) {
		d.LowStockProducts, err = s.store.Products().LowStock(ctx, s.lowStockThreshold, lowStockLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.WithError(err).Error("Failed to build dashboard")
		return nil, err
	}

	d.PendingOrders = counts[domain.StatusPending]
	d.SalesGrowth = growth(d.TodaySales, d.YesterdaySales)
	d.Alerts = s.alerts(d.LowStockCount, d.PendingOrders)
	return &d, nil
}

// growth is the percentage change rounded to one decimal; zero when there is no baseline.
func growth(today, yesterday decimal.Decimal) float64 {
	if !yesterday.IsPositive() {
		return 0
	}
	pct := today.Sub(yesterday).Div(yesterday).Mul(decimal.NewFromInt(100)).Round(1)
	return pct.InexactFloat64()
}

func (s *DashboardService) alerts(lowStock, pending int64) []Alert {
	alerts := []Alert{}
	if lowStock > 0 {
		alerts = append(alerts, Alert{
			Type:    "warning",
			Title:   "Critical stock",
			Message: fmt.Sprintf("%d products with stock < %d units", lowStock, s.lowStockThreshold),
		})
	}
	if pending > 0 {
		alerts = append(alerts, Alert{
			Type:    "info",
			Title:   "Pending orders",
			Message: fmt.Sprintf("%d orders awaiting confirmation", pending),
		})
	}
	return alerts
}
