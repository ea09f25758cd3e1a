package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/infra/redis"
	"storefront/internal/repository"
)

type OrderService struct {
	store     repository.Store
	ledger    Ledger
	publisher rabbitmq.PublisherInterface
	auditor   Auditor
	cache     redis.ProductCacheInterface
	company   domain.Company
	log       logrus.FieldLogger
	now       func() time.Time

	events sync.WaitGroup
}

func NewOrderService(store repository.Store, ledger Ledger, pub rabbitmq.PublisherInterface, auditor Auditor, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		store:     store,
		ledger:    ledger,
		publisher: pub,
		auditor:   auditor,
		log:       log,
		now:       time.Now,
	}
}

// SetProductCache makes order writes evict the products whose stock they touched.
func (s *OrderService) SetProductCache(cache redis.ProductCacheInterface) {
	s.cache = cache
}

func (s *OrderService) SetCompany(c domain.Company) {
	s.company = c
}

// Wait blocks until every event published so far has been handed to the broker.
func (s *OrderService) Wait() {
	s.events.Wait()
}

type orderLine struct {
	productID uint64
	quantity  int
}

// CheckoutFromCart turns the user's selected cart lines into one pending order.
func (s *OrderService) CheckoutFromCart(ctx context.Context, userID string) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		selected, err := tx.Carts().ListSelected(ctx, userID)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			return domain.ErrEmptyCheckout
		}

		lines := make([]orderLine, 0, len(selected))
		ids := make([]string, 0, len(selected))
		for _, c := range selected {
			lines = append(lines, orderLine{productID: c.ProductID, quantity: c.Quantity})
			ids = append(ids, c.ID)
		}

		note := domain.OrderNote{Source: domain.SourceCartCheckout, CartItemsCount: len(selected)}
		order, err = s.placeOrder(ctx, tx, userID, lines, note)
		if err != nil {
			return err
		}

		removed, err := tx.Carts().Remove(ctx, userID, ids...)
		if err != nil {
			return err
		}
		if removed != int64(len(ids)) {
			return domain.InvalidStatef("cart changed during checkout, please try again")
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("Cart checkout error")
		return nil, err
	}

	s.afterPlaced(ctx, order)
	return order, nil
}

func (s *OrderService) BuyNow(ctx context.Context, userID string, productID uint64, qty int) (*domain.Order, error) {
	if qty < 1 {
		return nil, domain.Validationf("quantity must be at least 1")
	}

	var order *domain.Order
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		note := domain.OrderNote{Source: domain.SourceBuyNow, CreatedVia: "direct_purchase"}
		order, err = s.placeOrder(ctx, tx, userID, []orderLine{{productID: productID, quantity: qty}}, note)
		return err
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "product_id": productID}).Warn("Buy now error")
		return nil, err
	}

	s.afterPlaced(ctx, order)
	return order, nil
}

// placeOrder runs inside tx. Stock is checked up front for a readable error and
// then taken with a conditional decrement, which is what actually guards against
// concurrent orders.
func (s *OrderService) placeOrder(ctx context.Context, tx repository.Store, userID string, lines []orderLine, note domain.OrderNote) (*domain.Order, error) {
	if userID == "" {
		return nil, domain.Validationf("user is required")
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].productID < lines[j].productID })

	products := make([]*domain.Product, len(lines))
	for i, l := range lines {
		p, err := tx.Products().FindByID(ctx, l.productID)
		if err != nil {
			return nil, err
		}
		if !p.Purchasable() {
			return nil, domain.NotFoundf("product %d", l.productID)
		}
		if l.quantity > p.Stock {
			return nil, domain.NewInsufficientStock(p, l.quantity)
		}
		products[i] = p
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for i, l := range lines {
		sub := products[i].LineTotal(l.quantity)
		total = total.Add(sub)
		items = append(items, domain.OrderItem{ProductID: l.productID, Quantity: l.quantity, Subtotal: sub})
	}

	order := &domain.Order{
		UserID: userID,
		Status: domain.StatusPending,
		Total:  total,
		Note:   note,
		Items:  items,
	}
	if err := tx.Orders().Create(ctx, order); err != nil {
		return nil, err
	}

	for i, l := range lines {
		ok, err := tx.Products().Reserve(ctx, l.productID, l.quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			current, err := tx.Products().FindByID(ctx, l.productID)
			if err != nil {
				return nil, err
			}
			if current == nil {
				current = &domain.Product{ID: products[i].ID, Name: products[i].Name}
			}
			return nil, domain.NewInsufficientStock(current, l.quantity)
		}
	}

	payment := &domain.Payment{
		OrderID: order.ID,
		UserID:  userID,
		Status:  domain.PaymentPending,
		Meta:    domain.JSONMap{"source": string(note.Source)},
	}
	if err := tx.Payments().Create(ctx, payment); err != nil {
		return nil, err
	}
	order.Payment = payment
	for i := range order.Items {
		order.Items[i].Product = products[i]
	}
	return order, nil
}

func (s *OrderService) afterPlaced(ctx context.Context, order *domain.Order) {
	s.auditor.Record(ctx, orderAudit(order.UserID, order, domain.AuditCreate, nil, domain.JSONMap{
		"status": order.Status,
		"total":  order.Total.String(),
		"source": order.Note.Source,
	}))
	s.evictProducts(ctx, order)
	s.publish(ctx, domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		Source:    order.Note.Source,
		CreatedAt: order.CreatedAt,
	})
}

// ProcessPayment settles a pending order: payment success, order in progress,
// sold counters bumped and the wallet credited, all in one transaction.
func (s *OrderService) ProcessPayment(ctx context.Context, userID string, orderID uint64, method domain.PaymentMethod) (*domain.Order, error) {
	if !method.Valid() {
		return nil, domain.Validationf("unsupported payment method %q", method)
	}

	paidAt := s.now()
	var order *domain.Order
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().FindForUser(ctx, userID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFoundf("order %d", orderID)
		}
		if order.Status != domain.StatusPending {
			return domain.InvalidStatef("order %s is %s and cannot be paid", order.Number(), order.Status)
		}
		if order.Payment == nil || order.Payment.Status != domain.PaymentPending {
			return domain.InvalidStatef("payment for order %s is not pending", order.Number())
		}

		meta := domain.JSONMap{}
		for k, v := range order.Payment.Meta {
			meta[k] = v
		}
		meta["payment_method"] = string(method)
		meta["processed_at"] = paidAt.Format(time.RFC3339)

		ok, err := tx.Payments().MarkPaid(ctx, orderID, method, paidAt, meta)
		if err != nil {
			return err
		}
		if !ok {
			return domain.InvalidStatef("order %s has already been paid", order.Number())
		}
		ok, err = tx.Orders().UpdateStatus(ctx, orderID, domain.StatusPending, domain.StatusProgress)
		if err != nil {
			return err
		}
		if !ok {
			return domain.InvalidStatef("order %s is no longer pending", order.Number())
		}

		for _, item := range order.Items {
			if err := tx.Products().IncrementSold(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if _, err := s.ledger.Credit(ctx, tx, order); err != nil {
			return err
		}

		order.Status = domain.StatusProgress
		order.Payment.Status = domain.PaymentSuccess
		order.Payment.Method = &method
		order.Payment.PaidAt = &paidAt
		order.Payment.Meta = meta
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "order_id": orderID}).Warn("Payment processing error")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": order.ID, "method": method, "amount": order.Total.String()}).Info("Payment processed")
	s.auditor.Record(ctx, orderAudit(userID, order, domain.AuditUpdate,
		domain.JSONMap{"status": domain.StatusPending},
		domain.JSONMap{"status": domain.StatusProgress}))
	s.evictProducts(ctx, order)
	s.publish(ctx, domain.EventOrderPaid, domain.OrderPaidEvent{
		OrderID: order.ID,
		UserID:  order.UserID,
		Method:  method,
		Amount:  order.Total,
		PaidAt:  paidAt,
	})
	return order, nil
}

// AdminUpdateStatus moves an order along the transitions staff may perform.
// Setting the current status again changes nothing.
func (s *OrderService) AdminUpdateStatus(ctx context.Context, actor domain.Identity, orderID uint64, status domain.OrderStatus) (*domain.Order, error) {
	if !actor.IsBackOffice() {
		return nil, domain.ErrForbidden
	}
	if !status.Valid() {
		return nil, domain.Validationf("unknown order status %q", status)
	}

	order, from, err := s.transition(ctx, orderID, status, func(o *domain.Order) error {
		if o.Status != status && !o.Status.AdminCanMove(status) {
			return domain.InvalidStatef("order %s cannot move from %s to %s", o.Number(), o.Status, status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if from == status {
		return order, nil
	}

	s.log.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"old_status": from,
		"new_status": status,
		"admin_id":   actor.UserID,
	}).Info("Order status updated")
	s.afterTransition(ctx, actor, order, from)
	return order, nil
}

func (s *OrderService) CompleteOrder(ctx context.Context, actor domain.Identity, orderID uint64) (*domain.Order, error) {
	if !actor.IsBackOffice() {
		return nil, domain.ErrForbidden
	}

	order, from, err := s.transition(ctx, orderID, domain.StatusCompleted, func(o *domain.Order) error {
		if o.Status != domain.StatusProgress {
			return domain.InvalidStatef("only in-progress orders can be completed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": order.ID, "admin_id": actor.UserID}).Info("Order completed by admin")
	s.afterTransition(ctx, actor, order, from)
	return order, nil
}

// transition applies check and the conditional status update in one
// transaction; an order already in status to is left alone once check passes.
// Cancelling gives the reserved stock back and fails the pending payment.
func (s *OrderService) transition(ctx context.Context, orderID uint64, to domain.OrderStatus, check func(*domain.Order) error) (*domain.Order, domain.OrderStatus, error) {
	var (
		order *domain.Order
		from  domain.OrderStatus
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFoundf("order %d", orderID)
		}
		from = order.Status
		if err := check(order); err != nil {
			return err
		}
		if from == to {
			return nil
		}

		ok, err := tx.Orders().UpdateStatus(ctx, orderID, from, to)
		if err != nil {
			return err
		}
		if !ok {
			return domain.InvalidStatef("order %s was changed by someone else", order.Number())
		}

		if to == domain.StatusCancelled {
			for _, item := range order.Items {
				if err := tx.Products().Release(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			if _, err := tx.Payments().MarkFailed(ctx, orderID); err != nil {
				return err
			}
			if order.Payment != nil && order.Payment.Status == domain.PaymentPending {
				order.Payment.Status = domain.PaymentFailed
			}
		}
		order.Status = to
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return order, from, nil
}

func (s *OrderService) afterTransition(ctx context.Context, actor domain.Identity, order *domain.Order, from domain.OrderStatus) {
	s.auditor.Record(ctx, orderAudit(actor.UserID, order, domain.AuditUpdate,
		domain.JSONMap{"status": from},
		domain.JSONMap{"status": order.Status}))

	if order.Status == domain.StatusCancelled {
		s.evictProducts(ctx, order)
	}

	s.publish(ctx, domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:   order.ID,
		From:      from,
		To:        order.Status,
		ChangedBy: actor.UserID,
		ChangedAt: s.now(),
	})
	if order.Status == domain.StatusCompleted {
		s.publish(ctx, domain.EventOrderCompleted, domain.OrderStatusChangedEvent{
			OrderID:   order.ID,
			From:      from,
			To:        order.Status,
			ChangedBy: actor.UserID,
			ChangedAt: s.now(),
		})
	}
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.store.Orders().ListByUser(ctx, userID)
}

func (s *OrderService) GetOrder(ctx context.Context, userID string, orderID uint64) (*domain.Order, error) {
	o, err := s.store.Orders().FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFoundf("order %d", orderID)
	}
	return o, nil
}

func (s *OrderService) PaymentMethods() []domain.PaymentMethodInfo {
	return domain.PaymentMethods
}

// Invoice is only produced once the order's payment succeeded.
func (s *OrderService) Invoice(ctx context.Context, userID string, orderID uint64) (*domain.Invoice, error) {
	o, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsPaid() {
		return nil, domain.ErrInvoiceNotAvailable
	}

	inv := &domain.Invoice{
		OrderID:     o.ID,
		OrderNumber: o.Number(),
		Company:     s.company,
		CustomerID:  o.UserID,
		InvoiceDate: s.now(),
		Total:       o.Total,
		Lines:       make([]domain.InvoiceLine, 0, len(o.Items)),
	}
	if o.Payment.PaidAt != nil {
		inv.PaidAt = *o.Payment.PaidAt
	}
	if o.Payment.Method != nil {
		inv.Method = *o.Payment.Method
	}
	for _, item := range o.Items {
		line := domain.InvoiceLine{ProductID: item.ProductID, Quantity: item.Quantity, Subtotal: item.Subtotal}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		inv.Lines = append(inv.Lines, line)
	}
	return inv, nil
}

type OrderStats struct {
	Total        int64           `json:"total"`
	Pending      int64           `json:"pending"`
	Progress     int64           `json:"progress"`
	Completed    int64           `json:"completed"`
	Cancelled    int64           `json:"cancelled"`
	Today        int64           `json:"today"`
	TodayRevenue decimal.Decimal `json:"todayRevenue"`
}

type OrderPage struct {
	Orders  []domain.Order `json:"orders"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"perPage"`
	Stats   OrderStats     `json:"stats"`
}

func (s *OrderService) AdminListOrders(ctx context.Context, actor domain.Identity, f repository.OrderFilter) (*OrderPage, error) {
	if !actor.IsBackOffice() {
		return nil, domain.ErrForbidden
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.Validationf("unknown order status %q", f.Status)
	}
	if f.PaymentStatus != "" && !f.PaymentStatus.Valid() {
		return nil, domain.Validationf("unknown payment status %q", f.PaymentStatus)
	}
	f.Page = repository.NewPage(f.Page.Page, f.Page.PerPage)

	orders, total, err := s.store.Orders().List(ctx, f)
	if err != nil {
		return nil, err
	}
	stats, err := s.orderStats(ctx)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Total: total, Page: f.Page.Page, PerPage: f.Page.Limit(), Stats: *stats}, nil
}

func (s *OrderService) orderStats(ctx context.Context) (*OrderStats, error) {
	counts, err := s.store.Orders().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &OrderStats{
		Pending:   counts[domain.StatusPending],
		Progress:  counts[domain.StatusProgress],
		Completed: counts[domain.StatusCompleted],
		Cancelled: counts[domain.StatusCancelled],
	}
	for _, n := range counts {
		stats.Total += n
	}

	start, end := dayBounds(s.now())
	if stats.Today, err = s.store.Orders().CountCreatedBetween(ctx, start, end); err != nil {
		return nil, err
	}
	if stats.TodayRevenue, err = s.store.Orders().RevenueBetween(ctx, domain.StatusCompleted, start, end); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *OrderService) AdminGetOrder(ctx context.Context, actor domain.Identity, orderID uint64) (*domain.Order, error) {
	if !actor.IsBackOffice() {
		return nil, domain.ErrForbidden
	}
	o, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFoundf("order %d", orderID)
	}
	return o, nil
}

func (s *OrderService) evictProducts(ctx context.Context, order *domain.Order) {
	if s.cache == nil {
		return
	}
	for _, item := range order.Items {
		if err := s.cache.Delete(ctx, item.ProductID); err != nil {
			s.log.WithError(err).WithField("product_id", item.ProductID).Warn("Failed to evict cached product")
		}
	}
}

// publish hands the event to the broker in the background; failures are only logged.
func (s *OrderService) publish(ctx context.Context, pattern string, evt any) {
	s.events.Add(1)
	go func() {
		defer s.events.Done()
		ctx := context.WithoutCancel(ctx)
		if err := s.publisher.Publish(ctx, pattern, evt); err != nil {
			s.log.WithError(err).WithField("pattern", pattern).Warn("Failed to publish event")
			return
		}
		s.log.WithField("pattern", pattern).Debug("Published event")
	}()
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
