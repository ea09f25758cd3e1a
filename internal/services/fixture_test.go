package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/mocks"
	"storefront/internal/repository"
	mysqlrepo "storefront/internal/repository/mysql"
	"storefront/internal/testsupport"
)

var (
	admin    = domain.Identity{UserID: "admin-1", Role: domain.RoleAdmin}
	staff    = domain.Identity{UserID: "staff-1", Role: domain.RoleStaff}
	customer = domain.Identity{UserID: "user-1", Role: domain.RoleUser}
)

type fixture struct {
	db      *gorm.DB
	store   repository.Store
	pub     *mocks.MockPublisher
	auditor *mocks.MockAuditor
	ledger  *WalletLedger
	carts   *CartService
	orders  *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testsupport.NewDB(t)
	store := mysqlrepo.NewStore(db)
	log, _ := test.NewNullLogger()

	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	auditor := new(mocks.MockAuditor)
	auditor.On("Record", mock.Anything, mock.Anything).Maybe()

	ledger := NewWalletLedger(store, log)
	orders := NewOrderService(store, ledger, pub, auditor, log)
	t.Cleanup(orders.Wait)

	return &fixture{
		db:      db,
		store:   store,
		pub:     pub,
		auditor: auditor,
		ledger:  ledger,
		carts:   NewCartService(store, log),
		orders:  orders,
	}
}

func (f *fixture) product(t *testing.T, name string, price int64, stock int) *domain.Product {
	return testsupport.SeedProduct(t, f.db, name, price, stock)
}

func (f *fixture) stock(t *testing.T, id uint64) int {
	return testsupport.ReloadProduct(t, f.db, id).Stock
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// faultyStore fails payment creation, which happens after the order and stock writes.
type faultyStore struct {
	repository.Store
	err error
}

func (s faultyStore) Payments() repository.PaymentRepository {
	return faultyPayments{PaymentRepository: s.Store.Payments(), err: s.err}
}

func (s faultyStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(faultyStore{Store: tx, err: s.err})
	})
}

type faultyPayments struct {
	repository.PaymentRepository
	err error
}

func (p faultyPayments) Create(context.Context, *domain.Payment) error {
	return p.err
}

// rivalStore lets another buyer or payer win inside the same transaction,
// right after the service's own pre-checks and before its guarded write.
type rivalStore struct {
	repository.Store
	rivalQty int
}

func (s rivalStore) Products() repository.ProductRepository {
	return rivalProducts{ProductRepository: s.Store.Products(), rivalQty: s.rivalQty}
}

func (s rivalStore) Payments() repository.PaymentRepository {
	return rivalPayments{PaymentRepository: s.Store.Payments()}
}

func (s rivalStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(rivalStore{Store: tx, rivalQty: s.rivalQty})
	})
}

type rivalProducts struct {
	repository.ProductRepository
	rivalQty int
}

func (p rivalProducts) Reserve(ctx context.Context, id uint64, qty int) (bool, error) {
	if p.rivalQty > 0 {
		if _, err := p.ProductRepository.Reserve(ctx, id, p.rivalQty); err != nil {
			return false, err
		}
	}
	return p.ProductRepository.Reserve(ctx, id, qty)
}

type rivalPayments struct {
	repository.PaymentRepository
}

func (p rivalPayments) MarkPaid(ctx context.Context, orderID uint64, method domain.PaymentMethod, paidAt time.Time, meta domain.JSONMap) (bool, error) {
	if _, err := p.PaymentRepository.MarkPaid(ctx, orderID, method, paidAt, meta); err != nil {
		return false, err
	}
	return p.PaymentRepository.MarkPaid(ctx, orderID, method, paidAt, meta)
}

// busyCartStore adds one unit to a line right after the service has read it,
// the way a second tab adding the same product would.
type busyCartStore struct {
	repository.Store
}

func (s busyCartStore) Carts() repository.CartRepository {
	return busyCarts{CartRepository: s.Store.Carts()}
}

type busyCarts struct {
	repository.CartRepository
}

func (c busyCarts) FindLive(ctx context.Context, userID string, productID uint64) (*domain.CartLine, error) {
	line, err := c.CartRepository.FindLive(ctx, userID, productID)
	if err != nil || line == nil {
		return line, err
	}
	if _, err := c.CartRepository.Merge(ctx, line.ID, 1, domain.MaxCartQuantity); err != nil {
		return nil, err
	}
	return line, nil
}
