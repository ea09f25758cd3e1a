package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message any) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Record(ctx context.Context, a *domain.Audit) {
	m.Called(ctx, a)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Credit(ctx context.Context, tx repository.Store, order *domain.Order) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, tx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockLedger) Balance(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedger) Transactions(ctx context.Context, f repository.TransactionFilter) ([]domain.WalletTransaction, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.WalletTransaction), args.Get(1).(int64), args.Error(2)
}

type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) Get(ctx context.Context, productID uint64) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductCache) Set(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductCache) Delete(ctx context.Context, productID uint64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}
