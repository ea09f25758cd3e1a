package repository

import (
	"context"
	"errors"
)

// ErrDuplicate is returned when a write collides with a unique key.
var ErrDuplicate = errors.New("duplicate record")

// Store groups the repositories. Repositories obtained from the Store passed to
// a Transaction callback run inside that transaction; any error returned by the
// callback rolls every write back.
type Store interface {
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	Wallets() WalletRepository
	Audits() AuditRepository

	Transaction(ctx context.Context, fn func(tx Store) error) error
}
