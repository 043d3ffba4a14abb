package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per command.
type UnitOfWorkFactory interface {
	// Create returns a unit of work with no open transaction.
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary shared by the order and
// restoration repositories.
type UnitOfWork interface {
	// Begin opens the transaction.
	Begin(ctx context.Context) error

	// Commit makes the transaction permanent.
	Commit(ctx context.Context) error

	// Rollback discards the transaction. It is safe to defer after Commit.
	Rollback(ctx context.Context) error

	// OrderRepository is bound to the transaction started by Begin, if any.
	OrderRepository() OrderRepository

	// RestorationRepository is bound to the transaction started by Begin, if any.
	RestorationRepository() RestorationRepository
}
