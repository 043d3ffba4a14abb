// Package commands contains the operations that change order state.
// Every command is a value object validated by its constructor and executed
// by a handler that owns the transaction boundary and any remote calls.
package commands

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler touches.
type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	RestorationRepoFactory interface {
		RestorationRepository() ports.RestorationRepository
	}

	// OrderUoW is used by commands that only touch orders.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW spans orders and the restoration ledger.
	UoW interface {
		TxManager
		OrderRepoFactory
		RestorationRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)

// OrderNotifier publishes lifecycle events; it never fails the caller.
type OrderNotifier interface {
	OrderCreated(ctx context.Context, o *order.Order, recipients []kernel.Email)
	StateChanged(ctx context.Context, o *order.Order, recipients []kernel.Email)
}
