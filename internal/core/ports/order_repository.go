package ports

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
)

// OrderRepository persists order aggregates together with their items.
type OrderRepository interface {
	// Add inserts the order and all its items atomically.
	// A duplicate id yields errs.ErrObjectAlreadyExists.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes state, description and updatedAt when the stored version
	// still equals aggregate.Version(), then advances the version. A stale
	// version yields errs.ErrVersionIsInvalid and nothing is written.
	Update(ctx context.Context, aggregate *order.Order) error

	// UpdateNotificationStatus writes only the notification status and updatedAt.
	// The version is left untouched.
	UpdateNotificationStatus(ctx context.Context, aggregate *order.Order) error

	// Get loads the aggregate with its items or returns errs.ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
