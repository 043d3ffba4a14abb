package ports

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
)

// RecipientResolver turns an assignee into the e-mail addresses to notify.
// It never returns an empty list without an error.
type RecipientResolver interface {
	// Resolve fails with BadRequest for an invalid assignee, NotFound when
	// the assignee is unknown or has no usable address, and InternalServer
	// when the identity service fails.
	Resolve(ctx context.Context, assignee order.Assignee) ([]kernel.Email, error)
}
