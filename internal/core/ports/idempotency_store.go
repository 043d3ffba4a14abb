package ports

import (
	"context"

	"orders/internal/core/domain/model/kernel"
)

// IdempotencyStore binds a client idempotency key to an order id.
type IdempotencyStore interface {
	// Claim stores candidate under key unless the key is already bound, and
	// returns the id the key is bound to after the call.
	Claim(ctx context.Context, key string, candidate kernel.UUID) (kernel.UUID, error)
}
