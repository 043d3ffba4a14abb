package ports

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
)

// OrderEvent is the payload published on order lifecycle subjects.
type OrderEvent struct {
	OrderID         kernel.UUID
	State           order.State
	Description     string
	AssigneeType    order.AssigneeType
	AssigneeID      kernel.UUID
	DeviceIDs       []kernel.UUID
	RecipientEmails []kernel.Email
}

// EventPublisher hands events to the broker. Implementations must not block
// on broker acknowledgement.
type EventPublisher interface {
	// Publish sends event on subject. The error covers encoding and
	// enqueueing only.
	Publish(ctx context.Context, subject string, event OrderEvent) error
}
