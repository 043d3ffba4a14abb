package commands

import (
	"errors"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/guard"
)

// ErrApplyNotificationStatusCommandIsNotConstructed is returned by Validate on a zero value.
var ErrApplyNotificationStatusCommandIsNotConstructed = errors.New(
	"ApplyNotificationStatusCommand must be created via NewApplyNotificationStatusCommand constructor",
)

// ApplyNotificationStatusCommand carries one delivery confirmation from the
// notification service. The outcome is kept raw; unknown values map to PENDING.
type ApplyNotificationStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	outcome string
	message string

	guard guard.ConstructorGuard
}

// NewApplyNotificationStatusCommand wraps one delivery confirmation.
//
// Parameters:
//   - orderID: the order the notification was about
//   - outcome: raw outcome from the notification service, trimmed
//   - message: free text kept for logging
func NewApplyNotificationStatusCommand(orderID kernel.UUID, outcome, message string) (ApplyNotificationStatusCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ApplyNotificationStatusCommand{}, err
	}

	return ApplyNotificationStatusCommand{
		orderID: orderID,
		outcome: strings.TrimSpace(outcome),
		message: message,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate reports a command that bypassed the constructor.
func (c ApplyNotificationStatusCommand) Validate() error {
	return c.guard.Validate(ErrApplyNotificationStatusCommandIsNotConstructed)
}

// Accessors for the validated fields.
func (c ApplyNotificationStatusCommand) OrderID() kernel.UUID { return c.orderID }
func (c ApplyNotificationStatusCommand) Outcome() string      { return c.outcome }
func (c ApplyNotificationStatusCommand) Message() string      { return c.message }
