package commands

import (
	"errors"
	"strings"
	"unicode/utf8"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

const maxIdempotencyKeyLength = 255

// ErrCreateOrderCommandIsNotConstructed is returned by Validate on a zero value.
var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand asks for a new rental order over a set of devices.
// The order id is allocated by the caller so reservations can be tagged with it.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	description    string
	deviceIDs      []kernel.UUID
	assignee       order.Assignee
	idempotencyKey string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates a creation request.
//
// Parameters:
//   - orderID: id allocated by the caller, used to tag reservations
//   - description: optional, at most order.MaxDescriptionLength runes
//   - deviceIDs: at least one; duplicates are dropped
//   - assignee: employee or group that receives the events
//   - idempotencyKey: optional client key, at most 255 bytes after trimming
//
// Returns every validation failure joined into one error.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), "two laptops", ids, assignee, "")
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
func NewCreateOrderCommand(
	orderID kernel.UUID,
	description string,
	deviceIDs []kernel.UUID,
	assignee order.Assignee,
	idempotencyKey string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setDescription(description),
		cmd.setDeviceIDs(deviceIDs),
		cmd.setAssignee(assignee),
		cmd.setIdempotencyKey(idempotencyKey),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate reports a command that bypassed NewCreateOrderCommand.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// Accessors for the validated fields.
func (c CreateOrderCommand) OrderID() kernel.UUID     { return c.orderID }
func (c CreateOrderCommand) Description() string      { return c.description }
func (c CreateOrderCommand) Assignee() order.Assignee { return c.assignee }
func (c CreateOrderCommand) IdempotencyKey() string   { return c.idempotencyKey }

// DeviceIDs returns the requested devices without duplicates.
func (c CreateOrderCommand) DeviceIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.deviceIDs...)
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setDescription(description string) error {
	if n := utf8.RuneCountInString(description); n > order.MaxDescriptionLength {
		return errs.NewValueIsOutOfRangeError("description length", n, 0, order.MaxDescriptionLength)
	}
	c.description = description
	return nil
}

func (c *CreateOrderCommand) setDeviceIDs(deviceIDs []kernel.UUID) error {
	if len(deviceIDs) == 0 {
		return errs.NewValueIsRequiredError("deviceIds")
	}
	for _, id := range deviceIDs {
		if err := id.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("deviceIds", err)
		}
	}
	c.deviceIDs = kernel.UniqueUUIDs(deviceIDs)
	return nil
}

func (c *CreateOrderCommand) setAssignee(assignee order.Assignee) error {
	if err := assignee.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("assignee", err)
	}
	c.assignee = assignee
	return nil
}

func (c *CreateOrderCommand) setIdempotencyKey(key string) error {
	key = strings.TrimSpace(key)
	if len(key) > maxIdempotencyKeyLength {
		return errs.NewValueIsOutOfRangeError("idempotency key length", len(key), 0, maxIdempotencyKeyLength)
	}
	c.idempotencyKey = key
	return nil
}
