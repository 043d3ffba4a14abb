package commands

import (
	"errors"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

// ErrChangeOrderStateCommandIsNotConstructed is returned by Validate on a zero value.
var ErrChangeOrderStateCommandIsNotConstructed = errors.New(
	"ChangeOrderStateCommand must be created via NewChangeOrderStateCommand constructor",
)

// ChangeOrderStateCommand moves an order to its next lifecycle state.
// A zero expected version means the caller did not send one.
type ChangeOrderStateCommand struct { //nolint:recvcheck //using for validation
	orderID         kernel.UUID
	state           order.State
	expectedVersion int64

	guard guard.ConstructorGuard
}

// NewChangeOrderStateCommand validates a transition request.
//
// Parameters:
//   - orderID: order to move
//   - state: requested next state
//   - expectedVersion: version the caller last saw, 0 when not sent
//
// Example:
//
//	cmd, err := NewChangeOrderStateCommand(id, order.Finished, 3)
//	if err != nil {
//	    return err
//	}
//	o, err := handler.Handle(ctx, cmd)
func NewChangeOrderStateCommand(orderID kernel.UUID, state order.State, expectedVersion int64) (ChangeOrderStateCommand, error) {
	cmd := ChangeOrderStateCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setState(state),
		cmd.setExpectedVersion(expectedVersion),
	); err != nil {
		return ChangeOrderStateCommand{}, err
	}

	return cmd, nil
}

// Validate reports a command that bypassed the constructor.
func (c ChangeOrderStateCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStateCommandIsNotConstructed)
}

// Accessors for the validated fields.
func (c ChangeOrderStateCommand) OrderID() kernel.UUID { return c.orderID }
func (c ChangeOrderStateCommand) State() order.State   { return c.state }

// ExpectedVersion reports the version the caller last read, if it sent one.
func (c ChangeOrderStateCommand) ExpectedVersion() (int64, bool) {
	return c.expectedVersion, c.expectedVersion > 0
}

func (c *ChangeOrderStateCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *ChangeOrderStateCommand) setState(state order.State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	c.state = state
	return nil
}

func (c *ChangeOrderStateCommand) setExpectedVersion(version int64) error {
	if version < 0 {
		return errs.NewValueIsOutOfRangeError("expected version", version, 1, "unbounded")
	}
	c.expectedVersion = version
	return nil
}
