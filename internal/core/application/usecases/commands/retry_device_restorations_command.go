package commands

import (
	"errors"
	"time"

	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var ErrRetryDeviceRestorationsCommandIsNotConstructed = errors.New(
	"RetryDeviceRestorationsCommand must be created via NewRetryDeviceRestorationsCommand constructor",
)

// RetryDeviceRestorationsCommand asks for one pass over the restoration ledger.
// At most batchSize claimable rows are processed; each row is claimed for lease
// before the device service is called.
//
// Example:
//
//	cmd, err := NewRetryDeviceRestorationsCommand(50, 30*time.Second)
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type RetryDeviceRestorationsCommand struct { //nolint:recvcheck //using for validation
	batchSize int
	lease     time.Duration

	guard guard.ConstructorGuard
}

// NewRetryDeviceRestorationsCommand builds a retry pass.
//
// Parameters:
//   - batchSize: maximum rows per pass, at least 1
//   - lease: how long a claim protects a row, must be longer than a device call
//
// Returns ErrValueIsOutOfRange when either value is out of range.
func NewRetryDeviceRestorationsCommand(batchSize int, lease time.Duration) (RetryDeviceRestorationsCommand, error) {
	var batchErr, leaseErr error
	if batchSize < 1 {
		batchErr = errs.NewValueIsOutOfRangeError("batch size", batchSize, 1, "unbounded")
	}
	if lease <= 0 {
		leaseErr = errs.NewValueIsOutOfRangeError("lease", lease, "1ns", "unbounded")
	}
	if err := errors.Join(batchErr, leaseErr); err != nil {
		return RetryDeviceRestorationsCommand{}, err
	}

	return RetryDeviceRestorationsCommand{
		batchSize: batchSize,
		lease:     lease,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRetryDeviceRestorationsCommandIsNotConstructed otherwise.
func (c RetryDeviceRestorationsCommand) Validate() error {
	return c.guard.Validate(ErrRetryDeviceRestorationsCommandIsNotConstructed)
}

// BatchSize returns the maximum number of rows processed in one pass.
func (c RetryDeviceRestorationsCommand) BatchSize() int { return c.batchSize }

// Lease returns how long a claim protects a row from other restorers.
func (c RetryDeviceRestorationsCommand) Lease() time.Duration { return c.lease }
