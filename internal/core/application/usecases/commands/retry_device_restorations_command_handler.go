package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/restoration"
	"orders/internal/core/ports"

	"go.uber.org/zap"
)

// DefaultRestorationLease is how long a claim on a ledger row lasts when the
// caller does not configure one.
const DefaultRestorationLease = 30 * time.Second

// RetryDeviceRestorationsResult counts the outcome of one pass.
type RetryDeviceRestorationsResult struct {
	Completed int
	Failed    int
	// Skipped counts rows another restorer claimed between listing and claiming.
	Skipped int
}

// RetryDeviceRestorationsCommandHandler drains the restoration ledger.
// Every row is claimed with a compare-and-set before the device service is
// called, and every outcome is committed on its own, so a failure later in
// the pass never undoes a restore that already happened.
type RetryDeviceRestorationsCommandHandler struct {
	uowFactory UoWFactory
	devices    ports.DeviceGateway
	logger     *zap.Logger
}

// NewRetryDeviceRestorationsCommandHandler wires the handler.
//
// Parameters:
//   - uowFactory: creates a unit of work per claim and per outcome
//   - devices: the device gateway used to restore devices
//   - logger: may be nil
func NewRetryDeviceRestorationsCommandHandler(
	uowFactory UoWFactory,
	devices ports.DeviceGateway,
	logger *zap.Logger,
) RetryDeviceRestorationsCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return RetryDeviceRestorationsCommandHandler{
		uowFactory: uowFactory,
		devices:    devices,
		logger:     logger.With(zap.String("component", "restoration_retry")),
	}
}

// Handle runs one pass. It stops at the first storage failure or when ctx is
// done, returning the counts reached so far together with the error.
//
// Example:
//
//	cmd, _ := NewRetryDeviceRestorationsCommand(50, 30*time.Second)
//	result, err := handler.Handle(ctx, cmd)
//	log.Printf("completed=%d failed=%d", result.Completed, result.Failed)
func (h *RetryDeviceRestorationsCommandHandler) Handle(
	ctx context.Context,
	cmd RetryDeviceRestorationsCommand,
) (RetryDeviceRestorationsResult, error) {
	var result RetryDeviceRestorationsResult
	if err := cmd.Validate(); err != nil {
		return result, err
	}

	candidates, err := h.uowFactory.Create().RestorationRepository().
		ListClaimable(ctx, time.Now().UTC(), cmd.BatchSize())
	if err != nil {
		return result, err
	}

	for _, r := range candidates {
		if err = ctx.Err(); err != nil {
			return result, err
		}

		claimed, err := h.claim(ctx, r, cmd.Lease())
		if err != nil {
			return result, err
		}
		if !claimed {
			result.Skipped++
			continue
		}

		restoreErr := h.retry(ctx, r)
		if err = recordRestoration(ctx, h.uowFactory, r, restoreErr); err != nil {
			h.logger.Error("restoration outcome not recorded, row is retried after its lease",
				zap.String("orderId", r.OrderID().String()),
				zap.Bool("restored", restoreErr == nil),
				zap.Error(err))
			return result, err
		}

		if restoreErr != nil {
			result.Failed++
			h.logger.Warn("device restoration retry failed",
				zap.String("orderId", r.OrderID().String()),
				zap.Int("attempts", r.Attempts()),
				zap.Error(restoreErr))
			continue
		}
		result.Completed++
		h.logger.Info("device restoration completed",
			zap.String("orderId", r.OrderID().String()),
			zap.Int("attempts", r.Attempts()))
	}
	return result, nil
}

func (h *RetryDeviceRestorationsCommandHandler) claim(
	ctx context.Context,
	r *restoration.Restoration,
	lease time.Duration,
) (bool, error) {
	now := time.Now().UTC()
	if !r.IsClaimable(now) {
		return false, nil
	}
	if err := r.Claim(now, lease); err != nil {
		return false, err
	}
	return h.uowFactory.Create().RestorationRepository().Claim(ctx, r, now)
}

func (h *RetryDeviceRestorationsCommandHandler) retry(ctx context.Context, r *restoration.Restoration) error {
	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, r.OrderID())
	if err != nil {
		return err
	}
	snapshots, err := o.Snapshots()
	if err != nil {
		return err
	}
	return h.devices.Restore(ctx, snapshots)
}

// recordRestoration stores the outcome of a claimed restore in its own
// transaction. The write ignores cancellation of ctx: once the device service
// answered, the outcome must reach the ledger.
func recordRestoration(ctx context.Context, factory UoWFactory, r *restoration.Restoration, restoreErr error) error {
	ctx = context.WithoutCancel(ctx)
	if err := settle(r, restoreErr, time.Now().UTC()); err != nil {
		return err
	}

	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.RestorationRepository().Update(ctx, r); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

// settle applies a restore outcome to its ledger row.
func settle(r *restoration.Restoration, restoreErr error, now time.Time) error {
	if restoreErr != nil {
		return r.Fail(restoreErr, now)
	}
	return r.Complete(now)
}
