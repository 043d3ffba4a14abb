package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/model/restoration"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ChangeOrderStateCommandHandler runs the transition workflow. Moving an order
// to FINISHED writes a restoration row, already claimed by this handler, in
// the same transaction and then returns every device to the state captured
// at creation. The claim keeps the retry job away while the restore runs.
type ChangeOrderStateCommandHandler struct {
	uowFactory   UoWFactory
	devices      ports.DeviceGateway
	resolver     ports.RecipientResolver
	notifier     OrderNotifier
	restoreLease time.Duration
	logger       *zap.Logger
}

// NewChangeOrderStateCommandHandler wires the handler.
//
// Parameters:
//   - uowFactory: creates the transition and ledger units of work
//   - devices: restores devices when an order finishes
//   - resolver: looks up the recipients of the state change event
//   - notifier: publishes the state change event
//   - restoreLease: claim length for the ledger row, DefaultRestorationLease when not positive
//   - logger: may be nil
func NewChangeOrderStateCommandHandler(
	uowFactory UoWFactory,
	devices ports.DeviceGateway,
	resolver ports.RecipientResolver,
	notifier OrderNotifier,
	restoreLease time.Duration,
	logger *zap.Logger,
) ChangeOrderStateCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if restoreLease <= 0 {
		restoreLease = DefaultRestorationLease
	}
	return ChangeOrderStateCommandHandler{
		uowFactory:   uowFactory,
		devices:      devices,
		resolver:     resolver,
		notifier:     notifier,
		restoreLease: restoreLease,
		logger:       logger.With(zap.String("component", "change_order_state")),
	}
}

// Handle moves the order one step along its lifecycle.
//
// Returns the updated order, or:
//   - NotFound when the order does not exist
//   - BadRequest for an illegal transition
//   - Conflict when the expected or stored version is stale
//   - InternalServer (retryable when the device service was unavailable) when
//     the order finished but its devices could not be restored; the state
//     change stays committed and the retry job takes over
func (h *ChangeOrderStateCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStateCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "order.change_state",
		attribute.String("order.id", cmd.OrderID().String()),
		attribute.String("order.state", cmd.State().String()),
	)
	defer span.End()

	o, ledger, err := h.transition(ctx, cmd)
	if err != nil {
		return nil, err
	}

	logger := h.logger.With(zap.String("orderId", o.ID().String()), zap.Stringer("state", o.State()))

	recipients, err := h.resolver.Resolve(ctx, o.Assignee())
	if err != nil {
		logger.Warn("recipients not resolved, state change not published", zap.Error(err))
	} else {
		h.notifier.StateChanged(ctx, o, recipients)
	}

	if o.State() != order.Finished {
		return o, nil
	}

	if err = h.restore(ctx, o, ledger); err != nil {
		logger.Error("device restoration failed, reconciliation required",
			zap.Stringers("deviceIds", o.DeviceIDs()), zap.Error(err))
		return nil, errs.NewInternalServerError(
			"order finished but devices could not be restored", errs.IsRetryable(err), err,
		)
	}
	return o, nil
}

// transition commits the new state and, for FINISHED, the claimed ledger row.
func (h *ChangeOrderStateCommandHandler) transition(
	ctx context.Context,
	cmd ChangeOrderStateCommand,
) (*order.Order, *restoration.Restoration, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, nil, err
	}

	if expected, ok := cmd.ExpectedVersion(); ok {
		if err = o.CheckVersion(expected); err != nil {
			return nil, nil, err
		}
	}

	now := time.Now().UTC()
	if err = o.ChangeState(cmd.State(), now); err != nil {
		return nil, nil, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, nil, err
	}

	var ledger *restoration.Restoration
	if o.State() == order.Finished {
		if ledger, err = h.claimedLedger(o, now); err != nil {
			return nil, nil, err
		}
		if err = uow.RestorationRepository().Add(ctx, ledger); err != nil {
			return nil, nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return o, ledger, nil
}

func (h *ChangeOrderStateCommandHandler) claimedLedger(o *order.Order, now time.Time) (*restoration.Restoration, error) {
	r, err := restoration.NewRestoration(o.ID(), now)
	if err != nil {
		return nil, err
	}
	if err = r.Claim(now, h.restoreLease); err != nil {
		return nil, err
	}
	return r, nil
}

// restore calls the device service and records the outcome on the claimed
// ledger row. A ledger write failure after a successful restore is only
// logged; the claim then expires and the retry job restores the devices again.
func (h *ChangeOrderStateCommandHandler) restore(ctx context.Context, o *order.Order, r *restoration.Restoration) error {
	snapshots, err := o.Snapshots()
	if err != nil {
		return err
	}

	restoreErr := h.devices.Restore(ctx, snapshots)

	if err = recordRestoration(ctx, h.uowFactory, r, restoreErr); err != nil {
		h.logger.Error("restoration outcome not recorded",
			zap.String("orderId", o.ID().String()), zap.Bool("restored", restoreErr == nil), zap.Error(err))
	}
	return restoreErr
}
