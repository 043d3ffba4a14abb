package commands

import (
	"context"
	"errors"
	"time"

	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"go.uber.org/zap"
)

// ApplyNotificationStatusCommandHandler records delivery confirmations.
// It writes only the notification columns and leaves the version alone, so a
// confirmation never invalidates a transition that is in flight.
type ApplyNotificationStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	logger     *zap.Logger
}

// NewApplyNotificationStatusCommandHandler wires the reconciler. logger may be nil.
func NewApplyNotificationStatusCommandHandler(uowFactory OrderUoWFactory, logger *zap.Logger) ApplyNotificationStatusCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return ApplyNotificationStatusCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "notification_reconciler")),
	}
}

// Handle stores the notification status of one order.
//
// Returns nil when the order does not exist, since the confirmation can never
// apply; storage failures are returned so the message is redelivered.
//
// Example:
//
//	cmd, _ := NewApplyNotificationStatusCommand(orderID, "SENT", "")
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return err
//	}
func (h *ApplyNotificationStatusCommandHandler) Handle(ctx context.Context, cmd ApplyNotificationStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	logger := h.logger.With(zap.String("orderId", cmd.OrderID().String()), zap.String("outcome", cmd.Outcome()))

	status, known := order.NotificationStatusFromOutcome(cmd.Outcome())
	if !known {
		logger.Warn("unknown notification outcome, treating as pending", zap.String("message", cmd.Message()))
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			logger.Warn("notification status for unknown order ignored")
			return nil
		}
		return err
	}

	changed, err := o.ApplyNotificationStatus(status, time.Now().UTC())
	if err != nil {
		return err
	}
	if !changed {
		logger.Debug("notification status unchanged")
		return nil
	}

	if err = repo.UpdateNotificationStatus(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	logger.Info("notification status updated", zap.Stringer("status", status))
	return nil
}
