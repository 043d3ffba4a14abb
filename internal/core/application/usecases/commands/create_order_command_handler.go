package commands

import (
	"context"
	"errors"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/services"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CreateOrderResult is the created order, or the earlier one when the request was replayed.
type CreateOrderResult struct {
	Order    *order.Order
	Replayed bool
}

// CreateOrderCommandHandler runs the creation workflow:
// fetch device states, check availability, reserve, persist, resolve
// recipients, publish. Reservation happens before persistence; when
// persistence fails the reservation is compensated by restoring every device.
type CreateOrderCommandHandler struct {
	uowFactory  OrderUoWFactory
	devices     ports.DeviceGateway
	allocator   services.DeviceAllocator
	resolver    ports.RecipientResolver
	notifier    OrderNotifier
	idempotency ports.IdempotencyStore
	logger      *zap.Logger
}

// NewCreateOrderCommandHandler wires the handler. idempotency may be nil, in
// which case idempotency keys are ignored.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	devices ports.DeviceGateway,
	resolver ports.RecipientResolver,
	notifier OrderNotifier,
	idempotency ports.IdempotencyStore,
	logger *zap.Logger,
) CreateOrderCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return CreateOrderCommandHandler{
		uowFactory:  uowFactory,
		devices:     devices,
		allocator:   services.NewDeviceAllocator(),
		resolver:    resolver,
		notifier:    notifier,
		idempotency: idempotency,
		logger:      logger.With(zap.String("component", "create_order")),
	}
}

// Handle runs the creation workflow.
//
// Returns the stored order, or:
//   - a device.UnavailableError naming devices that are unknown, not
//     available for rent, or behind an unreachable device service
//   - InternalServer when the idempotency store is unreachable or the order
//     could not be persisted
//
// A resolver failure after the order is stored is logged and the event is
// skipped.
//
// Example:
//
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return err
//	}
//	if result.Replayed {
//	    status = http.StatusOK
//	}
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}

	ctx, span := observability.StartSpan(ctx, "order.create", attribute.String("order.id", cmd.OrderID().String()))
	defer span.End()

	orderID := cmd.OrderID()
	if key := cmd.IdempotencyKey(); key != "" && h.idempotency != nil {
		claimed, err := h.idempotency.Claim(ctx, key, orderID)
		if err != nil {
			return CreateOrderResult{}, errs.NewInternalServerError("idempotency key could not be claimed", true, err)
		}
		if !claimed.IsEqual(orderID) {
			orderID = claimed
			existing, err := h.load(ctx, orderID)
			if err == nil {
				h.logger.Info("replayed order creation", zap.String("orderId", orderID.String()))
				return CreateOrderResult{Order: existing, Replayed: true}, nil
			}
			if !errors.Is(err, errs.ErrObjectNotFound) {
				return CreateOrderResult{}, err
			}
		}
	}

	states, err := h.devices.FetchStates(ctx, cmd.DeviceIDs())
	if err != nil {
		return CreateOrderResult{}, err
	}

	items, err := h.allocator.Allocate(cmd.DeviceIDs(), states)
	if err != nil {
		return CreateOrderResult{}, err
	}

	o, err := order.NewOrder(orderID, cmd.Description(), cmd.Assignee(), items, time.Now().UTC())
	if err != nil {
		return CreateOrderResult{}, err
	}

	if err = h.devices.Reserve(ctx, o.DeviceIDs(), o.ID()); err != nil {
		return CreateOrderResult{}, err
	}

	if err = h.persist(ctx, o); err != nil {
		if errors.Is(err, errs.ErrObjectAlreadyExists) {
			existing, loadErr := h.load(ctx, o.ID())
			if loadErr != nil {
				return CreateOrderResult{}, loadErr
			}
			return CreateOrderResult{Order: existing, Replayed: true}, nil
		}
		h.compensate(ctx, o, err)
		if errs.IsClassified(err) {
			return CreateOrderResult{}, err
		}
		return CreateOrderResult{}, errs.NewInternalServerError("order could not be persisted", false, err)
	}

	recipients, err := h.resolver.Resolve(ctx, o.Assignee())
	if err != nil {
		h.logger.Warn("recipients not resolved, order.created not published",
			zap.String("orderId", o.ID().String()), zap.Error(err))
		return CreateOrderResult{Order: o}, nil
	}

	h.notifier.OrderCreated(ctx, o, recipients)
	return CreateOrderResult{Order: o}, nil
}

func (h *CreateOrderCommandHandler) persist(ctx context.Context, o *order.Order) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h *CreateOrderCommandHandler) load(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	uow := h.uowFactory.Create()
	return uow.OrderRepository().Get(ctx, id)
}

// compensate releases a reservation whose order could not be stored.
func (h *CreateOrderCommandHandler) compensate(ctx context.Context, o *order.Order, cause error) {
	logger := h.logger.With(zap.String("orderId", o.ID().String()), zap.NamedError("persistError", cause))

	snapshots, err := o.Snapshots()
	if err == nil {
		err = h.devices.Restore(context.WithoutCancel(ctx), snapshots)
	}
	if err != nil {
		logger.Error("compensating device restore failed, reconciliation required",
			zap.Stringers("deviceIds", o.DeviceIDs()), zap.Error(err))
		return
	}
	logger.Warn("order not persisted, device reservation released")
}
