package services

import (
	"context"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"

	"go.uber.org/zap"
)

const SubjectOrderCreated = "order.created"

// StateChangedSubject is the subject for a transition into state, e.g. order.state.in_process.
func StateChangedSubject(state order.State) string {
	return "order.state." + strings.ToLower(state.String())
}

// EventNotifier publishes order lifecycle events. Publication is best effort:
// failures are logged and never returned.
type EventNotifier struct {
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewEventNotifier wraps a publisher. logger may be nil.
//
// Example:
//
//	notifier := NewEventNotifier(natsstan.NewPublisher(sc, logger), logger)
//	notifier.OrderCreated(ctx, o, recipients)
func NewEventNotifier(publisher ports.EventPublisher, logger *zap.Logger) *EventNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventNotifier{publisher: publisher, logger: logger.With(zap.String("component", "event_notifier"))}
}

// OrderCreated publishes on SubjectOrderCreated.
func (n *EventNotifier) OrderCreated(ctx context.Context, o *order.Order, recipients []kernel.Email) {
	n.publish(ctx, SubjectOrderCreated, o, recipients)
}

// StateChanged publishes on the subject of the order's current state.
func (n *EventNotifier) StateChanged(ctx context.Context, o *order.Order, recipients []kernel.Email) {
	n.publish(ctx, StateChangedSubject(o.State()), o, recipients)
}

func (n *EventNotifier) publish(ctx context.Context, subject string, o *order.Order, recipients []kernel.Email) {
	event := ports.OrderEvent{
		OrderID:         o.ID(),
		State:           o.State(),
		Description:     o.Description(),
		AssigneeType:    o.Assignee().Type(),
		AssigneeID:      o.Assignee().ID(),
		DeviceIDs:       o.DeviceIDs(),
		RecipientEmails: recipients,
	}
	if err := n.publisher.Publish(ctx, subject, event); err != nil {
		n.logger.Error("order event not published",
			zap.String("subject", subject),
			zap.String("orderId", o.ID().String()),
			zap.Error(err))
		return
	}
	n.logger.Debug("order event published", zap.String("subject", subject), zap.String("orderId", o.ID().String()))
}
