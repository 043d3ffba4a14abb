// Package messaging consumes delivery confirmations from NATS Streaming.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/kernel"

	stan "github.com/nats-io/stan.go"
	"go.uber.org/zap"
)

const (
	defaultAckWait        = 30 * time.Second
	defaultHandlerTimeout = 10 * time.Second
)

// NotificationStatusApplier is the reconciler entry point.
type NotificationStatusApplier interface {
	Handle(ctx context.Context, cmd commands.ApplyNotificationStatusCommand) error
}

// QueueSubscriber is the part of stan.Conn the listener needs.
type QueueSubscriber interface {
	QueueSubscribe(subject, qgroup string, cb stan.MsgHandler, opts ...stan.SubscriptionOption) (stan.Subscription, error)
}

// ListenerConfig names the subscription. AckWait defaults to 30s.
type ListenerConfig struct {
	Subject string
	Queue   string
	Durable string
	AckWait time.Duration
}

type notificationEvent struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NotificationListener acks a message once its status was applied. Malformed
// payloads are acked after logging so they are not redelivered forever.
type NotificationListener struct {
	cfg     ListenerConfig
	applier NotificationStatusApplier
	logger  *zap.Logger
}

// NewNotificationListener builds the listener; call Subscribe to start it.
//
// Parameters:
//   - cfg: subject, queue group, durable name and ack wait
//   - applier: stores each outcome
//   - logger: may be nil
func NewNotificationListener(cfg ListenerConfig, applier NotificationStatusApplier, logger *zap.Logger) *NotificationListener {
	if cfg.AckWait <= 0 {
		cfg.AckWait = defaultAckWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationListener{
		cfg:     cfg,
		applier: applier,
		logger:  logger.With(zap.String("component", "notification_listener"), zap.String("subject", cfg.Subject)),
	}
}

// Subscribe registers a durable queue subscription with manual acks.
func (l *NotificationListener) Subscribe(conn QueueSubscriber) (stan.Subscription, error) {
	sub, err := conn.QueueSubscribe(l.cfg.Subject, l.cfg.Queue, l.onMessage,
		stan.DurableName(l.cfg.Durable),
		stan.SetManualAckMode(),
		stan.AckWait(l.cfg.AckWait),
		stan.DeliverAllAvailable(),
	)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", l.cfg.Subject, err)
	}
	l.logger.Info("listening for notification confirmations", zap.String("queue", l.cfg.Queue))
	return sub, nil
}

func (l *NotificationListener) onMessage(m *stan.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultHandlerTimeout)
	defer cancel()

	if err := l.Handle(ctx, m.Data); err != nil {
		l.logger.Error("notification confirmation not applied, awaiting redelivery",
			zap.Uint64("sequence", m.Sequence), zap.Error(err))
		return
	}
	if err := m.Ack(); err != nil {
		l.logger.Warn("ack failed", zap.Uint64("sequence", m.Sequence), zap.Error(err))
	}
}

// Handle applies one raw confirmation. A nil result means the message may be
// acknowledged.
func (l *NotificationListener) Handle(ctx context.Context, data []byte) error {
	var event notificationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		l.logger.Warn("dropping malformed notification confirmation", zap.Error(err), zap.ByteString("payload", data))
		return nil
	}

	orderID, err := kernel.UUIDFromString(event.OrderID)
	if err != nil {
		l.logger.Warn("dropping notification confirmation without a valid order id",
			zap.String("orderId", event.OrderID), zap.Error(err))
		return nil
	}

	cmd, err := commands.NewApplyNotificationStatusCommand(orderID, event.Status, event.Message)
	if err != nil {
		l.logger.Warn("dropping invalid notification confirmation", zap.String("orderId", event.OrderID), zap.Error(err))
		return nil
	}

	return l.applier.Handle(ctx, cmd)
}
