// Package natsstan publishes order events to NATS Streaming.
package natsstan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/ports"

	stan "github.com/nats-io/stan.go"
	"go.uber.org/zap"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// AsyncPublisher is the part of stan.Conn the publisher needs.
type AsyncPublisher interface {
	PublishAsync(subject string, data []byte, ah stan.AckHandler) (string, error)
}

type Config struct {
	ClusterID string
	ClientID  string
	URL       string
}

// Connect opens a streaming connection. An empty client id gets a unique one.
func Connect(cfg Config, logger *zap.Logger) (stan.Conn, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("orders-%d", time.Now().UnixNano())
	}

	return stan.Connect(cfg.ClusterID, clientID,
		stan.NatsURL(cfg.URL),
		stan.SetConnectionLostHandler(func(_ stan.Conn, err error) {
			logger.Error("nats streaming connection lost", zap.Error(err))
		}),
	)
}

type orderEventPayload struct {
	OrderID         string   `json:"orderId"`
	State           string   `json:"state,omitempty"`
	Description     string   `json:"description,omitempty"`
	AssigneeType    string   `json:"assigneeType,omitempty"`
	AssigneeID      string   `json:"assigneeId,omitempty"`
	DeviceIDs       []string `json:"deviceIds,omitempty"`
	RecipientEmails []string `json:"recipientEmails,omitempty"`
}

// Publisher hands events to the broker without waiting for the ack; a
// negative ack is only logged.
type Publisher struct {
	conn   AsyncPublisher
	logger *zap.Logger
}

// NewPublisher wraps a streaming connection. logger may be nil.
//
// Example:
//
//	sc, err := natsstan.Connect(natsstan.Config{ClusterID: "test-cluster", URL: nats.DefaultURL}, logger)
//	if err != nil {
//	    return err
//	}
//	publisher := natsstan.NewPublisher(sc, logger)
func NewPublisher(conn AsyncPublisher, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{conn: conn, logger: logger.With(zap.String("component", "event_publisher"))}
}

// Publish encodes the event as JSON and sends it asynchronously. Only an
// encoding or enqueue failure is returned.
func (p *Publisher) Publish(_ context.Context, subject string, event ports.OrderEvent) error {
	data, err := json.Marshal(toPayload(event))
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}

	orderID := event.OrderID.String()
	_, err = p.conn.PublishAsync(subject, data, func(guid string, ackErr error) {
		if ackErr != nil {
			p.logger.Error("order event not acknowledged",
				zap.String("subject", subject),
				zap.String("orderId", orderID),
				zap.String("guid", guid),
				zap.Error(ackErr))
		}
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func toPayload(event ports.OrderEvent) orderEventPayload {
	payload := orderEventPayload{
		OrderID:         event.OrderID.String(),
		Description:     event.Description,
		RecipientEmails: kernel.EmailStrings(event.RecipientEmails),
	}
	if event.State.Validate() == nil {
		payload.State = event.State.String()
	}
	if event.AssigneeType.Validate() == nil {
		payload.AssigneeType = event.AssigneeType.String()
	}
	if event.AssigneeID.Validate() == nil {
		payload.AssigneeID = event.AssigneeID.String()
	}
	for _, id := range event.DeviceIDs {
		payload.DeviceIDs = append(payload.DeviceIDs, id.String())
	}
	return payload
}
