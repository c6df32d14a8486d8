// Package events publishes notifications about accepted orders.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"orderdesk/pkg/order"
)

// TypeOrderAccepted is the event type emitted after an order is stored.
const TypeOrderAccepted = "order.accepted"

// Publisher announces stored orders.
type Publisher interface {
	OrderAccepted(ctx context.Context, o order.Order) error
	Close() error
}

// Event is the message payload.
type Event struct {
	Type       string          `json:"type"`
	OrderID    string          `json:"order_id"`
	Status     string          `json:"status"`
	AcceptedAt time.Time       `json:"accepted_at"`
	Order      json.RawMessage `json:"order"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic keyed by order id.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		now: time.Now,
	}
}

// OrderAccepted publishes one event for o.
func (p *KafkaPublisher) OrderAccepted(ctx context.Context, o order.Order) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	value, err := json.Marshal(Event{
		Type:       TypeOrderAccepted,
		OrderID:    o.Identifier(),
		Status:     o.Status,
		AcceptedAt: p.now().UTC(),
		Order:      raw,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(o.Identifier()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypeOrderAccepted)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TypeOrderAccepted, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
