// Package events publishes order lifecycle notifications for downstream
// consumers (fulfillment, e-mail). Publishing is best-effort: a broker
// outage is logged and never fails the originating request.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/avdeyev/storefront/internal/domain"
)

const topic = "order-events"

type orderEvent struct {
	Event      string             `json:"event"`
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	Items      []domain.OrderItem `json:"items"`
	TotalPrice float64            `json:"total_price"`
	Status     domain.OrderStatus `json:"status"`
	OccurredAt time.Time          `json:"occurred_at"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ctx context.Context, eventType string, order *domain.Order) {
	payload, err := json.Marshal(orderEvent{
		Event:      eventType,
		OrderID:    order.ID.Hex(),
		UserID:     order.UserID.Hex(),
		Items:      order.Items,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		OccurredAt: time.Now(),
	})
	if err != nil {
		log.Printf("failed to marshal %s event for order %s: %v", eventType, order.ID.Hex(), err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ID.Hex()),
		Value: payload,
	})
	if err != nil {
		log.Printf("failed to publish %s event for order %s: %v", eventType, order.ID.Hex(), err)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
