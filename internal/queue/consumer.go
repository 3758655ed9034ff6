package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/myproject/orders/internal/order"
)

// Processor is the orchestration entry point the consumer feeds into. Both
// this adapter and the HTTP one call the same order.Service.
type Processor interface {
	ProcessReceived(ctx context.Context, req order.CreateOrderRequest) (*order.Order, error)
}

// Consumer feeds inbound queue deliveries into the order service. One
// delivery is one attempt: any failure is rejected without requeue so the
// broker dead-letters it instead of looping a poison message.
type Consumer struct {
	ch    *amqp.Channel
	svc   Processor
	queue string
}

func NewConsumer(ch *amqp.Channel, svc Processor, queue string) *Consumer {
	return &Consumer{ch: ch, svc: svc, queue: queue}
}

// Run consumes until the channel closes or ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack off, we ack/nack per delivery
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}
	log.Printf("[amqp] consuming queue=%s", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

// handle decodes and processes a single delivery. Success acks; every
// failure mode (bad JSON, duplicate, store or publish error) nacks with
// requeue=false, which routes the message to the DLQ.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var req order.CreateOrderRequest
	if err := json.Unmarshal(d.Body, &req); err != nil {
		log.Printf("[amqp] bad order message %s: %v", d.MessageId, err)
		_ = d.Nack(false, false)
		return
	}

	log.Printf("[amqp] received order external_id=%s", req.ExternalID)
	if _, err := c.svc.ProcessReceived(ctx, req); err != nil {
		log.Printf("[amqp] processing order external_id=%s failed: %v", req.ExternalID, err)
		_ = d.Nack(false, false)
		return
	}

	log.Printf("[amqp] processed order external_id=%s", req.ExternalID)
	_ = d.Ack(false)
}
