package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/myproject/orders/internal/order"
)

// Publisher sends finalized orders to the outbound routing key on the shared
// topic exchange. Implements order.Publisher.
type Publisher struct {
	ch         *amqp.Channel
	exchange   string
	routingKey string
}

func NewPublisher(ch *amqp.Channel, exchange, routingKey string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, routingKey: routingKey}
}

func (p *Publisher) PublishOrder(ctx context.Context, o *order.OrderResponse) error {
	body, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order %d: %w", o.ID, err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			MessageId:    uuid.NewString(),
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("publish order %d (external_id %s): %w", o.ID, o.ExternalID, err)
	}

	log.Printf("[amqp] published order id=%d external_id=%s key=%s", o.ID, o.ExternalID, p.routingKey)
	return nil
}
