// Package queue holds the AMQP adapters: topology declaration, the outbound
// publisher and the inbound consumer.
package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/myproject/orders/internal/config"
)

// DeclareTopology sets up the shared topic exchange with the inbound and
// outbound queues, plus the dead-letter exchange/queue pair the inbound
// queue rejects into. Idempotent: redeclaring existing objects with the same
// arguments is a no-op on the broker.
func DeclareTopology(ch *amqp.Channel, cfg config.Config) error {
	if err := ch.ExchangeDeclare(cfg.OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", cfg.OrdersExchange, err)
	}
	if err := ch.ExchangeDeclare(cfg.DLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", cfg.DLXExchange, err)
	}

	// Rejected inbound deliveries are re-routed by the broker to the DLQ.
	if _, err := ch.QueueDeclare(cfg.InboundQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    cfg.DLXExchange,
		"x-dead-letter-routing-key": cfg.InboundDLQ,
	}); err != nil {
		return fmt.Errorf("declare queue %s: %w", cfg.InboundQueue, err)
	}
	if _, err := ch.QueueDeclare(cfg.OutboundQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", cfg.OutboundQueue, err)
	}
	if _, err := ch.QueueDeclare(cfg.InboundDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", cfg.InboundDLQ, err)
	}

	if err := ch.QueueBind(cfg.InboundQueue, cfg.InboundRoutingKey, cfg.OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", cfg.InboundQueue, err)
	}
	if err := ch.QueueBind(cfg.OutboundQueue, cfg.OutboundRoutingKey, cfg.OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", cfg.OutboundQueue, err)
	}
	if err := ch.QueueBind(cfg.InboundDLQ, cfg.InboundDLQ, cfg.DLXExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", cfg.InboundDLQ, err)
	}
	return nil
}
