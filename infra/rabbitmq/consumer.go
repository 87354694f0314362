package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"gomical/pkg/events"
)

// EventHandler processes one consumed event.
type EventHandler func(ctx context.Context, event *events.Event) error

// ConsumerConfig sets up a queue bound to a topic exchange.
type ConsumerConfig struct {
	Exchange      string   // e.g. "gomical.catalog"
	QueueName     string   // e.g. "gomical.catalog.backup.v1"
	RoutingKeys   []string // e.g. ["catalog.*.v1", "catalog.category.*.v1"]
	PrefetchCount int      // 0 = default of 10
}

// Consumer is a RabbitMQ topic consumer with manual acknowledgements.
type Consumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
}

func NewConsumer(url string, config ConsumerConfig) (*Consumer, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	prefetch := config.PrefetchCount
	if prefetch == 0 {
		prefetch = 10
	}
	if err := channel.Qos(prefetch, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := channel.ExchangeDeclare(config.Exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(config.QueueName, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range config.RoutingKeys {
		if err := channel.QueueBind(queue.Name, key, config.Exchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue to %q: %w", key, err)
		}
	}

	zap.L().Info("RabbitMQ consumer ready",
		zap.String("exchange", config.Exchange),
		zap.String("queue", queue.Name),
		zap.Strings("routingKeys", config.RoutingKeys),
	)

	return &Consumer{
		conn:      conn,
		channel:   channel,
		queueName: queue.Name,
	}, nil
}

// Consume delivers events to handler until ctx is cancelled. Failed messages
// are rejected without requeue so a poison message cannot spin forever.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	deliveries, err := c.channel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			var event events.Event
			if err := json.Unmarshal(delivery.Body, &event); err != nil {
				zap.L().Error("Failed to decode event, rejecting", zap.Error(err))
				_ = delivery.Reject(false)
				continue
			}

			if err := handler(ctx, &event); err != nil {
				zap.L().Error("Event handler failed",
					zap.String("event", event.Event),
					zap.Error(err))
				_ = delivery.Reject(false)
				continue
			}

			_ = delivery.Ack(false)
		}
	}
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
