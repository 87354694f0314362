package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"gomical/pkg/events"
)

// Publisher implements events.Publisher on top of RabbitMQ topic exchanges
// with publisher confirms.
type Publisher struct {
	conn    *amqp.Connection
	service string
}

func NewPublisher(url, service string) (*Publisher, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	zap.L().Info("RabbitMQ publisher connected")

	return &Publisher{
		conn:    conn,
		service: service,
	}, nil
}

func dial(url string) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error

	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		zap.L().Warn("Failed to connect to RabbitMQ, retrying...",
			zap.Int("attempt", i+1),
			zap.Error(err))
		time.Sleep(time.Second * time.Duration(i+1))
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after retries: %w", err)
}

// Publish sends one event and waits for the broker acknowledgement. A fresh
// channel per publish keeps confirmation bookkeeping isolated.
func (p *Publisher) Publish(ctx context.Context, exchange string, event *events.Event, headers events.Headers) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Timestamp,
		Headers: amqp.Table{
			"x-trace-id":       headers.TraceID,
			"x-correlation-id": headers.CorrelationID,
			"x-service":        p.service,
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := ch.PublishWithContext(publishCtx, exchange, event.GetRoutingKey(), false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case confirm := <-confirms:
		if !confirm.Ack {
			return fmt.Errorf("message was not acknowledged by broker")
		}
	case <-publishCtx.Done():
		return fmt.Errorf("publish confirmation timeout")
	}

	zap.L().Info("Event published",
		zap.String("exchange", exchange),
		zap.String("event", event.Event),
		zap.String("traceId", headers.TraceID),
	)

	return nil
}

func (p *Publisher) Close() error {
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			zap.L().Error("Failed to close RabbitMQ connection", zap.Error(err))
			return err
		}
	}
	return nil
}
