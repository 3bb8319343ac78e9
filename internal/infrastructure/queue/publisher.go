package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

// Publisher emits user lifecycle events to a durable RabbitMQ queue.
// Messages are marked persistent so they survive broker restarts.
type Publisher struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
	log       zerolog.Logger
}

// NewPublisher dials RabbitMQ, opens a channel, and declares the durable
// queue events are published to. The declare is idempotent.
func NewPublisher(url, queueName string, log zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}

	return &Publisher{conn: conn, ch: ch, queueName: queueName, log: log}, nil
}

// Publish sends one event as persistent JSON to the default exchange with
// the queue name as routing key.
func (p *Publisher) Publish(ctx context.Context, event domain.UserEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	p.log.Debug().
		Str("queue", p.queueName).
		Str("action", event.Action).
		Str("user_id", event.UserID).
		Msg("user event published")
	return nil
}

// Close releases the channel and the connection.
func (p *Publisher) Close() {
	_ = p.ch.Close()
	_ = p.conn.Close()
}
