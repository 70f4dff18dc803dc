package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends events to RabbitMQ.  Every Publish dials its own
// connection; traffic is a handful of events per minute.
type Publisher struct {
	url    string
	logger *zap.SugaredLogger
}

// NewPublisher returns nil when url is empty, which callers treat as
// "no broker".
func NewPublisher(url string, logger *zap.SugaredLogger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, logger: logger}
}

// Publish marshals event and sends it as a persistent message to the
// durable queue of the same name.  Errors are logged and returned so
// the caller can fall back.
func (p *Publisher) Publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warnw("rabbitmq dial failed", "queue", queue, "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warnw("rabbitmq channel open failed", "queue", queue, "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.logger.Warnw("rabbitmq queue declare failed", "queue", queue, "error", err)
		return err
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.logger.Warnw("rabbitmq publish failed", "queue", queue, "error", err)
		return err
	}
	p.logger.Debugw("event published", "queue", queue)
	return nil
}
