package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
)

// Outcome tells the consumer what to do with a delivery after handling.
type Outcome int

const (
	Ack Outcome = iota
	Requeue
	Drop
)

// HandlerFunc processes one event.
type HandlerFunc func(ctx context.Context, e entity.Event) Outcome

// Consumer reads events from a durable queue with manual acks.
type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	Queue    string
	Prefetch int
	Logger   logrus.FieldLogger
}

func NewConsumer(url, queue string, prefetch int, logger logrus.FieldLogger) (*Consumer, error) {
	conn, ch, err := dialQueue(url, queue)
	if err != nil {
		return nil, err
	}
	if prefetch <= 0 {
		prefetch = 16
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("qos: %w", err)
	}
	return &Consumer{conn: conn, ch: ch, Queue: queue, Prefetch: prefetch, Logger: logger}, nil
}

func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Run consumes until ctx is done or the channel closes.
func (c *Consumer) Run(ctx context.Context, handle HandlerFunc) error {
	msgs, err := c.ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			c.dispatch(ctx, msg, handle)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg amqp.Delivery, handle HandlerFunc) {
	e, err := DecodeEvent(msg.Body)
	if err != nil {
		c.Logger.WithError(err).Warn("dropping malformed event")
		_ = msg.Nack(false, false)
		return
	}
	switch handle(ctx, e) {
	case Requeue:
		_ = msg.Nack(false, true)
	case Drop:
		_ = msg.Nack(false, false)
	default:
		_ = msg.Ack(false)
	}
}
