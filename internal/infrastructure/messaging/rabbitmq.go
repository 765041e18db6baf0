// Package messaging publishes and consumes domain events over RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
)

// Publisher wraps an AMQP channel bound to one durable queue.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	mu    sync.Mutex // amqp channels are not safe for concurrent publishing
	Queue string
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, ch, err := dialQueue(url, queue)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, Queue: queue}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Publish sends the event as a persistent JSON message on the default exchange.
func (p *Publisher) Publish(ctx context.Context, e entity.Event) error {
	msg, err := encodeEvent(e)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		msg,
	)
}

func encodeEvent(e entity.Event) (amqp.Publishing, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(e.Type),
		Timestamp:    time.Now().UTC(),
		Body:         b,
	}, nil
}

// DecodeEvent parses a delivery body produced by Publish.
func DecodeEvent(body []byte) (entity.Event, error) {
	var e entity.Event
	if err := json.Unmarshal(body, &e); err != nil {
		return entity.Event{}, err
	}
	if e.Type == "" {
		return entity.Event{}, fmt.Errorf("event without type")
	}
	return e, nil
}

func dialQueue(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("amqp channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("queue declare: %w", err)
	}
	return conn, ch, nil
}

var _ repository.EventPublisher = (*Publisher)(nil)
