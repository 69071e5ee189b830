package likes

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue is the queue like events are published to.
const DefaultQueue = "like.queue"

// AMQPChannel is the subset of *amqp.Channel used by AMQPPublisher.
type AMQPChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes like events as persistent JSON messages on a
// durable queue through the default exchange.
type AMQPPublisher struct {
	ch    AMQPChannel
	conn  *amqp.Connection
	queue string
}

// NewAMQPPublisher declares queue on ch and returns a publisher for it.
// An empty queue name selects DefaultQueue.
func NewAMQPPublisher(ch AMQPChannel, queue string) (*AMQPPublisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &AMQPPublisher{ch: ch, queue: queue}, nil
}

// DialAMQP connects to the broker at url and returns a publisher owning the
// connection.
func DialAMQP(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	p, err := NewAMQPPublisher(ch, queue)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// Queue returns the queue name messages are routed to.
func (p *AMQPPublisher) Queue() string { return p.queue }

// Record publishes ev.
func (p *AMQPPublisher) Record(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.LikedAt,
		Type:         "like",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish like: %w", err)
	}
	return nil
}

// Close closes the channel and, if DialAMQP opened it, the connection.
func (p *AMQPPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
