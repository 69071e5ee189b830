package likes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	durable    bool
	published  []published
	declareErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	f.declared = append(f.declared, name)
	f.durable = durable
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher(t *testing.T) {
	ch := &fakeChannel{}
	pub, err := NewAMQPPublisher(ch, "")
	if err != nil {
		t.Fatal(err)
	}
	if pub.Queue() != DefaultQueue || len(ch.declared) != 1 || !ch.durable {
		t.Errorf("queue declaration = %v durable=%v", ch.declared, ch.durable)
	}

	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	ev := Event{Widget: "login", SessionID: "s1", LikedAt: at}
	if err := pub.Record(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	if len(ch.published) != 1 {
		t.Fatalf("published %d messages", len(ch.published))
	}
	p := ch.published[0]
	if p.exchange != "" || p.key != DefaultQueue {
		t.Errorf("routed to %q/%q", p.exchange, p.key)
	}
	if p.msg.DeliveryMode != amqp.Persistent || p.msg.ContentType != "application/json" {
		t.Errorf("message properties = %+v", p.msg)
	}

	var got Event
	if err := json.Unmarshal(p.msg.Body, &got); err != nil {
		t.Fatal(err)
	}
	if got != ev {
		t.Errorf("body = %+v, want %+v", got, ev)
	}

	if err := pub.Close(); err != nil || !ch.closed {
		t.Errorf("Close() = %v closed=%v", err, ch.closed)
	}
}

func TestAMQPPublisherDeclareError(t *testing.T) {
	boom := errors.New("access refused")
	if _, err := NewAMQPPublisher(&fakeChannel{declareErr: boom}, "likes"); !errors.Is(err, boom) {
		t.Errorf("NewAMQPPublisher() = %v", err)
	}
}
