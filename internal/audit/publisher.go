// AngelaMos | 2026
// publisher.go

package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Notifier fans committed audit entries out to other systems. It runs
// after the entry is durable and never decides the outcome of a request.
type Notifier interface {
	Publish(ctx context.Context, entry Entry) error
	Close() error
}

type nopNotifier struct{}

func NewNopNotifier() Notifier { return nopNotifier{} }

func (nopNotifier) Publish(context.Context, Entry) error { return nil }
func (nopNotifier) Close() error                         { return nil }

// Publisher emits entries on a durable topic exchange, routed as
// "audit.<action>".
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close() //nolint:errcheck // cleanup on channel failure
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()   //nolint:errcheck // cleanup on declare failure
		_ = conn.Close() //nolint:errcheck // cleanup on declare failure
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func RoutingKey(action string) string {
	return "audit." + action
}

func (p *Publisher) Publish(ctx context.Context, entry Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}

	return p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(entry.Action), false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    entry.ID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}

// Ping reports whether the broker connection is still open.
func (p *Publisher) Ping(context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq connection closed")
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close() //nolint:errcheck // connection close follows
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
