package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the topic exchange the backend publishes events to.
const DefaultExchange = "nestview.events"

// AMQPTransport consumes events from a RabbitMQ topic exchange through a
// private, exclusive queue. The routing key is the event name.
type AMQPTransport struct {
	url      string
	exchange string
	events   []string
	logger   *slog.Logger

	mu     sync.Mutex
	conn   *amqp.Connection
	closed bool
}

// NewAMQPTransport builds a transport for the broker at url.
func NewAMQPTransport(url string, opts TransportOptions) *AMQPTransport {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	exchange := opts.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}
	events := opts.Events
	if len(events) == 0 {
		events = Events()
	}
	return &AMQPTransport{
		url:      url,
		exchange: exchange,
		events:   append([]string(nil), events...),
		logger:   logger.With("transport", "amqp", "exchange", exchange),
	}
}

// Run declares the exchange and a server-named queue, binds one routing key
// per event and delivers messages until the connection or ctx ends.
func (t *AMQPTransport) Run(ctx context.Context, deliver DeliverFunc) error {
	conn, err := amqp.Dial(t.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = conn.Close()
		return context.Canceled
	}
	t.conn = conn
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		if t.conn == conn {
			t.conn = nil
		}
		t.mu.Unlock()
		_ = conn.Close()
	}()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(
		t.exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange %q: %w", t.exchange, err)
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	for _, event := range t.events {
		if err := ch.QueueBind(q.Name, event, t.exchange, false, nil); err != nil {
			return fmt.Errorf("bind %q: %w", event, err)
		}
	}

	deliveries, err := ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %q: %w", q.Name, err)
	}
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	t.logger.Info("push channel connected", "queue", q.Name, "events", t.events)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr, ok := <-closed:
			if t.isClosed() || !ok || amqpErr == nil {
				return context.Canceled
			}
			return fmt.Errorf("broker connection closed: %w", amqpErr)
		case d, ok := <-deliveries:
			if !ok {
				if t.isClosed() || ctx.Err() != nil {
					return context.Canceled
				}
				return errors.New("broker delivery channel closed")
			}
			deliver(d.RoutingKey, json.RawMessage(d.Body))
		}
	}
}

func (t *AMQPTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Close ends Run. It is safe to call before Run.
func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.conn == nil || t.conn.IsClosed() {
		return nil
	}
	return t.conn.Close()
}
