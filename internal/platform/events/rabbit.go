package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	contentTypeJSON  = "application/json"
	defaultHeartbeat = 10 * time.Second
	defaultLocale    = "en_US"
)

var errNotConnected = errors.New("amqp connection is down")

// amqpChannel is the subset of *amqp.Channel the publisher needs. Narrowed
// so tests can substitute a fake.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes ledger events as JSON to a durable topic
// exchange, using the event type as the routing key. A lost connection is
// re-established with exponential backoff; publishes issued while the
// connection is down fail fast instead of queueing.
type RabbitPublisher struct {
	uri      string
	exchange string
	logger   *slog.Logger

	mu          sync.Mutex
	conn        *amqp.Connection
	channel     amqpChannel
	notifyClose chan *amqp.Error

	done      chan struct{}
	closeOnce sync.Once
}

// NewRabbitPublisher dials the broker, declares the exchange and starts the
// reconnection loop.
func NewRabbitPublisher(uri, exchange string, logger *slog.Logger) (*RabbitPublisher, error) {
	p := &RabbitPublisher{
		uri:      uri,
		exchange: exchange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	if err := p.connect(); err != nil {
		return nil, err
	}

	go p.reconnectLoop()

	return p, nil
}

func (p *RabbitPublisher) connect() error {
	conn, err := amqp.DialConfig(p.uri, amqp.Config{
		Heartbeat: defaultHeartbeat,
		Locale:    defaultLocale,
	})
	if err != nil {
		return err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	// Durable, non-auto-deleted topic exchange so queue bindings survive
	// broker restarts.
	err = channel.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return err
	}

	notifyClose := make(chan *amqp.Error)
	conn.NotifyClose(notifyClose)

	p.mu.Lock()
	p.conn = conn
	p.channel = channel
	p.notifyClose = notifyClose
	p.mu.Unlock()

	return nil
}

func (p *RabbitPublisher) closeNotifications() chan *amqp.Error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notifyClose
}

func (p *RabbitPublisher) reconnectLoop() {
	for {
		select {
		case <-p.done:
			return
		case amqpErr, ok := <-p.closeNotifications():
			if !ok || amqpErr == nil {
				// Graceful shutdown closes the notification channel.
				return
			}
			p.logger.Error("amqp connection lost, reconnecting", "error", amqpErr)

			p.mu.Lock()
			p.conn = nil
			p.channel = nil
			p.mu.Unlock()

			bo := backoff.NewExponentialBackOff()
			bo.MaxInterval = 10 * time.Second
			bo.MaxElapsedTime = time.Minute

			if err := backoff.Retry(p.connect, bo); err != nil {
				p.logger.Error("amqp reconnect gave up", "error", err)
				return
			}
			p.logger.Info("amqp reconnected", "exchange", p.exchange)
		}
	}
}

// Publish sends the event to the exchange with event.Type as the routing key.
func (p *RabbitPublisher) Publish(ctx context.Context, event LedgerEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	channel := p.channel
	p.mu.Unlock()
	if channel == nil {
		return errNotConnected
	}

	return channel.PublishWithContext(ctx,
		p.exchange,
		event.Type,
		false,
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			Timestamp:   event.OccurredAt,
			Body:        body,
		},
	)
}

// Close stops the reconnection loop and closes the connection.
func (p *RabbitPublisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		p.mu.Lock()
		conn := p.conn
		p.mu.Unlock()
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}

var (
	_ Publisher = (*RabbitPublisher)(nil)
	_ Publisher = (*Pubsub)(nil)
	_ Publisher = NoopPublisher{}
)
