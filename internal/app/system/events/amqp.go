package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// publishTimeout bounds a single publish so a stalled broker never holds
// up the HTTP response that triggered it.
const publishTimeout = 5 * time.Second

// reconnectDelay is the pause between re-dial attempts after the broker
// drops the connection.
const reconnectDelay = 5 * time.Second

// ErrNotConnected is returned by Publish while the publisher is between
// connections.
var ErrNotConnected = errors.New("event publisher not connected")

// AMQPPublisher publishes change events to a RabbitMQ topic exchange.
// When the broker drops the connection it re-dials in the background;
// publishes in the meantime fail with ErrNotConnected.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	url      string
	exchange string
	log      *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewAMQPPublisher dials url and declares exchange as a durable topic
// exchange (idempotent).
func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, ch, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}

	p := &AMQPPublisher{
		conn:     conn,
		channel:  ch,
		url:      url,
		exchange: exchange,
		log:      logger,
		done:     make(chan struct{}),
	}
	go p.watch(conn)

	logger.Info("change event publisher initialized", zap.String("exchange", exchange))
	return p, nil
}

func dial(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return conn, ch, nil
}

// watch waits for conn to drop and re-dials until it succeeds or Close is
// called. A clean close (ours) ends the loop.
func (p *AMQPPublisher) watch(conn *amqp.Connection) {
	for {
		closed := conn.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-p.done:
			return
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				return
			}
			p.log.Error("RabbitMQ connection closed, reconnecting", zap.Error(amqpErr))
		}

		p.mu.Lock()
		p.conn, p.channel = nil, nil
		p.mu.Unlock()

		for {
			select {
			case <-p.done:
				return
			case <-time.After(reconnectDelay):
			}

			newConn, ch, err := dial(p.url, p.exchange)
			if err != nil {
				p.log.Warn("RabbitMQ reconnect failed", zap.Error(err))
				continue
			}

			p.mu.Lock()
			select {
			case <-p.done:
				// Close ran while we were dialing.
				p.mu.Unlock()
				_ = ch.Close()
				_ = newConn.Close()
				return
			default:
			}
			p.conn, p.channel = newConn, ch
			p.mu.Unlock()

			p.log.Info("RabbitMQ reconnected", zap.String("exchange", p.exchange))
			conn = newConn
			break
		}
	}
}

// Publish sends e with its Kind as routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return fmt.Errorf("publish %s: %w", e.Kind, ErrNotConnected)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,     // exchange
		string(e.Kind), // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    e.ID,
			Timestamp:    e.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Kind, err)
	}

	p.log.Debug("change event published",
		zap.String("routing_key", string(e.Kind)),
		zap.String("resource_id", e.ResourceID),
		zap.Int("body_size", len(body)))
	return nil
}

// Close stops reconnecting and shuts the channel and connection. Safe to
// call more than once.
func (p *AMQPPublisher) Close() error {
	p.closeOnce.Do(func() {
		if p.done != nil {
			close(p.done)
		}
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		if err != nil && !errors.Is(err, amqp.ErrClosed) {
			return err
		}
	}
	return nil
}
