// Package events publishes user activity to a message broker.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"dompet/internal/logger"
)

const publishTimeout = 5 * time.Second

// Publisher delivers activity events.
type Publisher interface {
	Publish(ctx context.Context, event *ActivityEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, *ActivityEvent) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("publisher closed")

// AMQPPublisher publishes events to a durable topic exchange. A dropped
// connection or channel is redialed on the next Publish; events published
// while the broker is unreachable fail and are not retried.
type AMQPPublisher struct {
	mu           sync.Mutex
	url          string
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	closed       bool
}

// NewAMQPPublisher dials url and declares the exchange.
func NewAMQPPublisher(url, exchangeName string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, exchangeName: exchangeName}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect opens a connection and channel and declares the exchange.
// Callers hold p.mu or own p exclusively.
func (p *AMQPPublisher) connect() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		p.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	p.conn, p.channel = conn, channel
	return nil
}

// ensureConnected redials when the connection or channel has gone away.
func (p *AMQPPublisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.channel != nil && !p.channel.IsClosed() {
		return nil
	}
	if p.conn != nil && !p.conn.IsClosed() {
		p.conn.Close()
	}
	p.conn, p.channel = nil, nil

	logger.Get().Warnw("AMQP connection lost, reconnecting", "exchange", p.exchangeName)
	if err := p.connect(); err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}
	logger.Get().Infow("AMQP connection restored", "exchange", p.exchangeName)
	return nil
}

// New returns an AMQPPublisher when url is set and a NopPublisher otherwise.
func New(url, exchangeName string) (Publisher, error) {
	if url == "" {
		return NopPublisher{}, nil
	}
	return NewAMQPPublisher(url, exchangeName)
}

// Publish sends event with its routing key as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, event *ActivityEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if err := p.ensureConnected(); err != nil {
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName,     // exchange
		event.RoutingKey(), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	logger.Get().Debugw("published activity event",
		"routing_key", event.RoutingKey(),
		"resource_id", event.ResourceID,
		"exchange", p.exchangeName,
	)
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}
