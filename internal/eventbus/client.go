// Package eventbus publishes ledger change notifications to RabbitMQ.
package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher is the seam services use to announce ledger changes.
// Publish failures must never fail the write that triggered them.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Client is an AMQP-backed Publisher.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

// NewClient dials the broker and declares a durable direct exchange
// with one bound queue.
func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,
		c.queueName, // routing key matches queue name for direct exchange
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// Publish sends one message to the exchange.
func (c *Client) Publish(ctx context.Context, msg Message) error {
	l := zerolog.Ctx(ctx)

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	l.Info().
		Str("event", msg.Event).
		Int64("group_id", msg.GroupID).
		Str("exchange", c.exchangeName).
		Msg("published event")

	return nil
}

// Consume delivers queued messages to the handler until ctx is done.
// A handler error nacks the message back onto the queue.
func (c *Client) Consume(ctx context.Context, handler func(Message) error) error {
	l := zerolog.Ctx(ctx)

	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := MessageFromJSON(delivery.Body)
			if err != nil {
				l.Error().Err(err).Msg("unmarshal event")

				if err := delivery.Nack(false, false); err != nil {
					l.Error().Err(err).Send()
				}

				continue
			}

			if err := handler(msg); err != nil {
				l.Error().Err(err).Str("event", msg.Event).Msg("handle event")

				if err := delivery.Nack(false, true); err != nil {
					l.Error().Err(err).Send()
				}

				continue
			}

			if err := delivery.Ack(false); err != nil {
				l.Error().Err(err).Send()
			}
		}
	}
}

// Close shuts down the channel and connection.
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}

// Noop is a Publisher used when no broker is configured.
type Noop struct{}

// Publish drops the message.
func (Noop) Publish(context.Context, Message) error { return nil }

// Close is a no-op.
func (Noop) Close() error { return nil }
