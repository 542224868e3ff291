package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Client publishes and consumes spendlens notifications. The in-process
// broadcast lives in the filter store; this client mirrors those events
// onto an exchange so separate processes (report workers, exporters)
// can react to filter and dataset changes.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

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
	// Declare exchange
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Declare queue
	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// The queue hears both notification kinds.
	for _, route := range []string{RouteFiltersChanged, RouteDatasetReplaced} {
		if err := c.channel.QueueBind(c.queueName, route, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue to %s: %w", route, err)
		}
	}

	return nil
}

// PublishFiltersChanged publishes a filter-write notification.
func (c *Client) PublishFiltersChanged(ctx context.Context, signature string) error {
	msg := NewFiltersChangedMessage(signature)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, RouteFiltersChanged, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published filters changed notification",
		"signature", signature,
		"exchange", c.exchangeName)
	return nil
}

// PublishDatasetReplaced publishes a snapshot-swap notification.
func (c *Client) PublishDatasetReplaced(ctx context.Context, snapshotID string, version uint64, recordCount int) error {
	msg := NewDatasetReplacedMessage(snapshotID, version, recordCount)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, RouteDatasetReplaced, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published dataset replaced notification",
		"snapshot_id", snapshotID,
		"version", version,
		"records", recordCount)
	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// Handler reacts to one delivered notification, dispatched by routing
// key. A non-nil error requeues the delivery.
type Handler interface {
	HandleFiltersChanged(ctx context.Context, msg *FiltersChangedMessage) error
	HandleDatasetReplaced(ctx context.Context, msg *DatasetReplacedMessage) error
}

// Consume blocks delivering notifications to the handler until the
// context is cancelled.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming notifications", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			if err := c.dispatch(ctx, handler, delivery); err != nil {
				slog.ErrorContext(ctx, "Failed to handle notification",
					"error", err,
					"routing_key", delivery.RoutingKey)
				delivery.Nack(false, true) // reject and requeue
				continue
			}
			delivery.Ack(false)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, handler Handler, delivery amqp091.Delivery) error {
	switch delivery.RoutingKey {
	case RouteFiltersChanged:
		msg, err := FiltersChangedMessageFromJSON(delivery.Body)
		if err != nil {
			// Undecodable payloads are dropped, not requeued.
			slog.ErrorContext(ctx, "Failed to unmarshal filters changed message", "error", err)
			delivery.Nack(false, false)
			return nil
		}
		return handler.HandleFiltersChanged(ctx, msg)
	case RouteDatasetReplaced:
		msg, err := DatasetReplacedMessageFromJSON(delivery.Body)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal dataset replaced message", "error", err)
			delivery.Nack(false, false)
			return nil
		}
		return handler.HandleDatasetReplaced(ctx, msg)
	default:
		slog.WarnContext(ctx, "Unknown routing key", "routing_key", delivery.RoutingKey)
		delivery.Nack(false, false)
		return nil
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
