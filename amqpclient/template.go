package amqpclient

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/c360/brokerboot/errors"
)

// DefaultContentType is applied to messages published without one
const DefaultContentType = "application/octet-stream"

// Template sends and receives messages through the bound Connector.
// Each call opens its own connection.
type Template struct {
	connector   Connector
	exchange    string
	routingKey  string
	queue       string
	contentType string
	logger      *slog.Logger
}

// TemplateOption is a functional option for configuring the Template
type TemplateOption func(*Template)

// WithExchange sets the exchange Send publishes to. Empty means the default exchange.
func WithExchange(name string) TemplateOption {
	return func(t *Template) {
		t.exchange = name
	}
}

// WithRoutingKey sets the routing key Send uses
func WithRoutingKey(key string) TemplateOption {
	return func(t *Template) {
		t.routingKey = key
	}
}

// WithQueue sets the queue Receive reads from
func WithQueue(name string) TemplateOption {
	return func(t *Template) {
		t.queue = name
	}
}

// WithContentType sets the content type applied to messages without one
func WithContentType(contentType string) TemplateOption {
	return func(t *Template) {
		if contentType != "" {
			t.contentType = contentType
		}
	}
}

// WithTemplateLogger sets a custom logger for the template
func WithTemplateLogger(logger *slog.Logger) TemplateOption {
	return func(t *Template) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTemplate creates a messaging template bound to connector
func NewTemplate(connector Connector, opts ...TemplateOption) *Template {
	t := &Template{
		connector:   connector,
		contentType: DefaultContentType,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Connector returns the connection source the template is bound to
func (t *Template) Connector() Connector {
	return t.connector
}

// Send publishes body to the template's exchange and routing key
func (t *Template) Send(ctx context.Context, body []byte) error {
	return t.Publish(ctx, t.exchange, t.routingKey, amqp.Publishing{Body: body})
}

// SendTo publishes body to the template's exchange with routingKey
func (t *Template) SendTo(ctx context.Context, routingKey string, body []byte) error {
	return t.Publish(ctx, t.exchange, routingKey, amqp.Publishing{Body: body})
}

// Publish publishes msg. A missing message ID, timestamp or content type is
// filled in before sending.
func (t *Template) Publish(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) error {
	if exchange == "" && routingKey == "" {
		return errors.WrapInvalid(fmt.Errorf("routing key required for the default exchange"),
			"Template", "Publish", "validate destination")
	}

	if msg.MessageId == "" {
		msg.MessageId = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.ContentType == "" {
		msg.ContentType = t.contentType
	}

	return withChannel(ctx, t.connector, func(ch *amqp.Channel) error {
		if err := ch.PublishWithContext(ctx, exchange, routingKey, false, false, msg); err != nil {
			return errors.WrapTransient(err, "Template", "Publish",
				fmt.Sprintf("publish to %q with key %q", exchange, routingKey))
		}
		t.logger.Debug("Published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.MessageId,
			"size", len(msg.Body))
		return nil
	})
}

// Receive fetches one message from the template's queue.
// The second result is false when the queue is empty.
func (t *Template) Receive(ctx context.Context) (amqp.Delivery, bool, error) {
	return t.ReceiveFrom(ctx, t.queue)
}

// ReceiveFrom fetches one message from queue with automatic acknowledgement
func (t *Template) ReceiveFrom(ctx context.Context, queue string) (amqp.Delivery, bool, error) {
	if queue == "" {
		return amqp.Delivery{}, false, errors.WrapInvalid(fmt.Errorf("queue name cannot be empty"),
			"Template", "Receive", "validate queue")
	}

	var (
		delivery amqp.Delivery
		ok       bool
	)
	err := withChannel(ctx, t.connector, func(ch *amqp.Channel) error {
		var err error
		delivery, ok, err = ch.Get(queue, true)
		if err != nil {
			return errors.WrapTransient(err, "Template", "Receive", fmt.Sprintf("get from %s", queue))
		}
		return nil
	})
	return delivery, ok, err
}
