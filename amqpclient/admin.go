package amqpclient

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/c360/brokerboot/errors"
)

// Exchange describes an exchange to declare
type Exchange struct {
	Name       string
	Kind       string // defaults to direct
	Durable    bool
	AutoDelete bool
	Internal   bool
	Args       amqp.Table
}

// Queue describes a queue to declare. An empty Name asks the broker to
// generate one.
type Queue struct {
	Name       string
	Durable    bool
	AutoDelete bool
	Exclusive  bool
	Args       amqp.Table
}

// Binding routes messages from Exchange to Queue
type Binding struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Args       amqp.Table
}

// Declarable is an Exchange, Queue or Binding
type Declarable interface {
	declare(ch *amqp.Channel) error
}

func (e Exchange) validate() error {
	if e.Name == "" {
		return fmt.Errorf("exchange name cannot be empty")
	}
	return nil
}

func (e Exchange) declare(ch *amqp.Channel) error {
	if err := e.validate(); err != nil {
		return errors.WrapInvalid(err, "Admin", "DeclareExchange", "validate exchange")
	}
	kind := e.Kind
	if kind == "" {
		kind = amqp.ExchangeDirect
	}
	if err := ch.ExchangeDeclare(e.Name, kind, e.Durable, e.AutoDelete, e.Internal, false, e.Args); err != nil {
		return errors.WrapTransient(err, "Admin", "DeclareExchange", fmt.Sprintf("declare exchange %s", e.Name))
	}
	return nil
}

func (q Queue) declare(ch *amqp.Channel) error {
	_, err := q.declareQueue(ch)
	return err
}

func (q Queue) declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	declared, err := ch.QueueDeclare(q.Name, q.Durable, q.AutoDelete, q.Exclusive, false, q.Args)
	if err != nil {
		return amqp.Queue{}, errors.WrapTransient(err, "Admin", "DeclareQueue", fmt.Sprintf("declare queue %q", q.Name))
	}
	return declared, nil
}

func (b Binding) validate() error {
	if b.Queue == "" {
		return fmt.Errorf("binding queue cannot be empty")
	}
	if b.Exchange == "" {
		return fmt.Errorf("binding exchange cannot be empty")
	}
	return nil
}

func (b Binding) declare(ch *amqp.Channel) error {
	if err := b.validate(); err != nil {
		return errors.WrapInvalid(err, "Admin", "DeclareBinding", "validate binding")
	}
	if err := ch.QueueBind(b.Queue, b.RoutingKey, b.Exchange, false, b.Args); err != nil {
		return errors.WrapTransient(err, "Admin", "DeclareBinding",
			fmt.Sprintf("bind %s to %s with key %q", b.Queue, b.Exchange, b.RoutingKey))
	}
	return nil
}

// Admin declares and deletes broker topology. Each call opens its own
// connection through the bound Connector.
type Admin struct {
	connector Connector
	logger    *slog.Logger
}

// AdminOption is a functional option for configuring the Admin
type AdminOption func(*Admin)

// WithAdminLogger sets a custom logger for the admin handle
func WithAdminLogger(logger *slog.Logger) AdminOption {
	return func(a *Admin) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAdmin creates an admin handle bound to connector
func NewAdmin(connector Connector, opts ...AdminOption) *Admin {
	a := &Admin{
		connector: connector,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Connector returns the connection source the admin handle is bound to
func (a *Admin) Connector() Connector {
	return a.connector
}

// DeclareExchange declares an exchange, creating it if missing
func (a *Admin) DeclareExchange(ctx context.Context, exchange Exchange) error {
	if err := exchange.validate(); err != nil {
		return errors.WrapInvalid(err, "Admin", "DeclareExchange", "validate exchange")
	}
	return withChannel(ctx, a.connector, exchange.declare)
}

// DeclareQueue declares a queue and returns the broker's view of it,
// including the generated name when q.Name is empty.
func (a *Admin) DeclareQueue(ctx context.Context, q Queue) (amqp.Queue, error) {
	var declared amqp.Queue
	err := withChannel(ctx, a.connector, func(ch *amqp.Channel) error {
		var err error
		declared, err = q.declareQueue(ch)
		return err
	})
	return declared, err
}

// DeclareBinding binds a queue to an exchange
func (a *Admin) DeclareBinding(ctx context.Context, binding Binding) error {
	if err := binding.validate(); err != nil {
		return errors.WrapInvalid(err, "Admin", "DeclareBinding", "validate binding")
	}
	return withChannel(ctx, a.connector, binding.declare)
}

// Declare declares every item in order over a single channel, stopping at
// the first failure.
func (a *Admin) Declare(ctx context.Context, items ...Declarable) error {
	if len(items) == 0 {
		return nil
	}
	return withChannel(ctx, a.connector, func(ch *amqp.Channel) error {
		for _, item := range items {
			if err := item.declare(ch); err != nil {
				return err
			}
		}
		a.logger.Debug("Declared broker topology", "items", len(items))
		return nil
	})
}

// DeleteQueue deletes a queue and returns the number of messages purged
func (a *Admin) DeleteQueue(ctx context.Context, name string) (int, error) {
	if name == "" {
		return 0, errors.WrapInvalid(fmt.Errorf("queue name cannot be empty"), "Admin", "DeleteQueue", "validate name")
	}
	var purged int
	err := withChannel(ctx, a.connector, func(ch *amqp.Channel) error {
		var err error
		purged, err = ch.QueueDelete(name, false, false, false)
		if err != nil {
			return errors.WrapTransient(err, "Admin", "DeleteQueue", fmt.Sprintf("delete queue %s", name))
		}
		return nil
	})
	return purged, err
}

// DeleteExchange deletes an exchange
func (a *Admin) DeleteExchange(ctx context.Context, name string) error {
	if name == "" {
		return errors.WrapInvalid(fmt.Errorf("exchange name cannot be empty"), "Admin", "DeleteExchange", "validate name")
	}
	return withChannel(ctx, a.connector, func(ch *amqp.Channel) error {
		if err := ch.ExchangeDelete(name, false, false); err != nil {
			return errors.WrapTransient(err, "Admin", "DeleteExchange", fmt.Sprintf("delete exchange %s", name))
		}
		return nil
	})
}
