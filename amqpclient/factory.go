package amqpclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/c360/brokerboot/errors"
)

// Broker client defaults, matching amqp091's own URI defaults
const (
	DefaultHost     = "localhost"
	DefaultPort     = 5672
	DefaultUsername = "guest"
	DefaultPassword = "guest"
	DefaultVhost    = "/"
	DefaultLocale   = "en_US"

	DefaultHeartbeat         = 10 * time.Second
	DefaultConnectionTimeout = 30 * time.Second
)

// Connector opens broker connections. ConnectionFactory implements it, and
// so may any connection factory an application registers itself.
type Connector interface {
	Dial(ctx context.Context) (*amqp.Connection, error)
}

// ConnectionFactory describes how to open connections to an AMQP broker.
// Creating or configuring a factory never touches the network; reachability
// problems surface from Dial.
type ConnectionFactory struct {
	host     string
	port     int
	username string
	password string
	vhost    string

	connectionName    string
	heartbeat         time.Duration
	connectionTimeout time.Duration
	locale            string

	logger *slog.Logger
	mu     sync.RWMutex
}

// FactoryOption is a functional option for configuring the ConnectionFactory
type FactoryOption func(*ConnectionFactory) error

// WithVhost sets the virtual host
func WithVhost(vhost string) FactoryOption {
	return func(f *ConnectionFactory) error {
		if vhost == "" {
			return fmt.Errorf("vhost cannot be empty")
		}
		f.vhost = vhost
		return nil
	}
}

// WithConnectionName sets the client-provided connection name shown by the broker
func WithConnectionName(name string) FactoryOption {
	return func(f *ConnectionFactory) error {
		f.connectionName = name
		return nil
	}
}

// WithHeartbeat sets the heartbeat interval negotiated with the broker
func WithHeartbeat(d time.Duration) FactoryOption {
	return func(f *ConnectionFactory) error {
		if d < 0 {
			return fmt.Errorf("heartbeat cannot be negative: %v", d)
		}
		f.heartbeat = d
		return nil
	}
}

// WithConnectionTimeout bounds the TCP connect and AMQP handshake
func WithConnectionTimeout(d time.Duration) FactoryOption {
	return func(f *ConnectionFactory) error {
		if d <= 0 {
			return fmt.Errorf("connection timeout must be positive: %v", d)
		}
		f.connectionTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger for the factory
func WithLogger(logger *slog.Logger) FactoryOption {
	return func(f *ConnectionFactory) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewConnectionFactory creates a factory for host with broker client defaults
// for everything else.
func NewConnectionFactory(host string, opts ...FactoryOption) (*ConnectionFactory, error) {
	if host == "" {
		host = DefaultHost
	}

	f := &ConnectionFactory{
		host:              host,
		port:              DefaultPort,
		username:          DefaultUsername,
		password:          DefaultPassword,
		vhost:             DefaultVhost,
		heartbeat:         DefaultHeartbeat,
		connectionTimeout: DefaultConnectionTimeout,
		locale:            DefaultLocale,
		logger:            slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, errors.WrapInvalid(err, "ConnectionFactory", "NewConnectionFactory", "apply option")
		}
	}

	return f, nil
}

// SetHost sets the broker host
func (f *ConnectionFactory) SetHost(host string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.host = host
}

// SetPort sets the broker port
func (f *ConnectionFactory) SetPort(port int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.port = port
}

// SetUsername sets the authentication principal
func (f *ConnectionFactory) SetUsername(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.username = username
}

// SetPassword sets the authentication credential
func (f *ConnectionFactory) SetPassword(password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.password = password
}

// Host returns the broker host
func (f *ConnectionFactory) Host() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.host
}

// Port returns the broker port
func (f *ConnectionFactory) Port() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.port
}

// Username returns the authentication principal
func (f *ConnectionFactory) Username() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.username
}

// Password returns the authentication credential
func (f *ConnectionFactory) Password() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.password
}

// Vhost returns the virtual host
func (f *ConnectionFactory) Vhost() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.vhost
}

// Address returns host:port without credentials, safe for logs
func (f *ConnectionFactory) Address() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return net.JoinHostPort(f.host, strconv.Itoa(f.port))
}

// String implements fmt.Stringer without exposing credentials
func (f *ConnectionFactory) String() string {
	return fmt.Sprintf("ConnectionFactory(amqp://%s%s)", f.Address(), f.Vhost())
}

// Dial opens a new connection to the broker. The caller owns the returned
// connection and must close it.
func (f *ConnectionFactory) Dial(ctx context.Context) (*amqp.Connection, error) {
	f.mu.RLock()
	address := net.JoinHostPort(f.host, strconv.Itoa(f.port))
	auth := &amqp.PlainAuth{Username: f.username, Password: f.password}
	vhost := f.vhost
	name := f.connectionName
	heartbeat := f.heartbeat
	timeout := f.connectionTimeout
	locale := f.locale
	logger := f.logger
	f.mu.RUnlock()

	props := amqp.NewConnectionProperties()
	if name != "" {
		props.SetClientConnectionName(name)
	}

	cfg := amqp.Config{
		SASL:       []amqp.Authentication{auth},
		Vhost:      vhost,
		Heartbeat:  heartbeat,
		Locale:     locale,
		Properties: props,
		Dial:       contextDialer(ctx, timeout),
	}

	conn, err := amqp.DialConfig("amqp://"+address+"/", cfg)
	if err != nil {
		logger.Debug("AMQP dial failed", "address", address, "vhost", vhost, "error", err)
		return nil, classifyDialError(err, address)
	}

	logger.Debug("AMQP connection opened", "address", address, "vhost", vhost)
	return conn, nil
}

// contextDialer mirrors amqp.DefaultDial but honours ctx for the TCP connect.
// The deadline covers the handshake; amqp091 clears it once the connection opens.
func contextDialer(ctx context.Context, timeout time.Duration) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			_ = conn.Close()
			return nil, err
		}

		return conn, nil
	}
}

// classifyDialError separates rejected credentials or vhosts (operator
// mistakes) from connectivity failures the caller may retry.
func classifyDialError(err error, address string) error {
	action := fmt.Sprintf("open connection to %s", address)
	if stderrors.Is(err, amqp.ErrCredentials) ||
		stderrors.Is(err, amqp.ErrVhost) ||
		stderrors.Is(err, amqp.ErrSASL) {
		return errors.WrapInvalid(err, "ConnectionFactory", "Dial", action)
	}

	var amqpErr *amqp.Error
	if stderrors.As(err, &amqpErr) && (amqpErr.Code == amqp.AccessRefused || amqpErr.Code == amqp.NotAllowed) {
		return errors.WrapInvalid(err, "ConnectionFactory", "Dial", action)
	}
	if isTimeout(err) {
		err = fmt.Errorf("%w: %w", errors.ErrConnectionTimeout, err)
	}
	return errors.WrapTransient(err, "ConnectionFactory", "Dial", action)
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// withChannel opens a connection and channel, runs fn, and closes both
func withChannel(ctx context.Context, connector Connector, fn func(*amqp.Channel) error) error {
	if connector == nil {
		return errors.WrapInvalid(errors.ErrNoConnection, "Channel", "open", "connector validation")
	}

	conn, err := connector.Dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		if stderrors.Is(err, amqp.ErrClosed) {
			err = fmt.Errorf("%w: %w", errors.ErrConnectionLost, err)
		}
		return errors.WrapTransient(err, "Channel", "open", "open channel")
	}
	defer func() { _ = ch.Close() }()

	return fn(ch)
}
