package testutil

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/c360/brokerboot/errors"
)

// MockConnector is an application-supplied connection source for tests.
// It never reaches a broker: Dial returns the result of DialFunc, or
// ErrNoConnection when DialFunc is nil.
type MockConnector struct {
	mu sync.Mutex

	Name     string
	DialFunc func(ctx context.Context) (*amqp.Connection, error)

	dialCalls int
}

// NewMockConnector creates a mock connector identified by name.
func NewMockConnector(name string) *MockConnector {
	return &MockConnector{Name: name}
}

// FailingConnector returns a mock whose every Dial fails with err.
func FailingConnector(name string, err error) *MockConnector {
	return &MockConnector{
		Name: name,
		DialFunc: func(context.Context) (*amqp.Connection, error) {
			return nil, err
		},
	}
}

// Dial records the call and delegates to DialFunc.
func (m *MockConnector) Dial(ctx context.Context) (*amqp.Connection, error) {
	m.mu.Lock()
	m.dialCalls++
	fn := m.DialFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, errors.WrapInvalid(errors.ErrNoConnection, "MockConnector", "Dial", "open connection")
	}
	return fn(ctx)
}

// DialCalls returns how many times Dial ran.
func (m *MockConnector) DialCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dialCalls
}

func (m *MockConnector) String() string {
	return "MockConnector(" + m.Name + ")"
}
