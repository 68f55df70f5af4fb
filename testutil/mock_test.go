package testutil

import (
	"context"
	stderrors "errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/brokerboot/config"
	"github.com/c360/brokerboot/errors"
)

func TestMockConnector_DefaultDialFails(t *testing.T) {
	m := NewMockConnector("app")

	conn, err := m.Dial(context.Background())
	assert.Nil(t, conn)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoConnection)
	assert.True(t, errors.IsInvalid(err))
	assert.Equal(t, 1, m.DialCalls())
	assert.Equal(t, "MockConnector(app)", m.String())
}

func TestMockConnector_DialFunc(t *testing.T) {
	boom := stderrors.New("boom")
	m := FailingConnector("app", boom)

	for i := 0; i < 3; i++ {
		_, err := m.Dial(context.Background())
		assert.Same(t, boom, err)
	}
	assert.Equal(t, 3, m.DialCalls())

	m.DialFunc = func(context.Context) (*amqp.Connection, error) { return nil, nil }
	_, err := m.Dial(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 4, m.DialCalls())
}

func TestBrokerProperties(t *testing.T) {
	props := BrokerProperties("broker1", 5673, config.KeyDynamic, "false", "dangling")

	assert.Equal(t, config.Properties{
		config.KeyHost:    "broker1",
		config.KeyPort:    "5673",
		config.KeyDynamic: "false",
	}, props)
}
