package amqpclient

import (
	"github.com/c360/brokerboot/capability"
	"github.com/c360/brokerboot/config"
)

// Capability names the AMQP client library in the capability registry
const Capability = "amqp091"

func init() {
	capability.Register(Capability)
}

// BuildConnectionFactory creates a factory from resolved connection settings.
// Host and port are always applied. Username and password are applied only
// when configured, leaving the client defaults in place otherwise. The broker
// is not contacted.
func BuildConnectionFactory(cfg config.ConnectionConfig, opts ...FactoryOption) (*ConnectionFactory, error) {
	f, err := NewConnectionFactory(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}

	f.SetPort(cfg.Port)
	if cfg.Username.Valid {
		f.SetUsername(cfg.Username.String)
	}
	if cfg.Password.Valid {
		f.SetPassword(cfg.Password.String)
	}

	return f, nil
}
