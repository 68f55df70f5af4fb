// Package testutil provides shared helpers for brokerboot tests.
//
// MockConnector stands in for an application-supplied connection factory.
// It satisfies amqpclient.Connector without opening sockets and counts Dial
// calls, so tests can check reuse of pre-registered components and the
// retry behaviour of connectivity checks:
//
//	supplied := testutil.NewMockConnector("app")
//	registry.Register(component.RoleConnectionFactory, supplied)
//
// BrokerProperties builds a config.Properties map pointing at a broker.
//
// StartRabbitMQ runs a RabbitMQ container through testcontainers-go for
// tests behind the integration build tag. The container is terminated by
// t.Cleanup.
package testutil
