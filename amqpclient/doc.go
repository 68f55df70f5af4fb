// Package amqpclient provides the three broker-facing components the
// provisioner can create: a ConnectionFactory, an Admin handle for topology
// management, and a Template for sending and receiving messages.
//
// All three are built on github.com/rabbitmq/amqp091-go. Construction never
// contacts the broker. A ConnectionFactory only records where and how to
// connect; Admin and Template open a fresh connection and channel per call
// through whatever Connector they are bound to, which may be a factory the
// application registered itself.
//
// Importing this package registers the "amqp091" capability, which gates
// the whole provisioning pass.
//
// Basic usage:
//
//	factory, err := amqpclient.NewConnectionFactory("broker1")
//	if err != nil {
//	    return err
//	}
//	factory.SetPort(5673)
//
//	template := amqpclient.NewTemplate(factory, amqpclient.WithRoutingKey("orders"))
//	if err := template.Send(ctx, []byte("hello")); err != nil {
//	    return err
//	}
//
// Dial, Admin and Template errors use the errors package classification:
// connectivity failures are transient, while rejected credentials and bad
// arguments are invalid.
package amqpclient
