// Package brokerboot provisions the messaging components an application needs
// to talk to an AMQP 0-9-1 broker, creating only the ones the application did
// not already supply.
//
// # Components
//
// A provisioning pass considers three roles, in order:
//
//   - connection-factory: an amqpclient.ConnectionFactory built from the
//     messaging.broker.* configuration keys
//   - admin-handle: an amqpclient.Admin that declares exchanges, queues and
//     bindings through the connection factory
//   - template: an amqpclient.Template that publishes and receives messages
//     through the connection factory
//
// Each role is gated by conditions that are evaluated in order and combined
// with short-circuit AND:
//
//	connection-factory  CapabilityPresent(amqp091), RoleAbsent(connection-factory)
//	admin-handle        CapabilityPresent(amqp091), ExpressionTrue(messaging.broker.dynamic, default=true),
//	                    RoleAbsent(admin-handle)
//	template            CapabilityPresent(amqp091), RoleAbsent(template)
//
// A component the application registered before the pass is never replaced.
// The admin handle and template always share whatever connection factory
// ends up registered, supplied or provisioned.
//
// # Flow
//
//	┌─────────────────────────────────────┐
//	│   config.Loader                     │  .properties, YAML, JSON,
//	│   (layers + MESSAGING_BROKER_*)     │  environment overrides
//	└─────────────────────────────────────┘
//	           ↓ config.Properties
//	┌─────────────────────────────────────┐
//	│   provision.Provisioner             │  resolve, gate, build,
//	│   (componentregistry.Candidates)    │  register or roll back
//	└─────────────────────────────────────┘
//	           ↓ registers into
//	┌─────────────────────────────────────┐
//	│   component.Registry                │  one component per role
//	└─────────────────────────────────────┘
//
// Configuration is resolved before anything is registered, so a malformed
// value fails the whole pass and leaves the registry untouched. A build
// failure removes whatever the same pass had already registered.
//
// # Packages
//
//   - amqpclient: connection factory, admin handle and template over amqp091-go
//   - capability: runtime capability set consulted by CapabilityPresent
//   - component: roles and the component registry
//   - componentregistry: the three gated candidates and NewProvisioner
//   - condition: gate conditions and their evaluation
//   - config: property maps, layered loading and connection resolution
//   - errors: classified errors (transient, invalid, fatal)
//   - health: health status derived from provisioning reports and broker checks
//   - metric: Prometheus metrics and the metrics/health HTTP server
//   - provision: the provisioning pass, outcomes and reports
//   - pkg/retry: backoff for transient failures
//
// # Usage
//
//	registry := component.NewRegistry()
//	provisioner, err := componentregistry.NewProvisioner(provision.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	report, err := provisioner.Provision(registry, props)
//	if err != nil {
//		return err
//	}
//	template, err := component.Resolve[*amqpclient.Template](registry, component.RoleTemplate)
//
// The brokerboot command in cmd/brokerboot wraps the same flow with flags,
// an optional broker connectivity check and a /metrics and /healthz server.
package brokerboot
