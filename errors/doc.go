// Package errors provides standardized error handling patterns for brokerboot.
//
// # Error Classification
//
// Errors fall into three classes:
//
//   - Transient: broker connectivity problems surfaced after startup (the caller may retry)
//   - Invalid: wiring mistakes such as registering a role twice
//   - Fatal: malformed configuration; startup must abort
//
// Nothing inside the provisioning engine is retried. Classification exists so
// the embedding application can decide what to do with failures reported by
// the broker client once the registry has been populated.
//
// # Configuration Errors
//
// The properties resolver reports malformed values with ConfigurationError,
// which names the offending key and raw value:
//
//	cfg, err := config.Resolve(props)
//	if ce, ok := errors.AsConfigurationError(err); ok {
//	    log.Fatalf("fix %s (got %q)", ce.Key, ce.Value)
//	}
//
// ConfigurationError matches ErrInvalidConfig through errors.Is and is
// therefore classified as fatal.
//
// # Error Wrapping Pattern
//
// All wrapping follows the format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions set the classification:
//
//	errors.WrapTransient(err, "ConnectionFactory", "Dial", "open connection")
//	errors.WrapInvalid(err, "Registry", "Register", "duplicate role check")
//	errors.WrapFatal(err, "Provisioner", "Provision", "resolve properties")
//
// The generic Wrap() keeps whatever classification the cause already has.
//
// # Capability Bypass
//
// ErrCapabilityUnavailable is recorded on a provisioning report when a
// required capability is absent. The engine is skipped entirely and
// Provision returns a nil error.
package errors
