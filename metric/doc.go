// Package metric provides Prometheus metrics for provisioning passes and an
// HTTP server that exposes them.
//
// NewMetricsRegistry creates a private prometheus.Registry holding the
// provisioning metrics (Metrics), Go runtime and process collectors, and any
// collectors added through Register.
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//	server.Handle("/healthz", healthHandler)
//	if err := server.Start(); err != nil {
//	    return err
//	}
//	defer server.Stop(ctx)
//
// Exported series:
//
//   - brokerboot_provision_decisions_total{role, outcome}
//   - brokerboot_provision_pass_duration_seconds
//   - brokerboot_provision_failures_total{class}
//   - brokerboot_provision_bypassed_total
//   - brokerboot_registry_components{role}
//   - brokerboot_health_status
package metric
