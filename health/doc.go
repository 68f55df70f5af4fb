// Package health reports whether provisioning succeeded and whether the
// broker is reachable, in a form suitable for a /healthz endpoint.
//
// Health statuses are built from provisioning reports (FromReport) and broker
// connectivity checks (FromPing), collected in a Monitor, and served as JSON:
//
//	monitor := health.NewMonitor("brokerboot", metrics)
//	monitor.Update(health.CheckProvisioning, health.FromReport(report, err))
//	server.Handle("/healthz", monitor.Handler())
//
// Error messages are sanitized before they are stored so that broker URLs,
// addresses and credentials never reach the endpoint.
package health
