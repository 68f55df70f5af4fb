package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "brokerboot"

// Metrics contains the provisioning metrics
type Metrics struct {
	Decisions    *prometheus.CounterVec
	PassDuration prometheus.Histogram
	Failures     *prometheus.CounterVec
	Bypassed     prometheus.Counter
	Registered   *prometheus.GaugeVec
	HealthStatus prometheus.Gauge
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provision",
				Name:      "decisions_total",
				Help:      "Candidate decisions by role and outcome (skipped, provisioned)",
			},
			[]string{"role", "outcome"},
		),

		PassDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "provision",
				Name:      "pass_duration_seconds",
				Help:      "Duration of provisioning passes in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),

		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provision",
				Name:      "failures_total",
				Help:      "Failed provisioning passes by error class",
			},
			[]string{"class"},
		),

		Bypassed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provision",
				Name:      "bypassed_total",
				Help:      "Provisioning passes bypassed because a required capability was missing",
			},
		),

		Registered: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "components",
				Help:      "Whether a component is registered per role (0=absent, 1=present)",
			},
			[]string{"role"},
		),

		HealthStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
		),
	}
}

// RecordDecision increments the decision counter for role
func (c *Metrics) RecordDecision(role, outcome string) {
	c.Decisions.WithLabelValues(role, outcome).Inc()
}

// RecordPassDuration records how long a provisioning pass took
func (c *Metrics) RecordPassDuration(duration time.Duration) {
	c.PassDuration.Observe(duration.Seconds())
}

// RecordFailure increments the failure counter for an error class
func (c *Metrics) RecordFailure(class string) {
	c.Failures.WithLabelValues(class).Inc()
}

// RecordBypass increments the bypass counter
func (c *Metrics) RecordBypass() {
	c.Bypassed.Inc()
}

// RecordRegistered updates the registry gauge for role
func (c *Metrics) RecordRegistered(role string, present bool) {
	c.Registered.WithLabelValues(role).Set(boolValue(present))
}

// RecordHealthStatus updates health check status
func (c *Metrics) RecordHealthStatus(healthy bool) {
	c.HealthStatus.Set(boolValue(healthy))
}

func boolValue(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
