package health

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/c360/brokerboot/metric"
)

// Monitor tracks named checks and serves their aggregate
type Monitor struct {
	name     string
	statuses map[string]Status
	metrics  *metric.Metrics
	mu       sync.RWMutex
}

// NewMonitor creates a monitor whose aggregate is reported under name.
// metrics may be nil.
func NewMonitor(name string, metrics *metric.Metrics) *Monitor {
	return &Monitor{
		name:     name,
		statuses: make(map[string]Status),
		metrics:  metrics,
	}
}

// Update records the status of a named check
func (m *Monitor) Update(name string, status Status) {
	m.mu.Lock()
	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}
	m.statuses[name] = status
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordHealthStatus(m.Aggregate().IsHealthy())
	}
}

// Get retrieves the status of a named check
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, exists := m.statuses[name]
	return status, exists
}

// Aggregate returns the combined status of all checks, ordered by name
func (m *Monitor) Aggregate() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subStatuses := make([]Status, 0, len(m.statuses))
	var names []string
	for name := range m.statuses {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		subStatuses = append(subStatuses, m.statuses[name])
	}
	return Aggregate(m.name, subStatuses)
}

// Handler serves the aggregate as JSON. Unhealthy yields 503; healthy and
// degraded yield 200.
func (m *Monitor) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := m.Aggregate()

		code := http.StatusOK
		if status.IsUnhealthy() {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})
}
