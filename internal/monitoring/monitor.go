package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mealer/internal/models"
)

// Monitor collects operation metrics for the order and inbox handlers
// and exposes them both as a snapshot map and as prometheus series.
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time

	dispatches  *prometheus.CounterVec
	completions *prometheus.CounterVec
}

// NewMonitor creates a monitoring instance and registers its
// collectors with the given registerer.
func NewMonitor(reg prometheus.Registerer) *Monitor {
	m := &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealer_dispatches_total",
			Help: "Operations dispatched to the remote store, by operation.",
		}, []string{"operation"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealer_completions_total",
			Help: "Remote operation completions, by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.dispatches, m.completions)
	}
	return m
}

// RecordDispatch counts one dispatched operation.
func (m *Monitor) RecordDispatch(op models.Operation) {
	m.dispatches.WithLabelValues(string(op)).Inc()
	m.bump("dispatch_" + string(op))
}

// RecordCompletion counts one completed operation.
func (m *Monitor) RecordCompletion(op models.Operation, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.completions.WithLabelValues(string(op), outcome).Inc()
	m.bump("completion_" + string(op) + "_" + outcome)
}

// RecordMetric records an arbitrary metric value.
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value.
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns a snapshot of all current metrics.
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	// Create a copy to avoid concurrent map access
	metrics := make(map[string]interface{}, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}

	// Add system metrics
	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears all snapshot metrics.
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

func (m *Monitor) bump(name string) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	count, _ := m.metrics[name].(int)
	m.metrics[name] = count + 1
}
