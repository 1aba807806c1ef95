package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects engine counters. A nil *Metrics is valid and records
// nothing, so instrumentation sites never need to guard.
type Metrics struct {
	registry *prometheus.Registry

	propertyChanges *prometheus.CounterVec
	notifyFaults    prometheus.Counter
	autosaveFlushes *prometheus.CounterVec
	skippedLines    prometheus.Counter
	signalsEmitted  prometheus.Counter
	scriptsRunning  prometheus.Gauge
}

// NewMetrics creates a Metrics collection registered under the given
// namespace on a private registry.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		propertyChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "property_changes_total",
			Help:      "Accepted property value changes by category.",
		}, []string{"category"}),
		notifyFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_faults_total",
			Help:      "Subscriber callbacks that panicked during dispatch.",
		}),
		autosaveFlushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autosave_flushes_total",
			Help:      "Autosave flush attempts by outcome.",
		}, []string{"status"}),
		skippedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_skipped_lines_total",
			Help:      "Store file lines ignored during load.",
		}),
		signalsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_emitted_total",
			Help:      "Signal files written to the outbox.",
		}),
		scriptsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scripts_running",
			Help:      "Script hosts currently running.",
		}),
	}

	m.registry.MustRegister(
		m.propertyChanges,
		m.notifyFaults,
		m.autosaveFlushes,
		m.skippedLines,
		m.signalsEmitted,
		m.scriptsRunning,
	)
	return m
}

// RecordChange counts an accepted value change for a category.
func (m *Metrics) RecordChange(category string) {
	if m == nil {
		return
	}
	m.propertyChanges.WithLabelValues(category).Inc()
}

// RecordNotifyFault counts a subscriber panic caught during dispatch.
func (m *Metrics) RecordNotifyFault() {
	if m == nil {
		return
	}
	m.notifyFaults.Inc()
}

// RecordFlush counts an autosave flush attempt.
func (m *Metrics) RecordFlush(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.autosaveFlushes.WithLabelValues(status).Inc()
}

// AddSkippedLines counts lines ignored while loading a store file.
func (m *Metrics) AddSkippedLines(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedLines.Add(float64(n))
}

// RecordSignal counts a signal written to the outbox.
func (m *Metrics) RecordSignal() {
	if m == nil {
		return
	}
	m.signalsEmitted.Inc()
}

// ScriptStarted increments the running-scripts gauge.
func (m *Metrics) ScriptStarted() {
	if m == nil {
		return
	}
	m.scriptsRunning.Inc()
}

// ScriptStopped decrements the running-scripts gauge.
func (m *Metrics) ScriptStopped() {
	if m == nil {
		return
	}
	m.scriptsRunning.Dec()
}

// Handler returns an HTTP handler exposing the metrics in Prometheus
// text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
