package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Namespace prefixes every metric name. Defaults to "sputnik".
	Namespace string

	// Subsystem is placed between namespace and name. Defaults to "server".
	Subsystem string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the event duration histogram buckets in seconds.
	Buckets []float64

	// Registry receives the collectors. Defaults to a new registry.
	Registry *prometheus.Registry
}

// DefaultMetricsConfig returns a MetricsConfig with a fresh registry.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "sputnik",
		Subsystem: "server",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		Registry:  prometheus.NewRegistry(),
	}
}

// Metrics holds the server's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	eventsTotal      *prometheus.CounterVec
	eventDuration    *prometheus.HistogramVec
	eventErrors      *prometheus.CounterVec
	staleEvents      *prometheus.CounterVec
	patchesSent      prometheus.Counter
	activeSessions   prometheus.Gauge
	detachedSessions prometheus.Gauge
	resumesTotal     prometheus.Counter
	wsErrors         *prometheus.CounterVec
}

// NewMetrics registers the server collectors.
func NewMetrics(config MetricsConfig) *Metrics {
	d := DefaultMetricsConfig()
	if config.Namespace == "" {
		config.Namespace = d.Namespace
	}
	if config.Subsystem == "" {
		config.Subsystem = d.Subsystem
	}
	if len(config.Buckets) == 0 {
		config.Buckets = d.Buckets
	}
	if config.Registry == nil {
		config.Registry = d.Registry
	}

	factory := promauto.With(config.Registry)
	counter := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}
	}
	gauge := func(name, help string) prometheus.GaugeOpts {
		return prometheus.GaugeOpts(counter(name, help))
	}

	return &Metrics{
		registry: config.Registry,
		eventsTotal: factory.NewCounterVec(
			counter("events_total", "Total events handled, by event type."),
			[]string{"type"},
		),
		eventDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "event_duration_seconds",
				Help:        "Time to run a handler and send its patches.",
				ConstLabels: config.ConstLabels,
				Buckets:     config.Buckets,
			},
			[]string{"type"},
		),
		eventErrors: factory.NewCounterVec(
			counter("event_errors_total", "Events that failed, by event type and reason."),
			[]string{"type", "reason"},
		),
		staleEvents: factory.NewCounterVec(
			counter("stale_events_total", "Events dropped because their element is gone."),
			[]string{"type"},
		),
		patchesSent: factory.NewCounter(
			counter("patches_sent_total", "Total DOM patches sent to clients."),
		),
		activeSessions: factory.NewGauge(
			gauge("active_sessions", "Connected sessions."),
		),
		detachedSessions: factory.NewGauge(
			gauge("detached_sessions", "Disconnected sessions kept for resume."),
		),
		resumesTotal: factory.NewCounter(
			counter("resumes_total", "Sessions resumed after a reconnect."),
		),
		wsErrors: factory.NewCounterVec(
			counter("websocket_errors_total", "WebSocket read and write failures."),
			[]string{"op"},
		),
	}
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) recordEvent(eventType string, d time.Duration) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(eventType).Inc()
	m.eventDuration.WithLabelValues(eventType).Observe(d.Seconds())
}

func (m *Metrics) recordEventError(eventType, reason string) {
	if m == nil {
		return
	}
	m.eventErrors.WithLabelValues(eventType, reason).Inc()
}

func (m *Metrics) recordStaleEvent(eventType string) {
	if m == nil {
		return
	}
	m.staleEvents.WithLabelValues(eventType).Inc()
}

func (m *Metrics) recordPatches(n int) {
	if m == nil {
		return
	}
	m.patchesSent.Add(float64(n))
}

func (m *Metrics) setSessions(active, detached int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(active))
	m.detachedSessions.Set(float64(detached))
}

func (m *Metrics) recordResume() {
	if m == nil {
		return
	}
	m.resumesTotal.Inc()
}

func (m *Metrics) recordWSError(op string) {
	if m == nil {
		return
	}
	m.wsErrors.WithLabelValues(op).Inc()
}
