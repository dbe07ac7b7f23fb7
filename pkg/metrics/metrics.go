// Package metrics provides Prometheus metrics for the event submission bot.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus collectors the bot emits.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	// Business metrics
	submissionsAccepted prometheus.Counter
	submissionsRejected *prometheus.CounterVec
	eventsAdded         prometheus.Counter
	standingsServed     prometheus.Counter

	// Backing document health
	sheetRoundTrips *prometheus.CounterVec
	sheetLatency    *prometheus.HistogramVec
	sheetErrors     *prometheus.CounterVec

	// Command layer
	commandsHandled *prometheus.CounterVec
	commandLatency  *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the metric namespace prefix.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithRegistry sets a custom registry, mainly for tests.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// New creates a Manager and registers all collectors.
func New(opts ...Option) *Manager {
	m := &Manager{
		namespace: "catbot",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.submissionsAccepted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_accepted_total",
		Help:      "Submissions validated, checked and appended.",
	})
	m.submissionsRejected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_rejected_total",
		Help:      "Submissions rejected, labelled by terminal reason.",
	}, []string{"reason"})
	m.eventsAdded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "events_added_total",
		Help:      "Event definitions appended to the events table.",
	})
	m.standingsServed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "standings_served_total",
		Help:      "Standings computations returned to callers.",
	})
	m.sheetRoundTrips = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "sheet_round_trips_total",
		Help:      "Calls to the backing document service, labelled by operation.",
	}, []string{"op"})
	m.sheetLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "sheet_round_trip_seconds",
		Help:      "Latency of backing document round trips.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	m.sheetErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "sheet_errors_total",
		Help:      "Failed backing document round trips, labelled by operation.",
	}, []string{"op"})
	m.commandsHandled = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "commands_handled_total",
		Help:      "Chat commands handled, labelled by command and outcome.",
	}, []string{"command", "outcome"})
	m.commandLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "command_seconds",
		Help:      "End-to-end latency of chat commands.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})

	return m
}

// IncSubmissionAccepted counts a successful submission.
func (m *Manager) IncSubmissionAccepted() { m.submissionsAccepted.Inc() }

// IncSubmissionRejected counts a rejected submission by reason.
func (m *Manager) IncSubmissionRejected(reason string) {
	m.submissionsRejected.WithLabelValues(reason).Inc()
}

// IncEventAdded counts a registered event.
func (m *Manager) IncEventAdded() { m.eventsAdded.Inc() }

// IncStandingsServed counts a served standings computation.
func (m *Manager) IncStandingsServed() { m.standingsServed.Inc() }

// ObserveSheetCall records one backing document round trip.
func (m *Manager) ObserveSheetCall(op string, elapsed time.Duration, err error) {
	m.sheetRoundTrips.WithLabelValues(op).Inc()
	m.sheetLatency.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		m.sheetErrors.WithLabelValues(op).Inc()
	}
}

// ObserveCommand records one handled chat command.
func (m *Manager) ObserveCommand(command, outcome string, elapsed time.Duration) {
	m.commandsHandled.WithLabelValues(command, outcome).Inc()
	m.commandLatency.WithLabelValues(command).Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler exposing the registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }
