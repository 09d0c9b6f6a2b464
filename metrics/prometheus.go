package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded on requests_total.
const (
	OutcomeSuccess       = "success"
	OutcomeTransport     = "transport"
	OutcomeTimeout       = "timeout"
	OutcomeHTTPStatus    = "http_status"
	OutcomeSerialization = "serialization"
	OutcomeInvalid       = "invalid"
)

// Manager owns the client's Prometheus collectors.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	statusCodes     *prometheus.CounterVec
	inFlight        prometheus.Gauge
}

// NewManager creates a metrics manager. Collectors are registered on a private
// registry unless WithPrometheusRegistry is given. Managers sharing a registry share
// its collectors, so several clients can report to one registry.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		namespace:        "userapi",
		subsystem:        "client",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	if err := m.initializeMetrics(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) initializeMetrics() error {
	var err error

	m.requests, err = register(m.registry, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "requests_total",
		Help:      "Total number of dispatched requests by method, route and outcome",
	}, []string{"method", "route", "outcome"}))
	if err != nil {
		return err
	}

	m.requestDuration, err = register(m.registry, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "request_duration_seconds",
		Help:      "Round trip latency of dispatched requests",
		Buckets:   m.histogramBuckets,
	}, []string{"method", "route"}))
	if err != nil {
		return err
	}

	m.statusCodes, err = register(m.registry, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "responses_total",
		Help:      "Responses received by HTTP status code",
	}, []string{"method", "route", "code"}))
	if err != nil {
		return err
	}

	m.inFlight, err = register(m.registry, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "requests_in_flight",
		Help:      "Requests currently awaiting a response",
	}))
	return err
}

// register adds collector to registry. When an identical collector is already
// registered the existing one is returned instead.
func register[T prometheus.Collector](registry prometheus.Registerer, collector T) (T, error) {
	err := registry.Register(collector)
	if err == nil {
		return collector, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("registering metrics collector: %w", err)
}

// Registry returns the Registerer the collectors live on.
func (m *Manager) Registry() prometheus.Registerer {
	return m.registry
}

// Enabled reports whether observations are recorded.
func (m *Manager) Enabled() bool {
	return m != nil && m.enabled
}

// RequestStarted marks a request as in flight.
func (m *Manager) RequestStarted() {
	if !m.Enabled() {
		return
	}
	m.inFlight.Inc()
}

// RequestFinished releases the in-flight mark set by RequestStarted.
func (m *Manager) RequestFinished() {
	if !m.Enabled() {
		return
	}
	m.inFlight.Dec()
}

// ObserveRequest records the outcome of a finished request. statusCode is 0 when
// no response was received.
func (m *Manager) ObserveRequest(method, route, outcome string, statusCode int, duration time.Duration) {
	if !m.Enabled() {
		return
	}
	m.requests.WithLabelValues(method, route, outcome).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	if statusCode > 0 {
		m.statusCodes.WithLabelValues(method, route, statusCodeLabel(statusCode)).Inc()
	}
}

// ObserveRejected records a request refused before reaching the network.
func (m *Manager) ObserveRejected(method, route string) {
	if !m.Enabled() {
		return
	}
	m.requests.WithLabelValues(method, route, OutcomeInvalid).Inc()
}

func statusCodeLabel(code int) string {
	if code < 100 || code > 999 {
		return "other"
	}
	return strconv.Itoa(code)
}
