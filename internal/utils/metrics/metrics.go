package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Order metrics
	OrderTransitionsTotal *prometheus.CounterVec
	OrdersExpiredTotal    prometheus.Counter

	// Payment metrics
	SettlementsTotal       *prometheus.CounterVec
	GatewayRequestsTotal   *prometheus.CounterVec
	GatewayRequestDuration *prometheus.HistogramVec
	GatewayBreakerState    *prometheus.GaugeVec
}

// New creates a new Metrics instance registered on the default registry.
func New(namespace string) *Metrics {
	return NewWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new Metrics instance registered on reg.
func NewWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "fastorder"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Order metrics
		OrderTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "transitions_total",
				Help:      "Total number of committed order status transitions",
			},
			[]string{"from", "to"},
		),
		OrdersExpiredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "expired_total",
				Help:      "Total number of orders cancelled for payment timeout",
			},
		),

		// Payment metrics
		SettlementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "settlements_total",
				Help:      "Total number of settlement attempts",
			},
			[]string{"method", "result"}, // result: settled, replayed, rejected
		),
		GatewayRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total number of payment gateway calls",
			},
			[]string{"gateway", "operation", "result"},
		),
		GatewayRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Payment gateway call duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"gateway", "operation"},
		),
		GatewayBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"gateway"},
		),
	}
}

// --- Convenience methods ---

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := statusCodeToString(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOrderTransition records a committed status change.
// An empty from marks order creation.
func (m *Metrics) RecordOrderTransition(from, to string) {
	if from == "" {
		from = "none"
	}
	m.OrderTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordOrdersExpired adds n expired orders.
func (m *Metrics) RecordOrdersExpired(n int) {
	if n > 0 {
		m.OrdersExpiredTotal.Add(float64(n))
	}
}

// RecordSettlement records a settlement attempt.
func (m *Metrics) RecordSettlement(method, result string) {
	m.SettlementsTotal.WithLabelValues(method, result).Inc()
}

// RecordGatewayCall records a payment gateway call.
func (m *Metrics) RecordGatewayCall(gateway, operation, result string, duration time.Duration) {
	m.GatewayRequestsTotal.WithLabelValues(gateway, operation, result).Inc()
	m.GatewayRequestDuration.WithLabelValues(gateway, operation).Observe(duration.Seconds())
}

// SetGatewayBreakerState sets the circuit breaker state of a gateway.
func (m *Metrics) SetGatewayBreakerState(gateway string, state int) {
	m.GatewayBreakerState.WithLabelValues(gateway).Set(float64(state))
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
