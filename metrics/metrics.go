package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records HTTP traffic and order creation for the backend.
// A nil *Metrics, or one built without a registerer, records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	ordersCreated *prometheus.CounterVec
	orderValue    prometheus.Counter
	replays       prometheus.Counter
}

// New registers the dashboard metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests handled, by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, by initial status.",
	}, []string{"status"})
	orderValue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_value_sek_total",
		Help: "Sum of authoritative order totals in SEK.",
	})
	replays := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_idempotent_replays_total",
		Help: "Order creations answered from the idempotency store.",
	})
	reg.MustRegister(requests, duration, ordersCreated, orderValue, replays)
	return &Metrics{
		requests:      requests,
		duration:      duration,
		ordersCreated: ordersCreated,
		orderValue:    orderValue,
		replays:       replays,
	}
}

// ObserveRequest records one handled request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// OrderCreated records a created order and its total
func (m *Metrics) OrderCreated(status string, total float64) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(status)).Inc()
	if total > 0 {
		m.orderValue.Add(total)
	}
}

// IdempotentReplay records a create answered from a stored response
func (m *Metrics) IdempotentReplay() {
	if m == nil || m.replays == nil {
		return
	}
	m.replays.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
