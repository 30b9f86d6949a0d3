package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	SagaTotal        *prometheus.CounterVec
	SagaDuration     prometheus.Histogram
	Compensations    *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPRequestTimes *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SagaTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_saga_total",
			Help: "Checkout saga runs by terminal state.",
		}, []string{"state"}),
		SagaDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_saga_duration_seconds",
			Help:    "Checkout saga latency.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		Compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_compensations_total",
			Help: "Stock releases issued by the saga, by result.",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		HTTPRequestTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.SagaTotal,
		m.SagaDuration,
		m.Compensations,
		m.HTTPRequests,
		m.HTTPRequestTimes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveCheckout(state domain.CheckoutState, elapsed time.Duration) {
	m.SagaTotal.WithLabelValues(string(state)).Inc()
	m.SagaDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCompensation(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.Compensations.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPRequestTimes.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var _ port.CheckoutMetrics = (*Metrics)(nil)
