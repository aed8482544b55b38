package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warp/workload-engine/factory"
)

// Metrics holds the Prometheus collectors of the server on a private
// registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	calculationTotal    *prometheus.CounterVec
	snapshotTotal       prometheus.Counter
}

var _ factory.Observer = (*Metrics)(nil)

// NewMetrics registers the collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	calculationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workload_calculation_duration_seconds",
		Help:    "Duration of single employment calculations",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
	}, []string{"mode"})

	calculationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workload_calculations_total",
		Help: "Total number of employment calculations",
	}, []string{"mode", "result"})

	snapshotTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "workload_snapshots_total",
		Help: "Total number of stored workload snapshots",
	})

	registry.MustRegister(requestDuration, requestTotal, calculationDuration, calculationTotal, snapshotTotal)

	return &Metrics{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		calculationDuration: calculationDuration,
		calculationTotal:    calculationTotal,
		snapshotTotal:       snapshotTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveCalculation implements factory.Observer.
func (m *Metrics) ObserveCalculation(mode string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.calculationDuration.WithLabelValues(mode).Observe(d.Seconds())
	m.calculationTotal.WithLabelValues(mode, result).Inc()
}

func (m *Metrics) SnapshotSaved() {
	if m == nil {
		return
	}
	m.snapshotTotal.Inc()
}
