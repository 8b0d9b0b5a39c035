// Package telemetry exposes prediction and HTTP metrics to prometheus.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/YuminosukeSato/churnguard/internal/prediction"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "churnguard"

var _ prediction.Recorder = (*Metrics)(nil)

// Metrics owns a private registry; nothing is registered globally.
type Metrics struct {
	registry *prometheus.Registry

	predictions   *prometheus.CounterVec
	failures      *prometheus.CounterVec
	substitutions *prometheus.CounterVec
	latency       prometheus.Histogram
	modelInfo     *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge
}

// New creates and registers all collectors, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Served predictions by label.",
		}, []string{"label"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_failures_total",
			Help:      "Failed predictions by reason.",
		}, []string{"reason"}),
		substitutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_substitutions_total",
			Help:      "Unseen categories replaced by the column fallback.",
		}, []string{"column"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time from receiving a record to returning a result.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		modelInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_info",
			Help:      "Loaded model; the value is always 1.",
		}, []string{"model_type", "version"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Currently active HTTP requests.",
		}),
	}
	m.registry.MustRegister(
		m.predictions, m.failures, m.substitutions, m.latency, m.modelInfo,
		m.httpRequests, m.httpDuration, m.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObservePrediction implements prediction.Recorder.
func (m *Metrics) ObservePrediction(label prediction.Label, elapsed time.Duration) {
	m.predictions.WithLabelValues(string(label)).Inc()
	m.latency.Observe(elapsed.Seconds())
}

// ObserveFailure implements prediction.Recorder.
func (m *Metrics) ObserveFailure(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}

// ObserveSubstitution implements prediction.Recorder.
func (m *Metrics) ObserveSubstitution(column string) {
	m.substitutions.WithLabelValues(column).Inc()
}

// SetModelInfo publishes the loaded model type and version.
func (m *Metrics) SetModelInfo(modelType, version string) {
	m.modelInfo.Reset()
	m.modelInfo.WithLabelValues(modelType, version).Set(1)
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware records request count, latency and in-flight requests.
// Unmatched routes are grouped under "unmatched".
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.inFlight.Inc()
		start := time.Now()
		defer m.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
