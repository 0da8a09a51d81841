package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one server instance. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	FileOps *prometheus.CounterVec

	WatchersActive   prometheus.Gauge
	WatchersCreated  prometheus.Counter
	WatchEvents      *prometheus.CounterVec
	WatchStreamsOpen *prometheus.GaugeVec
}

// New creates a metrics collector backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xide_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xide_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		FileOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xide_file_operations_total",
				Help: "File operations by operation and outcome",
			},
			[]string{"op", "result"},
		),
		WatchersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "xide_watchers_active",
				Help: "Number of live filesystem watchers",
			},
		),
		WatchersCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "xide_watchers_created_total",
				Help: "Total number of filesystem watchers created",
			},
		),
		WatchEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xide_watch_events_total",
				Help: "Change events fanned out to subscribers, by outcome",
			},
			[]string{"outcome"},
		),
		WatchStreamsOpen: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "xide_watch_streams_open",
				Help: "Open change-event streams by transport",
			},
			[]string{"transport"},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// FileOp records the outcome of one file operation.
func (m *Metrics) FileOp(op string, ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.FileOps.WithLabelValues(op, result).Inc()
}

// WatcherOpened records a new filesystem watcher.
func (m *Metrics) WatcherOpened() {
	if m == nil {
		return
	}
	m.WatchersCreated.Inc()
	m.WatchersActive.Inc()
}

// WatcherClosed records a destroyed filesystem watcher.
func (m *Metrics) WatcherClosed() {
	if m == nil {
		return
	}
	m.WatchersActive.Dec()
}

// EventDelivered records one event handed to a subscriber.
func (m *Metrics) EventDelivered() {
	if m == nil {
		return
	}
	m.WatchEvents.WithLabelValues("delivered").Inc()
}

// EventDropped records one event dropped because a subscriber's buffer was full.
func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.WatchEvents.WithLabelValues("dropped").Inc()
}

// StreamOpened and StreamClosed track open change-event streams.
func (m *Metrics) StreamOpened(transport string) {
	if m == nil {
		return
	}
	m.WatchStreamsOpen.WithLabelValues(transport).Inc()
}

func (m *Metrics) StreamClosed(transport string) {
	if m == nil {
		return
	}
	m.WatchStreamsOpen.WithLabelValues(transport).Dec()
}
