package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "plantracker"

// Record kinds for RecordCreated.
const (
	KindProject = "project"
	KindPlant   = "plant"
	KindVisitor = "visitor"
)

// Metrics holds the service's Prometheus collectors. All methods are safe on a
// nil receiver so callers and tests can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	recordsCreated *prometheus.CounterVec
	recordsDeleted *prometheus.CounterVec
	accessDenied   *prometheus.CounterVec
	logins         *prometheus.CounterVec
	exports        *prometheus.CounterVec
	exportRows     prometheus.Histogram
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them, plus the Go runtime
// and process collectors, on a fresh registry.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.recordsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_created_total",
		Help:      "Records created, by kind.",
	}, []string{"kind"}) // kind: project, plant, visitor
	m.recordsDeleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_deleted_total",
		Help:      "Records deleted, by kind.",
	}, []string{"kind"})
	m.accessDenied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Scoped operations refused because the actor is neither owner nor collaborator.",
	}, []string{"operation"})
	m.logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	}, []string{"result"}) // result: success, failure
	m.exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Visitor exports by format.",
	}, []string{"format"})
	m.exportRows = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_rows",
		Help:      "Rows per visitor export.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8), // 1 to ~16k
	})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status_code"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.recordsCreated, m.recordsDeleted, m.accessDenied,
		m.logins, m.exports, m.exportRows, m.httpRequests, m.httpDuration,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordCreated(kind string) {
	if m == nil {
		return
	}
	m.recordsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordDeleted(kind string) {
	if m == nil {
		return
	}
	m.recordsDeleted.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordDenied(operation string) {
	if m == nil {
		return
	}
	m.accessDenied.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordLogin(ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordExport(format string, rows int) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
	m.exportRows.Observe(float64(rows))
}

// GinMiddleware records request count and latency per matched route, so path
// parameters do not explode label cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
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
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
