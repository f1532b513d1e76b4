// Package metrics holds the Prometheus collectors for the service.
// Everything registers on a private registry so tests and embedders
// never collide with the global default.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bitsnaps/open-creator/internal/interpreter"
)

// Collector holds all Prometheus metrics.
type Collector struct {
	Registry *prometheus.Registry

	// Execution metrics.
	ExecutionsTotal       *prometheus.CounterVec
	ExecutionDuration     *prometheus.HistogramVec
	PolicyRejectionsTotal prometheus.Counter
	OutputBytes           prometheus.Histogram

	// Session metrics.
	ActiveSessions prometheus.GaugeFunc

	// HTTP gateway metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector with all metrics registered on a
// private registry. sessionCount is sampled at scrape time; pass nil
// when no session manager is wired.
func NewCollector(sessionCount func() int) *Collector {
	reg := prometheus.NewRegistry()

	if sessionCount == nil {
		sessionCount = func() int { return 0 }
	}

	c := &Collector{
		Registry: reg,

		ExecutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creator",
			Subsystem: "interpreter",
			Name:      "executions_total",
			Help:      "Total executions by result status and fault kind.",
		}, []string{"status", "fault"}),

		ExecutionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "creator",
			Subsystem: "interpreter",
			Name:      "execution_duration_seconds",
			Help:      "Execution wall-clock duration in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 1200},
		}, []string{"status"}),

		PolicyRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "creator",
			Subsystem: "interpreter",
			Name:      "policy_rejections_total",
			Help:      "Total submissions rejected by the static policy check.",
		}),

		OutputBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "creator",
			Subsystem: "interpreter",
			Name:      "output_bytes",
			Help:      "Captured output size per execution in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),

		ActiveSessions: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "creator",
			Name:      "active_sessions",
			Help:      "Number of live interpreter sessions.",
		}, func() float64 { return float64(sessionCount()) }),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creator",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		}, []string{"method", "path", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "creator",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		c.ExecutionsTotal,
		c.ExecutionDuration,
		c.PolicyRejectionsTotal,
		c.OutputBytes,
		c.ActiveSessions,
		c.HTTPRequestsTotal,
		c.HTTPRequestDuration,
	)

	return c
}

// ObserveExecution records one finished execution.
func (c *Collector) ObserveExecution(result interpreter.Result) {
	c.ExecutionsTotal.WithLabelValues(result.Status, string(result.Fault)).Inc()
	c.ExecutionDuration.WithLabelValues(result.Status).Observe(result.Duration.Seconds())
	c.OutputBytes.Observe(float64(len(result.Stdout)))
	if result.Fault == interpreter.FaultPolicy {
		c.PolicyRejectionsTotal.Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}
