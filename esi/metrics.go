package esi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	gometrics "github.com/rcrowley/go-metrics"
)

// Metrics records include outcomes. Stream.Options.Metrics defaults to
// noopMetrics; NewPrometheusMetrics and NewCodahaleMetrics adapt the two
// backends the teacher's own metrics package supports side by side.
type Metrics interface {
	IncludeDuration(time.Duration)
	IncludeError(kind string)
	ExpressionError()
}

type noopMetrics struct{}

func (noopMetrics) IncludeDuration(time.Duration) {}
func (noopMetrics) IncludeError(string)            {}
func (noopMetrics) ExpressionError()               {}

// PrometheusMetrics records include metrics on a prometheus.Registerer,
// mirroring metrics/prometheus.go's metric-per-concern layout.
type PrometheusMetrics struct {
	duration    prometheus.Histogram
	errors      *prometheus.CounterVec
	exprErrors  prometheus.Counter
}

// NewPrometheusMetrics registers and returns a PrometheusMetrics bound to
// reg (use prometheus.DefaultRegisterer for the global registry).
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "esi",
			Name:      "include_duration_seconds",
			Help:      "Duration of esi:include fetches.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esi",
			Name:      "include_errors_total",
			Help:      "Count of esi:include failures by kind.",
		}, []string{"kind"}),
		exprErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "esi",
			Name:      "expression_errors_total",
			Help:      "Count of malformed esi:when test expressions.",
		}),
	}
	reg.MustRegister(m.duration, m.errors, m.exprErrors)
	return m
}

func (m *PrometheusMetrics) IncludeDuration(d time.Duration) { m.duration.Observe(d.Seconds()) }
func (m *PrometheusMetrics) IncludeError(kind string)        { m.errors.WithLabelValues(kind).Inc() }
func (m *PrometheusMetrics) ExpressionError()                { m.exprErrors.Inc() }

// CodahaleMetrics records the same include metrics against a
// go-metrics.Registry, the alternative backend metrics/codahale.go
// exposes alongside Prometheus.
type CodahaleMetrics struct {
	duration   gometrics.Timer
	errors     gometrics.Registry
	exprErrors gometrics.Counter
}

// NewCodahaleMetrics registers and returns a CodahaleMetrics bound to reg.
func NewCodahaleMetrics(reg gometrics.Registry) *CodahaleMetrics {
	return &CodahaleMetrics{
		duration:   gometrics.GetOrRegisterTimer("esi.include.duration", reg),
		errors:     reg,
		exprErrors: gometrics.GetOrRegisterCounter("esi.expression.errors", reg),
	}
}

func (m *CodahaleMetrics) IncludeDuration(d time.Duration) { m.duration.Update(d) }
func (m *CodahaleMetrics) IncludeError(kind string) {
	gometrics.GetOrRegisterCounter("esi.include.errors."+kind, m.errors).Inc(1)
}
func (m *CodahaleMetrics) ExpressionError() { m.exprErrors.Inc(1) }
