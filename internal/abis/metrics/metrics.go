package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for ABIS request processing.
type Metrics struct {
	// Operations by operation and return value ("1" success, "2" failure)
	Operations *prometheus.CounterVec

	// Failure reasons by reason name
	Failures *prometheus.CounterVec

	// Unexpected internal errors by operation
	InternalErrors *prometheus.CounterVec

	ProcessLatency *prometheus.HistogramVec
}

// New registers ABIS metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mockabis_operations_total",
			Help: "ABIS operations processed by operation and return value",
		}, []string{"operation", "return_value"}),

		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mockabis_failures_total",
			Help: "Failed ABIS operations by failure reason",
		}, []string{"reason"}),

		InternalErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mockabis_internal_errors_total",
			Help: "ABIS operations aborted by an unexpected internal error",
		}, []string{"operation"}),

		ProcessLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mockabis_process_duration_seconds",
			Help:    "Synchronous processing time of ABIS operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncOperation(operation, returnValue string) {
	if m != nil {
		m.Operations.WithLabelValues(operation, returnValue).Inc()
	}
}

func (m *Metrics) IncFailure(reason string) {
	if m != nil {
		m.Failures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncInternalError(operation string) {
	if m != nil {
		m.InternalErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) ObserveProcessLatency(operation string, d time.Duration) {
	if m != nil {
		m.ProcessLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}
