package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for deferred delivery.
type Metrics struct {
	Scheduled *prometheus.CounterVec
	Delivered *prometheus.CounterVec
	// Dropped by reason: "encoding", "publish", "shutdown"
	Dropped  *prometheus.CounterVec
	Pending  prometheus.Gauge
	Lateness prometheus.Histogram
}

// New registers delivery metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Scheduled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mockabis_delivery_scheduled_total",
			Help: "Deferred deliveries scheduled by message type",
		}, []string{"message_type"}),

		Delivered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mockabis_delivery_published_total",
			Help: "Deferred deliveries published to the outbound channel by message type",
		}, []string{"message_type"}),

		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mockabis_delivery_dropped_total",
			Help: "Deferred deliveries dropped by reason",
		}, []string{"reason"}),

		Pending: f.NewGauge(prometheus.GaugeOpts{
			Name: "mockabis_delivery_pending",
			Help: "Deliveries waiting for their deadline",
		}),

		Lateness: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mockabis_delivery_lateness_seconds",
			Help:    "How long after its deadline a delivery was handed to the publisher",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

func (m *Metrics) IncScheduled(messageType string) {
	if m != nil {
		m.Scheduled.WithLabelValues(messageType).Inc()
	}
}

func (m *Metrics) IncDelivered(messageType string) {
	if m != nil {
		m.Delivered.WithLabelValues(messageType).Inc()
	}
}

func (m *Metrics) IncDropped(reason string) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) SetPending(n int) {
	if m != nil {
		m.Pending.Set(float64(n))
	}
}

func (m *Metrics) ObserveLateness(d time.Duration) {
	if m != nil {
		m.Lateness.Observe(d.Seconds())
	}
}
