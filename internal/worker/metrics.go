package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records dispatch outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	busy     prometheus.Gauge
}

// NewMetrics builds dispatch metrics and registers them with reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poolcalc",
			Subsystem: "worker",
			Name:      "requests_total",
			Help:      "Requests handled by calculation workers, by tag and outcome.",
		}, []string{"tag", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "poolcalc",
			Subsystem: "worker",
			Name:      "handle_seconds",
			Help:      "Time spent inside a calculation handler.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"tag"}),
		busy: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "poolcalc",
			Subsystem: "worker",
			Name:      "busy",
			Help:      "Workers currently processing a request.",
		}),
	}
}

func (m *Metrics) start() {
	if m == nil {
		return
	}
	m.busy.Inc()
}

func (m *Metrics) finish(tag Tag, seconds float64, err error) {
	if m == nil {
		return
	}
	m.busy.Dec()
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.requests.WithLabelValues(string(tag), outcome).Inc()
	m.duration.WithLabelValues(string(tag)).Observe(seconds)
}
