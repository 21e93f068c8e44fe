package pipeline

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	PhaseFit       = "fit"
	PhaseTransform = "transform"
)

// Metrics holds the Prometheus collectors for pipeline step runs, labeled with pipeline id,
// step name and phase ("fit" or "transform").
type Metrics struct {
	stepDuration *prometheus.HistogramVec
	rows         *prometheus.CounterVec
	failures     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. Collectors already registered
// with the same name, e.g. by another pipeline, are reused.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"pipeline", "step", "phase"}
	m := &Metrics{
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "step_duration_seconds",
			Help:      "Time spent fitting or transforming with a pipeline step.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, labels),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "step_rows_total",
			Help:      "Number of frame rows processed by a pipeline step.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "step_failures_total",
			Help:      "Number of failed pipeline step runs.",
		}, labels),
	}

	var err error
	if m.stepDuration, err = register(reg, m.stepDuration); err != nil {
		return nil, err
	}
	if m.rows, err = register(reg, m.rows); err != nil {
		return nil, err
	}
	if m.failures, err = register(reg, m.failures); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(pipeline, step, phase string, seconds float64, rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failures.WithLabelValues(pipeline, step, phase).Inc()
		return
	}
	m.stepDuration.WithLabelValues(pipeline, step, phase).Observe(seconds)
	m.rows.WithLabelValues(pipeline, step, phase).Add(float64(rows))
}
