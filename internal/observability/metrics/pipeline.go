package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	runTotal    *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	runInFlight prometheus.Gauge
	stepTotal   *prometheus.CounterVec
}

func NewPipelineMetrics(registry *prometheus.Registry, service string) *PipelineMetrics {
	runTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "audioscribe",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total workflow runs by status.",
		},
		[]string{"service", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "audioscribe",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Workflow run duration in seconds by status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"service", "status"},
	)
	runInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "audioscribe",
			Subsystem: "pipeline",
			Name:      "runs_in_flight",
			Help:      "Number of workflow runs in progress.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	stepTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "audioscribe",
			Subsystem: "pipeline",
			Name:      "steps_total",
			Help:      "Total completed pipeline steps.",
		},
		[]string{"service", "step"},
	)

	registry.MustRegister(runTotal, runDuration, runInFlight, stepTotal)

	return &PipelineMetrics{
		registry:    registry,
		runTotal:    runTotal,
		runDuration: runDuration,
		runInFlight: runInFlight,
		stepTotal:   stepTotal,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartRun() {
	m.runInFlight.Inc()
}

func (m *PipelineMetrics) FinishRun(service string, duration time.Duration, steps []string, success bool) {
	m.runInFlight.Dec()

	status := "success"
	if !success {
		status = "error"
	}

	m.runTotal.WithLabelValues(service, status).Inc()
	m.runDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	for _, step := range steps {
		m.stepTotal.WithLabelValues(service, step).Inc()
	}
}
