package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EnvironmentsTotal tracks how many persisted environments are in
	// each lifecycle state.
	EnvironmentsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "deployer_environments_total",
			Help: "Total number of environments by lifecycle state",
		},
		[]string{"state"},
	)

	// HandlerDuration tracks how long each handler invocation takes.
	HandlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deployer_handler_duration_seconds",
			Help:    "Time taken to run a handler invocation in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"handler"},
	)

	// HandlerFailuresTotal tracks handler failures by error kind.
	HandlerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deployer_handler_failures_total",
			Help: "Total number of handler invocations that ended in Failed, by handler and error kind",
		},
		[]string{"handler", "kind"},
	)

	// StepDuration tracks individual workflow step durations within a
	// handler (e.g. "render", "driver-provision", "poll ssh reachability").
	StepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deployer_step_duration_seconds",
			Help:    "Time taken by a single workflow step in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "step"},
	)

	// DriverInvocationsTotal tracks subprocess driver invocations by
	// tool and outcome.
	DriverInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deployer_driver_invocations_total",
			Help: "Total number of external driver invocations by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	// LockWaitDuration tracks how long handlers wait to acquire the
	// per-environment advisory lock.
	LockWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deployer_lock_wait_seconds",
			Help:    "Time spent waiting to acquire an environment's advisory lock",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(EnvironmentsTotal)
	prometheus.MustRegister(HandlerDuration)
	prometheus.MustRegister(HandlerFailuresTotal)
	prometheus.MustRegister(StepDuration)
	prometheus.MustRegister(DriverInvocationsTotal)
	prometheus.MustRegister(LockWaitDuration)
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
