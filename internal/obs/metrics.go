package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments shared by the worker, reaper,
// and HTTP layer. A single instance is created per process and passed
// to whichever component needs it; nothing here is global state beyond
// the default registry client_golang itself maintains.
type Metrics struct {
	QueueDepth      prometheus.Gauge
	JobsSubmitted   prometheus.Counter
	JobAttempts     *prometheus.CounterVec // labeled by job_type
	JobOutcomes     *prometheus.CounterVec // labeled by job_type, outcome
	JobsReaped      *prometheus.CounterVec // labeled by outcome
	HandlerDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "atlas",
			Name:      "queue_depth",
			Help:      "Number of job ids currently waiting in the work queue.",
		}),
		JobsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "jobs_submitted_total",
			Help:      "Total jobs accepted via POST /jobs.",
		}),
		JobAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "job_attempts_total",
			Help:      "Total job execution attempts started, by job type.",
		}, []string{"job_type"}),
		JobOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "job_outcomes_total",
			Help:      "Total job attempts finalised, by job type and outcome.",
		}, []string{"job_type", "outcome"}),
		JobsReaped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "jobs_reaped_total",
			Help:      "Total jobs reclaimed by the reaper, by outcome.",
		}, []string{"outcome"}),
		HandlerDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "atlas",
			Name:      "handler_duration_seconds",
			Help:      "Handler execution duration in seconds, by job type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job_type"}),
	}
}
