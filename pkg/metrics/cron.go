package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics tracks scheduled job runs and the reminders they queue.
// A nil *CronJobMetrics is a no-op.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	emitted  *prometheus.CounterVec
}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "assettrack",
			Subsystem: "cron",
			Name:      "job_duration_seconds",
			Help:      "Wall time of one cron job run.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"job"}),
		success: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assettrack",
			Subsystem: "cron",
			Name:      "job_success_total",
			Help:      "Cron job runs that returned no error.",
		}, []string{"job"}),
		failure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assettrack",
			Subsystem: "cron",
			Name:      "job_failure_total",
			Help:      "Cron job runs that returned an error.",
		}, []string{"job"}),
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assettrack",
			Subsystem: "cron",
			Name:      "reminders_emitted_total",
			Help:      "Reminder events queued by cron jobs.",
		}, []string{"job", "event_type"}),
	}
	reg.MustRegister(m.duration, m.success, m.failure, m.emitted)
	return m
}

func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(job)).Inc()
}

func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// AddEmitted counts reminders queued in one run.
func (c *CronJobMetrics) AddEmitted(job, eventType string, n int) {
	if c == nil || c.emitted == nil || n <= 0 {
		return
	}
	c.emitted.WithLabelValues(normalizeLabel(job), normalizeLabel(eventType)).Add(float64(n))
}

// normalizeLabel keeps empty label values from collapsing into one series
// with real ones.
func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
