package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit layer and the lifecycle jobs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	AuditChanges     *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	RecordFailures   *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	NotificationSent *prometheus.CounterVec
}

// New creates a Metrics instance registered on reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuditChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registro_audit_changes_total",
			Help: "Pending changes stamped by the audit interceptor, by change kind",
		}, []string{"kind"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registro_lifecycle_transitions_total",
			Help: "Contract status transitions committed by lifecycle jobs",
		}, []string{"job", "to"}),
		RecordFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registro_lifecycle_failures_total",
			Help: "Contracts skipped by a lifecycle job because of an error",
		}, []string{"job"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registro_lifecycle_run_duration_seconds",
			Help:    "Duration of lifecycle job runs",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),
		NotificationSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registro_notifications_total",
			Help: "Notification emails by operation code and outcome",
		}, []string{"code", "outcome"}),
	}
}

// IncAuditChange records one stamped change of the given kind.
func (m *Metrics) IncAuditChange(kind string) {
	if m == nil {
		return
	}
	m.AuditChanges.WithLabelValues(kind).Inc()
}

// IncTransition records a committed transition to status to.
func (m *Metrics) IncTransition(job, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(job, to).Inc()
}

// IncFailure records a contract skipped by job.
func (m *Metrics) IncFailure(job string) {
	if m == nil {
		return
	}
	m.RecordFailures.WithLabelValues(job).Inc()
}

// ObserveRun records the duration of a job run.
// Call with time.Now() at the start of the run.
func (m *Metrics) ObserveRun(job string, start time.Time) {
	if m == nil {
		return
	}
	m.RunDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}

// IncNotification records one notification attempt.
func (m *Metrics) IncNotification(code, outcome string) {
	if m == nil {
		return
	}
	m.NotificationSent.WithLabelValues(code, outcome).Inc()
}
