package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration covers every routed request, labelled by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	AuditEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Total number of audit log rows written",
		},
		[]string{"entity", "action"},
	)

	AuditFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_failures_total",
			Help: "Audit log writes that failed after the audited mutation was stored",
		},
		[]string{"entity", "action"},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementAuditEntry(entity, action string) {
	AuditEntriesTotal.WithLabelValues(entity, action).Inc()
}

func IncrementAuditFailure(entity, action string) {
	AuditFailuresTotal.WithLabelValues(entity, action).Inc()
}
