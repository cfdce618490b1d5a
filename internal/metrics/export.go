package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Export outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeDegenerate = "degenerate"
	OutcomeInvalid    = "invalid"
	OutcomeNoMatch    = "no_match"
	OutcomeTooLarge   = "too_large"
	OutcomeFailed     = "failed"
	OutcomeAborted    = "aborted"
)

var (
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Bulk export requests by outcome",
		},
		[]string{"outcome"},
	)

	exportRecords = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_records",
			Help:      "Matching records per completed export",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 6),
		},
	)

	exportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time spent preparing and streaming an export",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(exportsTotal)
	prometheus.MustRegister(exportRecords)
	prometheus.MustRegister(exportDuration)
}

// ObserveExport records one export attempt. records is only observed for
// successful exports.
func ObserveExport(outcome string, records int64, took time.Duration) {
	exportsTotal.WithLabelValues(outcome).Inc()
	exportDuration.WithLabelValues(outcome).Observe(took.Seconds())
	if outcome == OutcomeOK {
		exportRecords.Observe(float64(records))
	}
}
