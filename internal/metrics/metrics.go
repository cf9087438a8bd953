// Package metrics holds the prometheus collectors of the processing
// pipeline. Collectors register with the default registry on import.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	geometryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagealign_geometry_errors_total",
			Help: "Total number of geometry operations that could not produce valid output",
		},
		[]string{"op"}, // op: repair, union, derive, clip
	)

	assignmentWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagealign_assignment_warnings_total",
			Help: "Total number of lines wrapped in a synthesized region",
		},
	)

	oracleMismatchTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagealign_oracle_mismatch_total",
			Help: "Total number of lines skipped because recognition output did not match",
		},
	)

	pagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagealign_pages_processed_total",
			Help: "Total number of processed pages",
		},
		[]string{"status"}, // status: success, error
	)

	pageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pagealign_page_processing_duration_seconds",
			Help:    "Page processing duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 25},
		},
	)
)

// RecordGeometryError counts a failed geometry operation.
func RecordGeometryError(op string) {
	geometryErrorsTotal.WithLabelValues(op).Inc()
}

// RecordAssignmentWarning counts a line that no region contained.
func RecordAssignmentWarning() {
	assignmentWarningsTotal.Inc()
}

// RecordOracleMismatch counts a line skipped after a recognition mismatch.
func RecordOracleMismatch() {
	oracleMismatchTotal.Inc()
}

// RecordPage counts a processed page and its duration.
func RecordPage(err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	pagesProcessedTotal.WithLabelValues(status).Inc()
	pageProcessingDuration.Observe(duration.Seconds())
}
