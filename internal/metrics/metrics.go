// Package metrics holds Prometheus instruments for the intake pipeline.  All
// collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for SubmissionsTotal.
const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Application submissions by final outcome.",
		}, []string{"outcome"})

	FieldErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_field_errors_total",
			Help: "Field-level validation problems by form section.",
		}, []string{"section"})

	StorageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_storage_failures_total",
			Help: "Upload persistence failures by file kind.",
		}, []string{"kind"})

	SubmissionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "intake_submission_duration_seconds",
			Help:    "Wall time of one full validation pass, uploads included.",
			Buckets: prometheus.DefBuckets,
		})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		FieldErrorsTotal,
		StorageFailuresTotal,
		SubmissionDuration,
	)
}
