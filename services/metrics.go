package services

import "github.com/prometheus/client_golang/prometheus"

var (
	pipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celluiq_pipeline_runs_total",
			Help: "Blood work pipeline runs by outcome.",
		},
		[]string{"outcome"},
	)
	markersPersistedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celluiq_markers_persisted_total",
			Help: "Total number of classified markers written to the database.",
		},
		[]string{"source"},
	)
	unmatchedMarkersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "celluiq_unmatched_markers_total",
			Help: "Extracted markers without a reference catalog entry.",
		},
	)
	unverifiedUnitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "celluiq_unverified_units_total",
			Help: "Markers whose unit differs from the reference unit without a known conversion.",
		},
	)
	invalidValuesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "celluiq_invalid_marker_values_total",
			Help: "Extracted markers skipped because the value was missing or not numeric.",
		},
	)
	extractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "celluiq_extraction_duration_seconds",
			Help:    "Duration of calls to the extraction service.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)
)

func init() {
	prometheus.MustRegister(pipelineRunsTotal, markersPersistedTotal, unmatchedMarkersTotal, unverifiedUnitsTotal, invalidValuesTotal, extractionDuration)
}
