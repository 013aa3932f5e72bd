package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rainview_store_lookups_total",
			Help: "Total station and series lookups against the archive",
		},
		[]string{"op", "status"},
	)

	Resamples = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rainview_resample_total",
			Help: "Total series resampled",
		},
		[]string{"frequency", "summary"},
	)

	Fits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rainview_fit_total",
			Help: "Total trend fits by outcome (ok, insufficient)",
		},
		[]string{"outcome"},
	)

	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rainview_report_duration_seconds",
			Help:    "Report request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	StationsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rainview_ingest_stations_total",
			Help: "Total stations processed by the import step",
		},
		[]string{"status"},
	)
)
