package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Intake submissions partitioned by outcome: accepted, missing_fields, invalid_field, error
	referralRequestsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "referral_hub",
			Name:      "referral_requests_submitted_total",
			Help:      "Referral request submissions by outcome",
		},
		[]string{"outcome"},
	)

	// Catalog loads partitioned by reader and result
	catalogLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "referral_hub",
			Name:      "catalog_loads_total",
			Help:      "Catalog loads by source and result",
		},
		[]string{"source", "result"},
	)

	catalogLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "referral_hub",
			Name:      "catalog_load_duration_seconds",
			Help:      "Time spent loading the catalog",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
