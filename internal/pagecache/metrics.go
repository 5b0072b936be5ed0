package pagecache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_page_cache_lookups_total",
			Help: "Page cache lookups by page and result",
		},
		[]string{"page", "result"},
	)

	regenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_page_regenerations_total",
			Help: "Page generations by page, trigger and outcome",
		},
		[]string{"page", "trigger", "outcome"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_page_generation_duration_seconds",
			Help:    "Time spent generating page props",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"page"},
	)
)
