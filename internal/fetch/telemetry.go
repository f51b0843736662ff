package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "fetch",
		Name:      "requests_total",
		Help:      "Period fetches by data source outcome.",
	}, []string{"period", "source"})

	fetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "fetch",
		Name:      "live_errors_total",
		Help:      "Classified live-fetch failures.",
	}, []string{"kind"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pulse",
		Subsystem: "fetch",
		Name:      "live_duration_seconds",
		Help:      "Live query latency.",
		Buckets:   prometheus.DefBuckets,
	})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "fetch",
		Name:      "result_cache_hits_total",
		Help:      "Short-lived result cache hits.",
	})
)
