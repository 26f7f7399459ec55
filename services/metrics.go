package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	engineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "facetsearch",
		Name:      "engine_request_duration_seconds",
		Help:      "Latency of index engine requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	searchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facetsearch",
		Name:      "search_requests_total",
		Help:      "Search requests by collection, mode and outcome.",
	}, []string{"collection", "mode", "outcome"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facetsearch",
		Name:      "aggregation_cache_lookups_total",
		Help:      "Aggregation cache lookups by result.",
	}, []string{"result"})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func observeEngine(operation string, start time.Time, err error) {
	engineDuration.WithLabelValues(operation, outcome(err)).Observe(time.Since(start).Seconds())
}
