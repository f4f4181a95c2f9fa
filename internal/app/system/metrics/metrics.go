// Package metrics holds the Prometheus collectors shared by the backend
// client and the query cache. Collectors register with the default
// registry, which is what /metrics serves.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "labhub",
		Name:      "backend_requests_total",
		Help:      "Requests sent to the lab inventory API, by endpoint and status.",
	}, []string{"endpoint", "method", "status"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "labhub",
		Name:      "backend_request_seconds",
		Help:      "Latency of requests sent to the lab inventory API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "labhub",
		Name:      "query_cache_lookups_total",
		Help:      "Query cache lookups, by entity and result (hit, miss, shared).",
	}, []string{"entity", "result"})

	cacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "labhub",
		Name:      "query_cache_invalidations_total",
		Help:      "Query cache invalidations, by entity.",
	}, []string{"entity"})
)

// ObserveBackend records one backend call. status 0 means the request never
// got a response (transport error).
func ObserveBackend(endpoint, method string, status int, d time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	backendRequests.WithLabelValues(endpoint, method, code).Inc()
	backendLatency.WithLabelValues(endpoint, method).Observe(d.Seconds())
}

// CacheLookup records a cache lookup outcome.
func CacheLookup(entity, result string) {
	cacheLookups.WithLabelValues(entity, result).Inc()
}

// CacheInvalidated records an invalidation of one entity's entries.
func CacheInvalidated(entity string) {
	cacheInvalidations.WithLabelValues(entity).Inc()
}
