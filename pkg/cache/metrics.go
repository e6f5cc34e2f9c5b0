package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend (memory, redis).
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riot_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riot_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheEvictions tracks LRU evictions by namespace.
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riot_cache_evictions_total",
			Help: "Total number of LRU cache evictions",
		},
		[]string{"namespace"},
	)

	// CacheErrors tracks cache backend operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riot_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "clear"
	)
)
