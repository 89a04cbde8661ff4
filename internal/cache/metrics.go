package cache

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// cacheHits counts reads served from the Store.
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "content_cache_hits_total",
		Help: "Total number of content cache hits.",
	})

	// cacheMisses counts reads that ran the loader.
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "content_cache_misses_total",
		Help: "Total number of content cache misses.",
	})

	// cacheInvalidations counts invalidations by tag family. Per-entity
	// suffixes are stripped so the label stays bounded.
	cacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_invalidations_total",
			Help: "Total number of content cache tag invalidations.",
		},
		[]string{"tag"},
	)
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses, cacheInvalidations)
}

// tagFamily maps "products:123" to "products".
func tagFamily(tag string) string {
	if i := strings.IndexByte(tag, ':'); i > 0 {
		return tag[:i]
	}
	return tag
}
