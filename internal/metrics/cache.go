package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheStats is implemented by *cache.Cache.
type CacheStats interface {
	Hits() uint64
	Misses() uint64
}

// RegisterCacheMetrics exposes catalog cache hit and miss counts.
func RegisterCacheMetrics(reg prometheus.Registerer, stats CacheStats) error {
	hits := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Catalog cache lookups that found an entry",
	}, func() float64 {
		return float64(stats.Hits())
	})
	misses := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Catalog cache lookups that missed",
	}, func() float64 {
		return float64(stats.Misses())
	})

	if err := reg.Register(hits); err != nil {
		return err
	}
	return reg.Register(misses)
}
