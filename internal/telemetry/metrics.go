// Package telemetry provides observability primitives for plannerd.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  prometheus.Gauge
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	CacheEntries    prometheus.GaugeFunc
	Invalidations   *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics with the given registerer.
// sizeFn reports the live cache entry count; nil disables the gauge.
func NewMetrics(reg prometheus.Registerer, sizeFn func() int) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plannerd",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:                       "plannerd",
			Name:                            "request_duration_seconds",
			Help:                            "HTTP request duration in seconds.",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 0,
		}, []string{"method", "path"}),

		ActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "plannerd",
			Name:      "active_requests",
			Help:      "Number of currently active requests.",
		}),

		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plannerd",
			Name:      "cache_hits_total",
			Help:      "Total query cache hits.",
		}, []string{"resource"}),

		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plannerd",
			Name:      "cache_misses_total",
			Help:      "Total query cache misses.",
		}, []string{"resource"}),

		Invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plannerd",
			Name:      "cache_invalidations_total",
			Help:      "Total resource-wide cache invalidations.",
		}, []string{"resource"}),

		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:                       "plannerd",
			Name:                            "fetch_duration_seconds",
			Help:                            "Store fetch duration on cache miss, in seconds.",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 0,
		}, []string{"resource"}),
	}

	if sizeFn != nil {
		m.CacheEntries = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "plannerd",
			Name:      "cache_entries",
			Help:      "Live (non-expired) cache entries, best effort.",
		}, func() float64 { return float64(sizeFn()) })
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ActiveRequests,
		m.CacheHits,
		m.CacheMisses,
		m.Invalidations,
		m.FetchDuration,
	)
	if m.CacheEntries != nil {
		reg.MustRegister(m.CacheEntries)
	}

	return m
}
