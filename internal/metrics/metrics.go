// Package metrics holds Prometheus instruments that are used across the
// storefront edge.  All collectors are registered with the global registry,
// so importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Edge-cache outcome labels.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheSkip   = "skip"
	CacheBypass = "bypass"
)

var (
	EdgeCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_edgecache_requests_total",
			Help: "Edge-cache decisions by outcome (hit, miss, skip, bypass).",
		},
		[]string{"outcome"},
	)

	EdgeCacheStoreErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_edgecache_store_errors_total",
			Help: "Deferred cache writes that failed.",
		})

	EdgeCachePurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_edgecache_purged_total",
			Help: "Cache entries removed by tag or key purge.",
		})

	LocaleRedirects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_locale_redirects_total",
			Help: "302 redirects issued by the locale resolver.",
		},
		[]string{"reason"}, // root | prefix
	)

	LocaleRewrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_locale_rewrites_total",
			Help: "Internal rewrites from localized to canonical segments.",
		})

	RegionResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_region_resolved_total",
			Help: "Region resolutions by source (cookie, header, geoip, default).",
		},
		[]string{"source"},
	)

	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders accepted at checkout, by region.",
		},
		[]string{"region"},
	)

	BackgroundInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_background_tasks_in_flight",
			Help: "Deferred tasks currently running past the response boundary.",
		})
)

func init() {
	prometheus.MustRegister(
		EdgeCacheRequests,
		EdgeCacheStoreErrors,
		EdgeCachePurged,
		LocaleRedirects,
		LocaleRewrites,
		RegionResolved,
		OrdersPlaced,
		BackgroundInFlight,
	)
}
