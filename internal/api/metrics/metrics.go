// Package metrics defines and registers the directory's custom Prometheus
// metrics. It is the single source of truth for metric names, labels, and
// help strings; everything is registered with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "directory"

// ListingsTotal counts served listing requests.
// Label:
//   - path: "listing" (cursor-driven) or "search" (ranked result set)
var ListingsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_total",
		Help:      "Total number of directory listing requests served, by path.",
	},
	[]string{"path"},
)

// CursorCacheLookups counts cursor cache resolutions for pages > 0.
// Label:
//   - result: "hit" or "miss" (a miss fails the request with InvalidPage)
var CursorCacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cursor_cache_lookups_total",
		Help:      "Cursor cache lookups by result (hit/miss).",
	},
	[]string{"result"},
)

// ResultCacheLookups counts search result cache resolutions.
// Label:
//   - result: "hit" (cached ranked set reused) or "miss" (full scan ran)
var ResultCacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "result_cache_lookups_total",
		Help:      "Search result cache lookups by result (hit/miss).",
	},
	[]string{"result"},
)

// ProviderPagesPerRequest measures how many identity provider pages a single
// request consumed (restricted listings may span several to fill one page;
// search misses scan the whole population).
var ProviderPagesPerRequest = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_pages_per_request",
		Help:      "Identity provider pages fetched while serving one request.",
		Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
	},
)

// SearchDuration measures a full search computation: population scan,
// projection, filtering, and ranking (cache hits are not observed).
var SearchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Duration of a full search result set computation.",
		Buckets:   prometheus.DefBuckets,
	},
)
