// Package metrics provides Prometheus metrics for the Jeeves card bot.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jeeves_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jeeves_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Lookup Metrics
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jeeves_lookups_total",
			Help: "Total card lookups by query kind and result",
		},
		[]string{"kind", "result"}, // kind: "card", "image", "flavor"; result: "success", "malformed", "error"
	)

	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jeeves_resolve_duration_seconds",
			Help:    "Time taken to resolve a query against the catalog",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	ResolverCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jeeves_resolver_cache_hits_total",
			Help: "Resolver cache hit count",
		},
	)

	ResolverCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jeeves_resolver_cache_misses_total",
			Help: "Resolver cache miss count",
		},
	)

	// Catalog Metrics
	CatalogReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jeeves_catalog_reloads_total",
			Help: "Catalog reload attempts by result",
		},
		[]string{"result"}, // "success", "failed"
	)

	CatalogReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jeeves_catalog_reload_duration_seconds",
			Help:    "Time taken to fetch and load the catalog",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	CatalogCards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jeeves_catalog_cards",
			Help: "Number of unique card titles in the loaded catalog",
		},
	)

	CatalogPacks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jeeves_catalog_packs",
			Help: "Number of packs in the loaded catalog",
		},
	)

	// Chat Metrics
	MessagesHandledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jeeves_messages_handled_total",
			Help: "Chat messages that contained at least one query",
		},
	)

	RepliesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jeeves_replies_sent_total",
			Help: "Replies sent to chat by type and result",
		},
		[]string{"type", "result"}, // type: "embed", "text"; result: "success", "failed"
	)

	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jeeves_commands_total",
			Help: "Prefix commands received by name",
		},
		[]string{"command"},
	)

	// Lookup History Metrics
	HistoryWriteErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jeeves_history_write_errors_total",
			Help: "Lookup history rows that failed to save",
		},
	)
)
