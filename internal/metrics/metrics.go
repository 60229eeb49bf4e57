// Package metrics exports Prometheus counters for crawl failure classes,
// circuit breaker transitions, and geo-resolution outcomes. Counters feed
// operator alerting only; control logic never reads them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/failure"
)

// Metrics holds all source-discovery Prometheus metrics.
type Metrics struct {
	// FetchFailures counts classified fetch failures by kind
	// (transient, rate_limited, blocked, fatal, permanent).
	FetchFailures *prometheus.CounterVec

	// BreakerTransitions counts circuit breaker state changes per resource.
	BreakerTransitions *prometheus.CounterVec

	// Resolutions counts geo resolutions by deciding method and confidence.
	Resolutions *prometheus.CounterVec

	// StrategyErrors counts abstentions caused by strategy-local errors.
	StrategyErrors *prometheus.CounterVec

	// Promotions counts candidate promotions into the catalog.
	Promotions prometheus.Counter

	// CacheHits counts geo cache hits.
	CacheHits prometheus.Counter

	// CatalogEffective tracks catalog entries with a resolved country.
	CatalogEffective prometheus.Gauge
}

// New registers the metric set with reg. Pass a fresh registry in tests to
// avoid duplicate registration on the global one.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "source_discovery_fetch_failures_total",
			Help: "Classified fetch failures by kind",
		}, []string{"kind"}),

		BreakerTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "source_discovery_breaker_transitions_total",
			Help: "Circuit breaker state transitions per protected resource",
		}, []string{"resource", "to"}),

		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "source_discovery_geo_resolutions_total",
			Help: "Geo resolutions by deciding method and resulting confidence",
		}, []string{"method", "confidence"}),

		StrategyErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "source_discovery_strategy_errors_total",
			Help: "Geo strategy errors treated as abstentions",
		}, []string{"strategy"}),

		Promotions: factory.NewCounter(prometheus.CounterOpts{
			Name: "source_discovery_promotions_total",
			Help: "Candidate domains promoted into the catalog",
		}),

		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "source_discovery_geo_cache_hits_total",
			Help: "Geo resolutions served from cache",
		}),

		CatalogEffective: factory.NewGauge(prometheus.GaugeOpts{
			Name: "source_discovery_catalog_effective_entries",
			Help: "Catalog entries with a resolved, non-UNK country",
		}),
	}
}

// RecordFailure increments the failure counter for a classified kind.
// No-op for KindNone.
func (m *Metrics) RecordFailure(kind failure.Kind) {
	if m == nil || kind == failure.KindNone {
		return
	}
	m.FetchFailures.WithLabelValues(kind.String()).Inc()
}
