package geo

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/geodata"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/metrics"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/urlutil"
)

// resolutionCache is the slice of Cache the resolver needs.
type resolutionCache interface {
	Get(ctx context.Context, domain string) (*Resolution, bool)
	Put(ctx context.Context, domain string, resolution *Resolution, tier models.Tier)
}

// Resolver runs the strategy chain for a domain and folds the signals into
// a weighted consensus. Resolution is idempotent: the cache answers repeat
// lookups without re-running the chain.
type Resolver struct {
	strategies []Strategy
	cache      resolutionCache
	metrics    *metrics.Metrics
	log        logger.Logger
}

// NewResolver builds a resolver over an ordered strategy chain. Strategies
// run in the given order; put the most trusted first so short-circuiting
// skips the expensive remote ones. The cache is optional.
func NewResolver(strategies []Strategy, cache *Cache, m *metrics.Metrics, log logger.Logger) *Resolver {
	r := &Resolver{
		strategies: strategies,
		metrics:    m,
		log:        log,
	}
	if cache != nil {
		r.cache = cache
	}
	return r
}

// Resolve determines the country of origin for a raw domain or URL, with
// optional extracted page text as extra evidence. It never returns an
// error for "could not determine": that outcome is the UNK resolution with
// unknown confidence. The tier steers the cache TTL.
func (r *Resolver) Resolve(ctx context.Context, rawDomain, text string, tier models.Tier) (*Resolution, error) {
	domain, err := urlutil.Normalize(rawDomain)
	if err != nil {
		return nil, fmt.Errorf("normalize domain %q: %w", rawDomain, err)
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, domain); ok {
			if r.metrics != nil {
				r.metrics.CacheHits.Inc()
			}
			return cached, nil
		}
	}

	started := time.Now()
	resolution := r.runChain(ctx, domain, text)
	resolution.Latency = time.Since(started)

	if r.metrics != nil {
		r.metrics.Resolutions.WithLabelValues(resolution.Method, resolution.Confidence.String()).Inc()
	}
	if r.cache != nil && resolution.CountryCode != geodata.UnknownCode {
		r.cache.Put(ctx, domain, resolution, tier)
	}
	return resolution, nil
}

// tally accumulates one code's consensus state.
type tally struct {
	weight float64
	count  int
	order  int
}

func (r *Resolver) runChain(ctx context.Context, domain, text string) *Resolution {
	votes := make(map[string]*tally)
	var findings []Finding

	for _, strategy := range r.strategies {
		started := time.Now()
		signal, err := strategy.Resolve(ctx, domain, text)
		elapsed := time.Since(started)

		if err != nil {
			if r.metrics != nil {
				r.metrics.StrategyErrors.WithLabelValues(strategy.Name()).Inc()
			}
			r.log.Warn("geo strategy failed",
				logger.String("strategy", strategy.Name()),
				logger.String("domain", domain),
				logger.Error(err),
			)
			continue
		}
		if signal == nil || !geodata.IsValidCode(signal.CountryCode) {
			continue
		}

		code := signal.CountryCode
		findings = append(findings, Finding{
			Strategy:    strategy.Name(),
			CountryCode: code,
			Weight:      signal.Weight,
			Latency:     elapsed,
		})

		entry, ok := votes[code]
		if !ok {
			entry = &tally{order: len(votes)}
			votes[code] = entry
		}
		entry.weight += signal.Weight * float64(signal.votes())
		entry.count += signal.votes()

		// An authoritative signal decides the outcome without consulting
		// the remaining, typically remote, strategies.
		if signal.Weight >= shortCircuitWeight {
			return r.resolutionFor(domain, code, findings, models.ConfidenceHigh)
		}
	}

	winner := ""
	for code, entry := range votes {
		if winner == "" {
			winner = code
			continue
		}
		best := votes[winner]
		if entry.weight > best.weight || (entry.weight == best.weight && entry.order < best.order) {
			winner = code
		}
	}
	if winner == "" {
		return &Resolution{
			Domain:      domain,
			CountryCode: geodata.UnknownCode,
			Confidence:  models.ConfidenceUnknown,
			Method:      "none",
			Findings:    findings,
		}
	}
	return r.resolutionFor(domain, winner, findings, consensusConfidence(votes, winner))
}

// consensusConfidence maps the vote distribution to confidence: two or
// more agreeing findings is high, a single uncontested finding is medium,
// conflicting findings are low.
func consensusConfidence(votes map[string]*tally, winner string) models.Confidence {
	switch {
	case votes[winner].count >= 2:
		return models.ConfidenceHigh
	case len(votes) == 1:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func (r *Resolver) resolutionFor(domain, code string, findings []Finding, confidence models.Confidence) *Resolution {
	country, _ := geodata.Lookup(code)

	method := "consensus"
	var contributors []string
	for _, f := range findings {
		if f.CountryCode == code {
			contributors = append(contributors, f.Strategy)
		}
	}
	if len(contributors) == 1 {
		method = contributors[0]
	}

	return &Resolution{
		Domain:      domain,
		CountryCode: code,
		CountryName: country.Name,
		Confidence:  confidence,
		Method:      method,
		Findings:    findings,
	}
}
