// Package engine ties classification, geo resolution, the citation
// ledger, fingerprinting, and URL dedup together behind the surface the
// crawl worker consumes.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/classifier"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/discovery"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/fingerprint"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/geo"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/geodata"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/repository"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/urlutil"
)

// CrawlEvent is one crawled page as delivered on the crawl queue.
type CrawlEvent struct {
	URL           string `json:"url"`
	ReferringURL  string `json:"referring_url"`
	ExtractedText string `json:"extracted_text"`
	Markup        []byte `json:"markup,omitempty"`
}

// Annotation is the engine's verdict on a crawl event.
type Annotation struct {
	URL         string
	Domain      string
	Tier        models.Tier
	Source      *models.MediaSource
	Geo         *geo.Resolution
	Citation    *discovery.Citation
	Duplicate   bool
	ShouldCrawl bool
}

// Engine is the discovery facade.
type Engine struct {
	resolver     *geo.Resolver
	classifier   *classifier.Classifier
	hydrator     *classifier.Hydrator
	ledger       *discovery.Ledger
	catalog      *repository.CatalogRepository
	fingerprints *repository.FingerprintRepository
	log          logger.Logger
}

// New assembles the engine. The catalog and fingerprint repositories may
// be nil in store-less setups; the corresponding operations degrade to
// no-ops.
func New(
	resolver *geo.Resolver,
	cls *classifier.Classifier,
	hydrator *classifier.Hydrator,
	ledger *discovery.Ledger,
	catalog *repository.CatalogRepository,
	fingerprints *repository.FingerprintRepository,
	log logger.Logger,
) *Engine {
	return &Engine{
		resolver:     resolver,
		classifier:   cls,
		hydrator:     hydrator,
		ledger:       ledger,
		catalog:      catalog,
		fingerprints: fingerprints,
		log:          log,
	}
}

// ClassifySource returns the tier and catalog entry for a URL or domain.
func (e *Engine) ClassifySource(rawURL string) (*models.MediaSource, models.Tier) {
	return e.classifier.Match(rawURL)
}

// ResolveGeography resolves the country of origin for a URL, using
// extracted page text as extra evidence when available. It is total:
// malformed input degrades to the UNK resolution with unknown confidence
// so classification never blocks a crawl.
func (e *Engine) ResolveGeography(ctx context.Context, rawURL, text string) *geo.Resolution {
	_, tier := e.classifier.Match(rawURL)
	resolution, err := e.resolver.Resolve(ctx, rawURL, text, tier)
	if err != nil {
		e.log.Debug("unresolvable input", logger.String("url", rawURL), logger.Error(err))
		return &geo.Resolution{
			Domain:      rawURL,
			CountryCode: geodata.UnknownCode,
			Confidence:  models.ConfidenceUnknown,
			Method:      "none",
		}
	}
	return resolution
}

// RegisterCitation records a citation of a domain and reports whether it
// crossed the promotion threshold.
func (e *Engine) RegisterCitation(
	ctx context.Context,
	domain, foundOn string,
	suggestedTier models.Tier,
) (*discovery.Citation, error) {
	return e.ledger.RegisterCitation(ctx, domain, foundOn, suggestedTier)
}

// ComputeFingerprint returns the structural fingerprint of page markup.
func (e *Engine) ComputeFingerprint(markup []byte) uint64 {
	return fingerprint.Compute(markup)
}

// IsSimilar reports whether two fingerprints are within the default
// similarity threshold.
func (e *Engine) IsSimilar(a, b uint64) bool {
	return fingerprint.Similar(a, b, fingerprint.DefaultSimilarityThreshold)
}

// ShouldTraverse gates re-crawling a page: when its structure matches the
// stored fingerprint for the domain, traversal is skipped. The fresh
// fingerprint is persisted only when traversal happens, so the baseline
// stays pinned to the last crawled layout and slow sub-threshold drift
// still triggers a crawl once it adds up.
func (e *Engine) ShouldTraverse(ctx context.Context, rawDomain string, markup []byte) (bool, error) {
	if e.catalog == nil {
		return true, nil
	}
	domain, err := urlutil.Normalize(rawDomain)
	if err != nil {
		return true, nil
	}

	var stored *uint64
	source, err := e.catalog.GetByDomain(ctx, domain)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// Unknown domains always traverse.
	case err != nil:
		return true, fmt.Errorf("load fingerprint for %s: %w", domain, err)
	case source.Fingerprint != nil:
		v := uint64(*source.Fingerprint)
		stored = &v
	}

	traverse, fresh := fingerprint.ShouldTraverse(stored, markup, fingerprint.DefaultSimilarityThreshold)
	if !traverse {
		return false, nil
	}
	if updateErr := e.catalog.UpdateFingerprint(ctx, domain, int64(fresh)); updateErr != nil &&
		!errors.Is(updateErr, repository.ErrNotFound) {
		e.log.Warn("failed to persist fingerprint",
			logger.String("domain", domain),
			logger.Error(updateErr),
		)
	}
	return true, nil
}

// Rehydrate reloads the classifier catalog from the best available source.
func (e *Engine) Rehydrate(ctx context.Context) {
	if e.hydrator != nil {
		e.hydrator.Hydrate(ctx, e.classifier)
	}
}

// Annotate runs the full pipeline for one crawl event: URL dedup,
// classification, geo resolution, citation registration for unknown
// domains, and loop-back country learning for known ones.
func (e *Engine) Annotate(ctx context.Context, event CrawlEvent) (*Annotation, error) {
	domain, err := urlutil.Normalize(event.URL)
	if err != nil {
		return nil, fmt.Errorf("annotate %q: %w", event.URL, err)
	}

	annotation := &Annotation{URL: event.URL, Domain: domain, ShouldCrawl: true}

	if e.fingerprints != nil {
		first, seenErr := e.fingerprints.MarkSeen(ctx, event.URL)
		if seenErr != nil {
			e.log.Warn("url dedup check failed", logger.String("url", event.URL), logger.Error(seenErr))
		} else {
			annotation.Duplicate = !first
		}
	}

	annotation.Source, annotation.Tier = e.classifier.Match(domain)

	resolution, err := e.resolver.Resolve(ctx, domain, event.ExtractedText, annotation.Tier)
	if err != nil {
		return nil, err
	}
	annotation.Geo = resolution

	if annotation.Source == nil {
		foundOn := event.ReferringURL
		if foundOn == "" {
			foundOn = event.URL
		}
		citation, citeErr := e.ledger.RegisterCitation(ctx, domain, foundOn, models.Tier2)
		if citeErr != nil {
			e.log.Warn("citation registration failed",
				logger.String("domain", domain),
				logger.Error(citeErr),
			)
		} else {
			annotation.Citation = citation
		}
	} else {
		if learnErr := e.ledger.LearnCountry(ctx, discovery.GeoOutcome{
			Domain:      annotation.Source.Domain,
			CountryCode: resolution.CountryCode,
			CountryName: resolution.CountryName,
			Confidence:  resolution.Confidence,
		}); learnErr != nil {
			e.log.Warn("country learn-back failed",
				logger.String("domain", annotation.Source.Domain),
				logger.Error(learnErr),
			)
		}
	}

	if len(event.Markup) > 0 {
		traverse, gateErr := e.ShouldTraverse(ctx, domain, event.Markup)
		if gateErr != nil {
			e.log.Warn("traversal gate failed", logger.String("domain", domain), logger.Error(gateErr))
		} else {
			annotation.ShouldCrawl = traverse
		}
	}
	return annotation, nil
}
