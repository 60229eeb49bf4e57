// Package discovery tracks citations of unknown domains and promotes them
// into the source catalog once they accumulate enough independent mentions.
package discovery

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/metrics"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/repository"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/urlutil"
)

// SeedPublisher announces newly promoted domains so the crawler picks
// them up as seeds.
type SeedPublisher interface {
	PublishSeedURL(ctx context.Context, domain string) error
}

// Citation is the outcome of recording one citation.
type Citation struct {
	Domain   string
	Count    int
	Status   models.CandidateStatus
	Promoted bool
}

// Ledger is the citation ledger. Recording a citation and promoting at
// the threshold happen in one transaction, so two workers citing the same
// domain concurrently produce exactly one promotion.
type Ledger struct {
	db         *sql.DB
	catalog    *repository.CatalogRepository
	candidates *repository.CandidateRepository
	publisher  SeedPublisher
	threshold  int
	metrics    *metrics.Metrics
	log        logger.Logger
}

// NewLedger creates a citation ledger. The publisher is optional.
func NewLedger(
	db *sql.DB,
	catalog *repository.CatalogRepository,
	candidates *repository.CandidateRepository,
	publisher SeedPublisher,
	threshold int,
	m *metrics.Metrics,
	log logger.Logger,
) *Ledger {
	if threshold < 1 {
		threshold = 1
	}
	return &Ledger{
		db:         db,
		catalog:    catalog,
		candidates: candidates,
		publisher:  publisher,
		threshold:  threshold,
		metrics:    m,
		log:        log,
	}
}

// RegisterCitation records that rawDomain was cited by foundOn. Domains
// already in terminal candidate states keep counting citations but are
// never re-promoted. Returns the updated ledger entry.
func (l *Ledger) RegisterCitation(
	ctx context.Context,
	rawDomain, foundOn string,
	suggestedTier models.Tier,
) (result *Citation, err error) {
	domain, err := urlutil.Normalize(rawDomain)
	if err != nil {
		return nil, fmt.Errorf("normalize cited domain %q: %w", rawDomain, err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.log.Error("failed to rollback citation transaction", logger.Error(rbErr))
			}
		}
	}()

	count, status, err := l.candidates.RecordCitation(ctx, tx, domain, foundOn, suggestedTier)
	if err != nil {
		return nil, err
	}

	result = &Citation{Domain: domain, Count: count, Status: status}
	if count >= l.threshold && status == models.StatusPending {
		if err = l.promote(ctx, tx, domain); err != nil {
			return nil, err
		}
		result.Status = models.StatusPromoted
		result.Promoted = true
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit citation: %w", err)
	}

	if result.Promoted {
		if l.metrics != nil {
			l.metrics.Promotions.Inc()
		}
		l.log.Info("candidate promoted to catalog",
			logger.String("domain", domain),
			logger.Int("citations", count),
		)
		l.announceSeed(ctx, domain)
	}
	return result, nil
}

// promote moves a candidate into the catalog within the citation
// transaction. The inserted row is minimal: name echoes the domain, tier
// and country stay unknown until classification or geo resolution fills
// them in. The catalog upsert merges, so a domain already curated there
// keeps its metadata.
func (l *Ledger) promote(ctx context.Context, tx *sql.Tx, domain string) error {
	source := &models.MediaSource{
		Domain: domain,
		Name:   domain,
		Tier:   models.TierUnknown,
	}
	if _, err := l.catalog.Upsert(ctx, tx, source); err != nil {
		return fmt.Errorf("promote %s: %w", domain, err)
	}
	if _, err := l.candidates.MarkPromoted(ctx, tx, domain); err != nil {
		return err
	}
	return nil
}

// announceSeed publishes the promoted domain as a crawl seed. Publish
// failures are logged and dropped: the promotion already committed and
// the next catalog sweep re-seeds promoted domains anyway.
func (l *Ledger) announceSeed(ctx context.Context, domain string) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishSeedURL(ctx, "https://"+domain+"/"); err != nil {
		l.log.Warn("failed to publish seed for promoted domain",
			logger.String("domain", domain),
			logger.Error(err),
		)
	}
}

// LearnCountry writes a resolved geolocation back to the catalog so the
// next hydration serves it from the store. An UNK catalog entry accepts
// any resolved country; overwriting an existing one takes at least medium
// confidence.
func (l *Ledger) LearnCountry(ctx context.Context, resolution GeoOutcome) error {
	if resolution.CountryCode == "" || resolution.CountryCode == "UNK" {
		return nil
	}
	allowOverride := resolution.Confidence.AtLeast(models.ConfidenceMedium)

	changed, err := l.catalog.UpdateCountry(
		ctx,
		resolution.Domain,
		resolution.CountryCode,
		resolution.CountryName,
		allowOverride,
	)
	if err != nil {
		return fmt.Errorf("learn country for %s: %w", resolution.Domain, err)
	}
	if changed {
		l.log.Info("catalog country learned",
			logger.String("domain", resolution.Domain),
			logger.String("country", resolution.CountryCode),
			logger.String("confidence", resolution.Confidence.String()),
		)
	}
	return nil
}

// GeoOutcome is the subset of a geo resolution the ledger needs for
// loop-back learning.
type GeoOutcome struct {
	Domain      string
	CountryCode string
	CountryName string
	Confidence  models.Confidence
}
