package engine

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/classifier"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/discovery"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/geo"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/repository"
)

// scriptedStrategy always answers with the same signal.
type scriptedStrategy struct {
	signal *geo.Signal
}

func (scriptedStrategy) Name() string { return "scripted" }

func (s scriptedStrategy) Resolve(context.Context, string, string) (*geo.Signal, error) {
	return s.signal, nil
}

func newTestEngine(t *testing.T, threshold int, signal *geo.Signal) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewNop()
	catalogRepo := repository.NewCatalogRepository(db, log)
	candidateRepo := repository.NewCandidateRepository(db, log)
	fingerprintRepo := repository.NewFingerprintRepository(db, log)

	cls := classifier.New([]models.MediaSource{
		{Domain: "cnn.com", Name: "CNN", Tier: models.Tier0, CountryCode: "USA"},
		{Domain: "example.com", Name: "Example", Tier: models.Tier1, CountryCode: "UNK"},
	}, log)

	ledger := discovery.NewLedger(db, catalogRepo, candidateRepo, nil, threshold, nil, log)

	var strategies []geo.Strategy
	if signal != nil {
		strategies = append(strategies, scriptedStrategy{signal: signal})
	}
	resolver := geo.NewResolver(strategies, nil, nil, log)

	return New(resolver, cls, nil, ledger, catalogRepo, fingerprintRepo, log), mock
}

func TestAnnotateKnownSourceLearnsCountry(t *testing.T) {
	eng, mock := newTestEngine(t, 1, &geo.Signal{CountryCode: "USA", Weight: 0.95})

	mock.ExpectExec(`INSERT INTO url_fingerprints`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE media_sources`).
		WithArgs("cnn.com", "USA", "United States", sqlmock.AnyArg(), true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	annotation, err := eng.Annotate(context.Background(), CrawlEvent{
		URL:          "https://www.cnn.com/world/article",
		ReferringURL: "https://news.example.org",
	})
	require.NoError(t, err)

	assert.Equal(t, "cnn.com", annotation.Domain)
	assert.Equal(t, models.Tier0, annotation.Tier)
	require.NotNil(t, annotation.Source)
	assert.Nil(t, annotation.Citation, "known sources are never cited as candidates")
	assert.Equal(t, "USA", annotation.Geo.CountryCode)
	assert.False(t, annotation.Duplicate)
	assert.True(t, annotation.ShouldCrawl)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnotateUnknownDomainRegistersCitation(t *testing.T) {
	eng, mock := newTestEngine(t, 1, nil)

	mock.ExpectExec(`INSERT INTO url_fingerprints`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO candidate_sources`).
		WithArgs(sqlmock.AnyArg(), "fresh.example", "https://cnn.com/a", string(models.Tier2), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "citation_count", "status"}).
			AddRow("cand-1", 1, "pending"))
	mock.ExpectQuery(`INSERT INTO media_sources`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_insert"}).AddRow("src-1", true))
	mock.ExpectExec(`UPDATE candidate_sources SET status = 'promoted'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	annotation, err := eng.Annotate(context.Background(), CrawlEvent{
		URL:          "https://fresh.example/story",
		ReferringURL: "https://cnn.com/a",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TierUnknown, annotation.Tier)
	assert.Nil(t, annotation.Source)
	require.NotNil(t, annotation.Citation)
	assert.True(t, annotation.Citation.Promoted)
	assert.Equal(t, "UNK", annotation.Geo.CountryCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnotateFlagsDuplicateURL(t *testing.T) {
	eng, mock := newTestEngine(t, 5, nil)

	mock.ExpectExec(`INSERT INTO url_fingerprints`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO candidate_sources`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "citation_count", "status"}).
			AddRow("cand-1", 2, "pending"))
	mock.ExpectCommit()

	annotation, err := eng.Annotate(context.Background(), CrawlEvent{URL: "https://fresh.example/story"})
	require.NoError(t, err)
	assert.True(t, annotation.Duplicate)
}

func TestAnnotateSubdomainInheritsTier(t *testing.T) {
	eng, mock := newTestEngine(t, 5, nil)

	mock.ExpectExec(`INSERT INTO url_fingerprints`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	annotation, err := eng.Annotate(context.Background(), CrawlEvent{
		URL: "https://edition.example.com/live",
	})
	require.NoError(t, err)

	assert.Equal(t, models.Tier1, annotation.Tier)
	require.NotNil(t, annotation.Source)
	assert.Equal(t, "example.com", annotation.Source.Domain)
}

func TestResolveGeographyMalformedInputDegradesToUnknown(t *testing.T) {
	eng, _ := newTestEngine(t, 1, nil)

	resolution := eng.ResolveGeography(context.Background(), "   ", "")

	assert.Equal(t, "UNK", resolution.CountryCode)
	assert.Equal(t, models.ConfidenceUnknown, resolution.Confidence)
}

func TestAnnotateRejectsMalformedURL(t *testing.T) {
	eng, _ := newTestEngine(t, 1, nil)

	_, err := eng.Annotate(context.Background(), CrawlEvent{URL: "   "})
	require.Error(t, err)
}

func TestShouldTraverseUnknownDomainAlwaysTraverses(t *testing.T) {
	eng, mock := newTestEngine(t, 1, nil)

	markup := []byte("<html><body><div><p>hello</p></div></body></html>")

	mock.ExpectQuery(`SELECT .+ FROM media_sources WHERE domain`).
		WithArgs("fresh.example").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`UPDATE media_sources SET fingerprint`).
		WithArgs("fresh.example", int64(eng.ComputeFingerprint(markup)), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	traverse, err := eng.ShouldTraverse(context.Background(), "fresh.example", markup)
	require.NoError(t, err)
	assert.True(t, traverse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShouldTraverseSkipsUnchangedLayout(t *testing.T) {
	eng, mock := newTestEngine(t, 1, nil)

	markup := []byte("<html><body><div><p>hello</p></div></body></html>")
	stored := int64(eng.ComputeFingerprint(markup))
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM media_sources WHERE domain`).
		WithArgs("cnn.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "domain", "name", "abbreviation", "country_code", "country_name",
			"language", "tier", "logo_url", "fingerprint", "created_at", "updated_at",
		}).AddRow("id-1", "cnn.com", "CNN", nil, "USA", "United States", "en", "Tier-0", "", stored, now, now))

	traverse, err := eng.ShouldTraverse(context.Background(), "cnn.com", markup)
	require.NoError(t, err)
	assert.False(t, traverse, "identical structure skips traversal")
	assert.NoError(t, mock.ExpectationsWereMet(), "a skipped pass must not touch the stored fingerprint")
}

func TestShouldTraverseSkippedPassKeepsBaseline(t *testing.T) {
	eng, mock := newTestEngine(t, 1, nil)

	markup := []byte("<html><body><div><p>hello</p></div></body></html>")
	// Two bits of drift: similar to the fresh fingerprint, but not identical.
	stored := int64(eng.ComputeFingerprint(markup) ^ 0b101)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM media_sources WHERE domain`).
		WithArgs("cnn.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "domain", "name", "abbreviation", "country_code", "country_name",
			"language", "tier", "logo_url", "fingerprint", "created_at", "updated_at",
		}).AddRow("id-1", "cnn.com", "CNN", nil, "USA", "United States", "en", "Tier-0", "", stored, now, now))

	traverse, err := eng.ShouldTraverse(context.Background(), "cnn.com", markup)
	require.NoError(t, err)
	assert.False(t, traverse)
	assert.NoError(t, mock.ExpectationsWereMet(),
		"sub-threshold drift must not replace the baseline, or it could creep forever without a crawl")
}
