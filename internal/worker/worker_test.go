package worker

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/classifier"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/discovery"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/engine"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/geo"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/repository"
)

func newTestWorker(t *testing.T) (*Worker, sqlmock.Sqlmock) {
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
	}, log)
	ledger := discovery.NewLedger(db, catalogRepo, candidateRepo, nil, 1, nil, log)
	resolver := geo.NewResolver(nil, nil, nil, log)
	eng := engine.New(resolver, cls, nil, ledger, catalogRepo, fingerprintRepo, log)

	return New(nil, eng, nil, "discovery:crawl_events", 2, log), mock
}

func TestProcessMalformedPayloadIsDropped(t *testing.T) {
	w, mock := newTestWorker(t)

	w.process(context.Background(), []byte("{not json"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessAnnotatesEvent(t *testing.T) {
	w, mock := newTestWorker(t)

	mock.ExpectExec(`INSERT INTO url_fingerprints`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w.process(context.Background(), []byte(`{"url":"https://cnn.com/story","referring_url":""}`))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewClampsConcurrency(t *testing.T) {
	w := New(nil, nil, nil, "q", 0, logger.NewNop())
	assert.Equal(t, 1, w.concurrent)
}
