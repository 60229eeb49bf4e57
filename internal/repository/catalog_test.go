package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/testhelpers"
)

func newCatalogMock(t *testing.T) (*CatalogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := testhelpers.NewSQLMock(t)
	return NewCatalogRepository(db, logger.NewNop()), mock
}

func TestCatalogUpsertInsertsNewRow(t *testing.T) {
	repo, mock := newCatalogMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO media_sources`).
		WithArgs(
			sqlmock.AnyArg(), "example.com", "Example News", nil, "UNK", "",
			"", string(models.TierUnknown), "", nil, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_insert"}).AddRow("id-1", true))
	mock.ExpectCommit()

	created, err := repo.UpsertOne(context.Background(), &models.MediaSource{
		Domain: "example.com",
		Name:   "Example News",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogUpsertMergesExistingRow(t *testing.T) {
	repo, mock := newCatalogMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO media_sources`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_insert"}).AddRow("id-1", false))
	mock.ExpectCommit()

	created, err := repo.UpsertOne(context.Background(), &models.MediaSource{
		Domain:      "example.com",
		CountryCode: "CAN",
		CountryName: "Canada",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogGetByDomainNotFound(t *testing.T) {
	repo, mock := newCatalogMock(t)

	mock.ExpectQuery(`SELECT .+ FROM media_sources WHERE domain`).
		WithArgs("missing.example").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByDomain(context.Background(), "missing.example")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogLoadAll(t *testing.T) {
	repo, mock := newCatalogMock(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "domain", "name", "abbreviation", "country_code", "country_name",
		"language", "tier", "logo_url", "fingerprint", "created_at", "updated_at",
	}).
		AddRow("id-1", "bbc.com", "BBC", "BBC", "GBR", "United Kingdom", "en", "Tier-0", "", nil, now, now).
		AddRow("id-2", "example.com", "Example", nil, "UNK", "", "", "Tier-1", "", nil, now, now)
	mock.ExpectQuery(`SELECT .+ FROM media_sources ORDER BY`).WillReturnRows(rows)

	sources, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "bbc.com", sources[0].Domain)
	assert.Equal(t, models.Tier0, sources[0].Tier)
	assert.Equal(t, "UNK", sources[1].CountryCode)
}

func TestCatalogUpdateCountryOnlyWhenUnknown(t *testing.T) {
	repo, mock := newCatalogMock(t)

	mock.ExpectExec(`UPDATE media_sources`).
		WithArgs("example.com", "FRA", "France", sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.UpdateCountry(context.Background(), "example.com", "FRA", "France", false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogUpdateFingerprintMissingRow(t *testing.T) {
	repo, mock := newCatalogMock(t)

	mock.ExpectExec(`UPDATE media_sources SET fingerprint`).
		WithArgs("missing.example", int64(42), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFingerprint(context.Background(), "missing.example", 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogCountEffective(t *testing.T) {
	repo, mock := newCatalogMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM media_sources`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	count, err := repo.CountEffective(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 17, count)
}
