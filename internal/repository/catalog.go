// Package repository implements the durable store for the source catalog,
// the candidate ledger, and the URL fingerprint registry.
//
// All multi-writer paths use server-side conflict resolution (upsert with
// field-level COALESCE merge) instead of client-side read-modify-write, so
// concurrent crawl workers discovering the same domain cannot lose updates.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// CatalogRepository handles media_sources rows.
type CatalogRepository struct {
	db  *sql.DB
	log logger.Logger
}

// NewCatalogRepository creates a catalog repository.
func NewCatalogRepository(db *sql.DB, log logger.Logger) *CatalogRepository {
	return &CatalogRepository{db: db, log: log}
}

// DB exposes the pool so callers can open transactions spanning repositories.
func (r *CatalogRepository) DB() *sql.DB {
	return r.db
}

// catalogUpsertQuery merges an incoming row into the catalog:
//   - empty/absent incoming fields keep the existing value (COALESCE/NULLIF)
//   - country_code only moves away from UNK, never back to it
//   - tier keeps the better of the two; the tier labels are chosen so that
//     LEAST() on the text values orders Tier-0 < Tier-1 < Tier-2 < unknown
//
// The (xmax = 0) trick distinguishes insert from update.
const catalogUpsertQuery = `
	INSERT INTO media_sources (
		id, domain, name, abbreviation, country_code, country_name,
		language, tier, logo_url, fingerprint, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (domain) DO UPDATE SET
		name = COALESCE(NULLIF(EXCLUDED.name, ''), media_sources.name),
		abbreviation = COALESCE(EXCLUDED.abbreviation, media_sources.abbreviation),
		country_code = CASE
			WHEN EXCLUDED.country_code <> 'UNK' THEN EXCLUDED.country_code
			ELSE media_sources.country_code
		END,
		country_name = CASE
			WHEN EXCLUDED.country_code <> 'UNK' THEN EXCLUDED.country_name
			ELSE media_sources.country_name
		END,
		language = COALESCE(NULLIF(EXCLUDED.language, ''), media_sources.language),
		tier = LEAST(media_sources.tier, EXCLUDED.tier),
		logo_url = COALESCE(NULLIF(EXCLUDED.logo_url, ''), media_sources.logo_url),
		fingerprint = COALESCE(EXCLUDED.fingerprint, media_sources.fingerprint),
		updated_at = EXCLUDED.updated_at
	RETURNING id, (xmax = 0) AS is_insert
`

// Upsert merges a source into the catalog within an existing transaction.
// Returns true when a new row was created.
func (r *CatalogRepository) Upsert(ctx context.Context, tx *sql.Tx, source *models.MediaSource) (bool, error) {
	now := time.Now()
	if source.ID == "" {
		source.ID = uuid.New().String()
	}
	if source.CountryCode == "" {
		source.CountryCode = "UNK"
	}
	if source.Tier == "" {
		source.Tier = models.TierUnknown
	}
	source.CreatedAt = now
	source.UpdatedAt = now

	var isInsert bool
	err := tx.QueryRowContext(ctx, catalogUpsertQuery,
		source.ID,
		source.Domain,
		source.Name,
		source.Abbreviation,
		source.CountryCode,
		source.CountryName,
		source.Language,
		source.Tier,
		source.LogoURL,
		source.Fingerprint,
		source.CreatedAt,
		source.UpdatedAt,
	).Scan(&source.ID, &isInsert)
	if err != nil {
		return false, fmt.Errorf("upsert media source: %w", err)
	}
	return isInsert, nil
}

// UpsertOne merges a single source in its own transaction.
func (r *CatalogRepository) UpsertOne(ctx context.Context, source *models.MediaSource) (created bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Error("failed to rollback transaction", logger.Error(rbErr))
			}
		}
	}()

	created, err = r.Upsert(ctx, tx, source)
	if err != nil {
		return false, err
	}
	if commitErr := tx.Commit(); commitErr != nil {
		err = fmt.Errorf("commit transaction: %w", commitErr)
		return false, err
	}
	return created, nil
}

const catalogColumns = `
	id, domain, name, abbreviation, country_code, country_name,
	language, tier, logo_url, fingerprint, created_at, updated_at
`

// GetByDomain fetches a catalog entry by its normalized domain.
func (r *CatalogRepository) GetByDomain(ctx context.Context, domain string) (*models.MediaSource, error) {
	query := `SELECT` + catalogColumns + `FROM media_sources WHERE domain = $1`

	var source models.MediaSource
	err := r.db.QueryRowContext(ctx, query, domain).Scan(
		&source.ID,
		&source.Domain,
		&source.Name,
		&source.Abbreviation,
		&source.CountryCode,
		&source.CountryName,
		&source.Language,
		&source.Tier,
		&source.LogoURL,
		&source.Fingerprint,
		&source.CreatedAt,
		&source.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query media source: %w", err)
	}
	return &source, nil
}

// LoadAll returns the full catalog ordered by domain length then domain, so
// shorter (canonical) domains win first-match scans in the classifier.
func (r *CatalogRepository) LoadAll(ctx context.Context) ([]models.MediaSource, error) {
	query := `SELECT` + catalogColumns + `FROM media_sources ORDER BY length(domain), domain`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	sources := make([]models.MediaSource, 0)
	for rows.Next() {
		var source models.MediaSource
		if scanErr := rows.Scan(
			&source.ID,
			&source.Domain,
			&source.Name,
			&source.Abbreviation,
			&source.CountryCode,
			&source.CountryName,
			&source.Language,
			&source.Tier,
			&source.LogoURL,
			&source.Fingerprint,
			&source.CreatedAt,
			&source.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan media source: %w", scanErr)
		}
		sources = append(sources, source)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate catalog: %w", rowsErr)
	}
	return sources, nil
}

// UpdateCountry applies loop-back learning: the resolved country replaces
// the stored one only when it is still UNK, unless allowOverride is set.
// Returns true when a row changed.
func (r *CatalogRepository) UpdateCountry(
	ctx context.Context,
	domain, countryCode, countryName string,
	allowOverride bool,
) (bool, error) {
	query := `
		UPDATE media_sources
		SET country_code = $2, country_name = $3, updated_at = $4
		WHERE domain = $1 AND (country_code = 'UNK' OR $5)
	`

	result, err := r.db.ExecContext(ctx, query, domain, countryCode, countryName, time.Now(), allowOverride)
	if err != nil {
		return false, fmt.Errorf("update country: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpdateFingerprint stores a freshly computed structural fingerprint.
func (r *CatalogRepository) UpdateFingerprint(ctx context.Context, domain string, fp int64) error {
	query := `UPDATE media_sources SET fingerprint = $2, updated_at = $3 WHERE domain = $1`

	result, err := r.db.ExecContext(ctx, query, domain, fp, time.Now())
	if err != nil {
		return fmt.Errorf("update fingerprint: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountEffective returns the number of catalog entries with a resolved
// country, the catalog "effectiveness" gauge.
func (r *CatalogRepository) CountEffective(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM media_sources WHERE country_code IS NOT NULL AND country_code <> 'UNK'`

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count effective sources: %w", err)
	}
	return count, nil
}
