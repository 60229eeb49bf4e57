package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
)

// FingerprintRepository handles the url_fingerprints dedup registry.
type FingerprintRepository struct {
	db  *sql.DB
	log logger.Logger
}

// NewFingerprintRepository creates a fingerprint repository.
func NewFingerprintRepository(db *sql.DB, log logger.Logger) *FingerprintRepository {
	return &FingerprintRepository{db: db, log: log}
}

// HashURL returns the content-addressed key for a URL string. The hash is
// stored as a signed 64-bit value to fit a BIGINT column.
func HashURL(url string) int64 {
	return int64(xxhash.Sum64String(url))
}

// MarkSeen records a URL and reports whether this was its first sighting.
// The insert is idempotent: replays and concurrent duplicates hit the
// conflict clause and return firstSeen = false.
func (r *FingerprintRepository) MarkSeen(ctx context.Context, url string) (bool, error) {
	query := `
		INSERT INTO url_fingerprints (hash, url, first_seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (hash) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, HashURL(url), url, time.Now())
	if err != nil {
		return false, fmt.Errorf("mark url seen: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Seen reports whether a URL has been recorded, without recording it.
func (r *FingerprintRepository) Seen(ctx context.Context, url string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM url_fingerprints WHERE hash = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, HashURL(url)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check url seen: %w", err)
	}
	return exists, nil
}

// Count returns the registry size.
func (r *FingerprintRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM url_fingerprints`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count fingerprints: %w", err)
	}
	return count, nil
}
