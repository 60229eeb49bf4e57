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

// CandidateRepository handles candidate_sources rows.
type CandidateRepository struct {
	db  *sql.DB
	log logger.Logger
}

// NewCandidateRepository creates a candidate repository.
func NewCandidateRepository(db *sql.DB, log logger.Logger) *CandidateRepository {
	return &CandidateRepository{db: db, log: log}
}

// citationUpsertQuery records one citation in a single round trip. The
// increment happens server-side so concurrent workers cannot both read
// count N and write N+1. The returned status lets the caller detect
// terminal candidates without a second query.
const citationUpsertQuery = `
	INSERT INTO candidate_sources (
		id, domain, found_on, suggested_tier, status, citation_count, first_seen_at
	) VALUES ($1, $2, $3, $4, 'pending', 1, $5)
	ON CONFLICT (domain) DO UPDATE SET
		citation_count = candidate_sources.citation_count + 1,
		found_on = EXCLUDED.found_on,
		suggested_tier = CASE
			WHEN candidate_sources.status = 'pending' THEN EXCLUDED.suggested_tier
			ELSE candidate_sources.suggested_tier
		END
	RETURNING id, citation_count, status
`

// RecordCitation upserts one citation for a domain within an existing
// transaction and returns the updated count and current status.
func (r *CandidateRepository) RecordCitation(
	ctx context.Context,
	tx *sql.Tx,
	domain, foundOn string,
	suggestedTier models.Tier,
) (int, models.CandidateStatus, error) {
	var (
		id     string
		count  int
		status models.CandidateStatus
	)
	err := tx.QueryRowContext(ctx, citationUpsertQuery,
		uuid.New().String(),
		domain,
		foundOn,
		suggestedTier,
		time.Now(),
	).Scan(&id, &count, &status)
	if err != nil {
		return 0, "", fmt.Errorf("record citation: %w", err)
	}
	return count, status, nil
}

// MarkPromoted moves a pending candidate to promoted. Terminal states are
// left untouched; promoting an already-promoted or rejected candidate is a
// no-op rather than an error.
func (r *CandidateRepository) MarkPromoted(ctx context.Context, tx *sql.Tx, domain string) (bool, error) {
	query := `UPDATE candidate_sources SET status = 'promoted' WHERE domain = $1 AND status = 'pending'`

	result, err := tx.ExecContext(ctx, query, domain)
	if err != nil {
		return false, fmt.Errorf("mark promoted: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// SetStatus applies a review decision (approved or rejected) to a pending
// candidate.
func (r *CandidateRepository) SetStatus(ctx context.Context, domain string, status models.CandidateStatus) error {
	query := `UPDATE candidate_sources SET status = $2 WHERE domain = $1 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, domain, status)
	if err != nil {
		return fmt.Errorf("set candidate status: %w", err)
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

// GetByDomain fetches a candidate by domain.
func (r *CandidateRepository) GetByDomain(ctx context.Context, domain string) (*models.CandidateSource, error) {
	query := `
		SELECT id, domain, found_on, suggested_tier, status, citation_count, first_seen_at
		FROM candidate_sources WHERE domain = $1
	`

	var candidate models.CandidateSource
	err := r.db.QueryRowContext(ctx, query, domain).Scan(
		&candidate.ID,
		&candidate.Domain,
		&candidate.FoundOn,
		&candidate.SuggestedTier,
		&candidate.Status,
		&candidate.CitationCount,
		&candidate.FirstSeenAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query candidate: %w", err)
	}
	return &candidate, nil
}

// ListPending returns pending candidates ordered by citation count, the
// review queue for manual approval.
func (r *CandidateRepository) ListPending(ctx context.Context, limit int) ([]models.CandidateSource, error) {
	query := `
		SELECT id, domain, found_on, suggested_tier, status, citation_count, first_seen_at
		FROM candidate_sources
		WHERE status = 'pending'
		ORDER BY citation_count DESC, first_seen_at
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]models.CandidateSource, 0)
	for rows.Next() {
		var candidate models.CandidateSource
		if scanErr := rows.Scan(
			&candidate.ID,
			&candidate.Domain,
			&candidate.FoundOn,
			&candidate.SuggestedTier,
			&candidate.Status,
			&candidate.CitationCount,
			&candidate.FirstSeenAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan candidate: %w", scanErr)
		}
		candidates = append(candidates, candidate)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate candidates: %w", rowsErr)
	}
	return candidates, nil
}
