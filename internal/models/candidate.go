package models

import "time"

// CandidateStatus is the lifecycle state of a discovered domain.
type CandidateStatus string

const (
	StatusPending  CandidateStatus = "pending"
	StatusApproved CandidateStatus = "approved"
	StatusRejected CandidateStatus = "rejected"
	StatusPromoted CandidateStatus = "promoted"
)

// IsTerminal reports whether the status must never be silently overwritten
// by a lower-priority update.
func (s CandidateStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusPromoted:
		return true
	default:
		return false
	}
}

// CandidateSource tracks a domain discovered through citation analysis.
// CitationCount is monotonically non-decreasing; FoundOn always reflects the
// most recent citing URL.
type CandidateSource struct {
	ID            string          `json:"id" db:"id"`
	Domain        string          `json:"domain" db:"domain"`
	FoundOn       string          `json:"found_on" db:"found_on"`
	SuggestedTier Tier            `json:"suggested_tier" db:"suggested_tier"`
	Status        CandidateStatus `json:"status" db:"status"`
	CitationCount int             `json:"citation_count" db:"citation_count"`
	FirstSeenAt   time.Time       `json:"first_seen_at" db:"first_seen_at"`
}

// URLFingerprint is a dedup registry row: a content-addressed hash of a URL
// string and when it was first seen. A given hash is inserted at most once.
type URLFingerprint struct {
	Hash        int64     `json:"hash" db:"hash"`
	URL         string    `json:"url" db:"url"`
	FirstSeenAt time.Time `json:"first_seen_at" db:"first_seen_at"`
}
