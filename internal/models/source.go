// Package models defines the catalog and discovery entities shared by the
// repositories and the engine.
package models

import "time"

// Tier is the coarse authority ranking of a media source.
// Tier-0 is transnational reach; lower tiers are national and local outlets.
type Tier string

const (
	Tier0       Tier = "Tier-0"
	Tier1       Tier = "Tier-1"
	Tier2       Tier = "Tier-2"
	TierUnknown Tier = "unknown"
)

// tierRank orders tiers for monotonic improvement; lower is better.
var tierRank = map[Tier]int{
	Tier0:       0,
	Tier1:       1,
	Tier2:       2,
	TierUnknown: 3,
}

// ParseTier normalizes a tier string, mapping anything unrecognized to
// TierUnknown.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case Tier0, Tier1, Tier2:
		return Tier(s)
	default:
		return TierUnknown
	}
}

// Rank returns the tier's ordinal; lower means higher authority.
func (t Tier) Rank() int {
	if r, ok := tierRank[t]; ok {
		return r
	}
	return tierRank[TierUnknown]
}

// BetterOf returns the higher-authority of two tiers. Promotion uses this so
// a curated Tier-0/Tier-1 entry is never downgraded.
func BetterOf(a, b Tier) Tier {
	if a.Rank() <= b.Rank() {
		return a
	}
	return b
}

// MediaSource is an authoritative catalog entry. Domain is the unique key,
// stored lowercase without a leading www prefix.
type MediaSource struct {
	ID           string    `json:"id" db:"id"`
	Domain       string    `json:"domain" db:"domain"`
	Name         string    `json:"name" db:"name"`
	Abbreviation *string   `json:"abbreviation,omitempty" db:"abbreviation"`
	CountryCode  string    `json:"country_code" db:"country_code"`
	CountryName  string    `json:"country_name" db:"country_name"`
	Language     string    `json:"language" db:"language"`
	Tier         Tier      `json:"tier" db:"tier"`
	LogoURL      string    `json:"logo_url" db:"logo_url"`
	Fingerprint  *int64    `json:"fingerprint,omitempty" db:"fingerprint"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
