// Package geo resolves the country of origin for a media domain by running
// a chain of weighted strategies and folding their signals into a consensus.
package geo

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
)

// shortCircuitWeight ends the chain early: a signal at or above it is
// authoritative on its own.
const shortCircuitWeight = 0.9

// Signal is one strategy's opinion about a domain's country.
type Signal struct {
	// CountryCode is an ISO 3166-1 alpha-3 code, never UNK; strategies with
	// no opinion return a nil signal instead.
	CountryCode string
	// Weight is the strategy's trust level in (0, 1].
	Weight float64
	// Votes is how many times the signal counts toward consensus.
	// Zero is treated as one.
	Votes int
}

func (s *Signal) votes() int {
	if s.Votes <= 0 {
		return 1
	}
	return s.Votes
}

// Strategy is a single geo-resolution technique. The text argument carries
// extracted page text for strategies that can use it; most ignore it.
// Resolve returns a nil signal when the strategy has no opinion; errors
// are operational failures and never abort the chain.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, domain, text string) (*Signal, error)
}

// Finding records one strategy's contribution to a resolution.
type Finding struct {
	Strategy    string        `json:"strategy"`
	CountryCode string        `json:"country_code"`
	Weight      float64       `json:"weight"`
	Latency     time.Duration `json:"latency"`
}

// Resolution is the consensus outcome for a domain.
type Resolution struct {
	Domain      string            `json:"domain"`
	CountryCode string            `json:"country_code"`
	CountryName string            `json:"country_name"`
	Confidence  models.Confidence `json:"confidence"`
	// Method names the strategy that decided the outcome, or "consensus"
	// when several contributed.
	Method    string        `json:"method"`
	Findings  []Finding     `json:"findings,omitempty"`
	Latency   time.Duration `json:"latency"`
	FromCache bool          `json:"-"`
}
