package geo

import (
	"context"
	"strings"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/geodata"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/urlutil"
)

// overrideWeight is the trust level of curated, human-entered mappings.
const overrideWeight = 0.95

// OverrideStrategy answers from a curated domain-to-country map. It is the
// first and most trusted link in the chain. Exact matches win; otherwise a
// subdomain of a mapped domain inherits its country.
type OverrideStrategy struct {
	mappings map[string]string
}

// NewOverrideStrategy builds the override strategy from a domain->alpha3
// map. Keys are normalized to lowercase; invalid codes are dropped.
func NewOverrideStrategy(mappings map[string]string) *OverrideStrategy {
	clean := make(map[string]string, len(mappings))
	for domain, code := range mappings {
		code = strings.ToUpper(strings.TrimSpace(code))
		if geodata.IsValidCode(code) {
			clean[strings.ToLower(strings.TrimSpace(domain))] = code
		}
	}
	return &OverrideStrategy{mappings: clean}
}

func (s *OverrideStrategy) Name() string { return "override" }

func (s *OverrideStrategy) Resolve(_ context.Context, domain, _ string) (*Signal, error) {
	if code, ok := s.mappings[domain]; ok {
		return &Signal{CountryCode: code, Weight: overrideWeight}, nil
	}
	for mapped, code := range s.mappings {
		if urlutil.IsSubdomainOf(domain, mapped) {
			return &Signal{CountryCode: code, Weight: overrideWeight}, nil
		}
	}
	return nil, nil
}
