package geo

import (
	"context"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/geodata"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/urlutil"
)

// suffixWeight reflects that a ccTLD is a near-certain origin marker.
const suffixWeight = 0.90

// ccTLDExceptions covers country-code TLDs that do not match the country's
// ISO alpha-2 code.
var ccTLDExceptions = map[string]string{
	"uk": "GB",
}

// genericCcTLDs are country TLDs marketed and used globally; their
// presence says nothing about where the outlet operates.
var genericCcTLDs = map[string]bool{
	"io": true, "tv": true, "me": true, "co": true, "fm": true,
	"ai": true, "ly": true, "cc": true, "ws": true, "nu": true,
	"tk": true, "to": true, "gg": true, "st": true, "la": true,
}

// SuffixStrategy maps a country-code TLD to its country. Generic TLDs
// (com, org, net) and generic-use ccTLDs yield no signal.
type SuffixStrategy struct{}

// NewSuffixStrategy creates the ccTLD strategy.
func NewSuffixStrategy() *SuffixStrategy {
	return &SuffixStrategy{}
}

func (s *SuffixStrategy) Name() string { return "suffix" }

func (s *SuffixStrategy) Resolve(_ context.Context, domain, _ string) (*Signal, error) {
	label := urlutil.CountryLabel(domain)
	if len(label) != 2 || genericCcTLDs[label] {
		return nil, nil
	}
	if mapped, ok := ccTLDExceptions[label]; ok {
		label = mapped
	}
	code, ok := geodata.FromAlpha2(label)
	if !ok {
		return nil, nil
	}
	return &Signal{CountryCode: code, Weight: suffixWeight}, nil
}
