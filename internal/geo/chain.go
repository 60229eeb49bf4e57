package geo

import (
	"github.com/jonesrussell/north-cloud/source-discovery/internal/circuitbreaker"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/config"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/metrics"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/retry"
)

// NewChain assembles the production strategy chain: override, suffix,
// registry, IP geolocation, directory, free text. Overrides is the curated
// domain->alpha3 map, usually loaded from the seed catalog.
func NewChain(
	cfg *config.GeoConfig,
	breakers *circuitbreaker.Registry,
	m *metrics.Metrics,
	overrides map[string]string,
) []Strategy {
	policy := retry.DefaultPolicy()
	policy.OnFailure = m.RecordFailure
	client := newRemoteClient(breakers, policy, cfg.StrategyTimeout)

	return []Strategy{
		NewOverrideStrategy(overrides),
		NewSuffixStrategy(),
		NewRegistryStrategy(client, cfg.RDAPEndpoint),
		NewIPGeoStrategy(client, cfg.IPAPIEndpoint),
		NewDirectoryStrategy(client, cfg.DirectoryEndpoint),
		NewTextStrategy(),
	}
}
