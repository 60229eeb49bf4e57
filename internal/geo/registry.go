package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/failure"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/geodata"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/urlutil"
)

// registryWeight reflects that registrant country often differs from the
// audience country (holding companies, offshore registrars).
const registryWeight = 0.60

// RegistryStrategy looks up the registrant country through an RDAP
// endpoint. RDAP responses nest the address data inside vCard arrays with
// no fixed shape, so the lookup walks the decoded document for a country
// code or country name.
type RegistryStrategy struct {
	client   *remoteClient
	endpoint string
}

// NewRegistryStrategy creates the RDAP strategy against a base endpoint
// such as https://rdap.org.
func NewRegistryStrategy(client *remoteClient, endpoint string) *RegistryStrategy {
	return &RegistryStrategy{client: client, endpoint: strings.TrimRight(endpoint, "/")}
}

func (s *RegistryStrategy) Name() string { return "registry" }

func (s *RegistryStrategy) Resolve(ctx context.Context, domain, _ string) (*Signal, error) {
	registrable := urlutil.RegistrableDomain(domain)

	var doc map[string]any
	url := fmt.Sprintf("%s/domain/%s", s.endpoint, registrable)
	if err := s.client.getJSON(ctx, "rdap", url, &doc); err != nil {
		// Unregistered or privacy-shielded domains are a miss, not a failure.
		var statusErr *failure.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == 404 {
			return nil, nil
		}
		return nil, err
	}

	code := countryFromDocument(doc)
	if code == "" {
		return nil, nil
	}
	return &Signal{CountryCode: code, Weight: registryWeight}, nil
}

// countryFromDocument walks a decoded JSON document for the first value
// that resolves to a known country: a "cc"/"country" key holding an
// alpha-2 code or a country name.
func countryFromDocument(v any) string {
	switch node := v.(type) {
	case map[string]any:
		for _, key := range []string{"cc", "country"} {
			if raw, ok := node[key].(string); ok {
				if code := resolveCountryValue(raw); code != "" {
					return code
				}
			}
		}
		for _, child := range node {
			if code := countryFromDocument(child); code != "" {
				return code
			}
		}
	case []any:
		for _, child := range node {
			if code := countryFromDocument(child); code != "" {
				return code
			}
		}
	}
	return ""
}

func resolveCountryValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) == 2 {
		if code, ok := geodata.FromAlpha2(raw); ok {
			return code
		}
		return ""
	}
	if geodata.IsValidCode(raw) {
		return strings.ToUpper(raw)
	}
	if code, ok := geodata.CodeForName(raw); ok {
		return code
	}
	return ""
}
