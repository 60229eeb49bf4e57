package geo

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/geodata"
)

// ipGeoWeight is deliberately low: CDNs and cloud hosting put most large
// sites in a country unrelated to their audience.
const ipGeoWeight = 0.40

// IPGeoStrategy resolves the domain's address and geolocates it through an
// ip-api style endpoint.
type IPGeoStrategy struct {
	client   *remoteClient
	endpoint string
	resolver *net.Resolver
}

// NewIPGeoStrategy creates the IP-geolocation strategy against a base
// endpoint such as http://ip-api.com/json.
func NewIPGeoStrategy(client *remoteClient, endpoint string) *IPGeoStrategy {
	return &IPGeoStrategy{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		resolver: net.DefaultResolver,
	}
}

func (s *IPGeoStrategy) Name() string { return "ip" }

type ipAPIResponse struct {
	Status      string `json:"status"`
	CountryCode string `json:"countryCode"`
	Country     string `json:"country"`
}

func (s *IPGeoStrategy) Resolve(ctx context.Context, domain, _ string) (*Signal, error) {
	addrs, err := s.resolver.LookupHost(ctx, domain)
	if err != nil || len(addrs) == 0 {
		// Unresolvable hosts are an abstention; DNS failure classification
		// happens at the fetch layer, not here.
		return nil, nil
	}

	var resp ipAPIResponse
	url := fmt.Sprintf("%s/%s?fields=status,country,countryCode", s.endpoint, addrs[0])
	if err := s.client.getJSON(ctx, "ipapi", url, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, nil
	}

	code, ok := geodata.FromAlpha2(resp.CountryCode)
	if !ok {
		if code, ok = geodata.CodeForName(resp.Country); !ok {
			return nil, nil
		}
	}
	return &Signal{CountryCode: code, Weight: ipGeoWeight}, nil
}
