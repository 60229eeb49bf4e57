package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/failure"
)

// directoryWeight matches the suffix strategy, and directory hits count
// double in consensus: a curated media directory is the strongest external
// evidence available.
const (
	directoryWeight = 0.90
	directoryVotes  = 2
)

// DirectoryStrategy consults a third-party media directory keyed by
// domain. The strategy is disabled when no endpoint is configured.
type DirectoryStrategy struct {
	client   *remoteClient
	endpoint string
}

// NewDirectoryStrategy creates the directory strategy. An empty endpoint
// yields a strategy that never has an opinion.
func NewDirectoryStrategy(client *remoteClient, endpoint string) *DirectoryStrategy {
	return &DirectoryStrategy{client: client, endpoint: strings.TrimRight(endpoint, "/")}
}

func (s *DirectoryStrategy) Name() string { return "directory" }

type directoryResponse struct {
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

func (s *DirectoryStrategy) Resolve(ctx context.Context, domain, _ string) (*Signal, error) {
	if s.endpoint == "" {
		return nil, nil
	}

	var resp directoryResponse
	url := fmt.Sprintf("%s/sources/%s", s.endpoint, domain)
	if err := s.client.getJSON(ctx, "directory", url, &resp); err != nil {
		var statusErr *failure.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == 404 {
			return nil, nil
		}
		return nil, err
	}

	code := resolveCountryValue(resp.CountryCode)
	if code == "" {
		code = resolveCountryValue(resp.Country)
	}
	if code == "" {
		return nil, nil
	}
	return &Signal{CountryCode: code, Weight: directoryWeight, Votes: directoryVotes}, nil
}
