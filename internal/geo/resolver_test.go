package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
)

// stubStrategy is a scripted chain link that counts its invocations.
type stubStrategy struct {
	name   string
	signal *Signal
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Resolve(context.Context, string, string) (*Signal, error) {
	s.calls++
	return s.signal, s.err
}

func newTestResolver(strategies ...Strategy) *Resolver {
	return NewResolver(strategies, nil, nil, logger.NewNop())
}

func resolve(t *testing.T, r *Resolver, domain string) *Resolution {
	t.Helper()
	resolution, err := r.Resolve(context.Background(), domain, "", models.TierUnknown)
	require.NoError(t, err)
	return resolution
}

func TestResolveShortCircuitsOnAuthoritativeSignal(t *testing.T) {
	strong := &stubStrategy{name: "first", signal: &Signal{CountryCode: "CAN", Weight: 0.95}}
	never := &stubStrategy{name: "second", signal: &Signal{CountryCode: "FRA", Weight: 0.9}}

	resolution := resolve(t, newTestResolver(strong, never), "cbc.ca")

	assert.Equal(t, "CAN", resolution.CountryCode)
	assert.Equal(t, "Canada", resolution.CountryName)
	assert.Equal(t, models.ConfidenceHigh, resolution.Confidence)
	assert.Equal(t, "first", resolution.Method)
	assert.Equal(t, 0, never.calls, "chain must stop after an authoritative signal")
}

func TestResolveTwoAgreeingSignalsAreHighConfidence(t *testing.T) {
	a := &stubStrategy{name: "registry", signal: &Signal{CountryCode: "DEU", Weight: 0.6}}
	b := &stubStrategy{name: "ip", signal: &Signal{CountryCode: "DEU", Weight: 0.4}}

	resolution := resolve(t, newTestResolver(a, b), "example.com")

	assert.Equal(t, "DEU", resolution.CountryCode)
	assert.Equal(t, models.ConfidenceHigh, resolution.Confidence)
	assert.Equal(t, "consensus", resolution.Method)
	assert.Len(t, resolution.Findings, 2)
}

func TestResolveSingleSignalIsMediumConfidence(t *testing.T) {
	only := &stubStrategy{name: "registry", signal: &Signal{CountryCode: "IRL", Weight: 0.6}}

	resolution := resolve(t, newTestResolver(only), "example.com")

	assert.Equal(t, "IRL", resolution.CountryCode)
	assert.Equal(t, models.ConfidenceMedium, resolution.Confidence)
	assert.Equal(t, "registry", resolution.Method)
}

func TestResolveConflictingSignalsAreLowConfidence(t *testing.T) {
	a := &stubStrategy{name: "registry", signal: &Signal{CountryCode: "IRL", Weight: 0.6}}
	b := &stubStrategy{name: "text", signal: &Signal{CountryCode: "USA", Weight: 0.5}}

	resolution := resolve(t, newTestResolver(a, b), "example.com")

	assert.Equal(t, "IRL", resolution.CountryCode, "heavier vote wins")
	assert.Equal(t, models.ConfidenceLow, resolution.Confidence)
}

func TestResolveTieBrokenByFirstSeen(t *testing.T) {
	a := &stubStrategy{name: "registry", signal: &Signal{CountryCode: "NOR", Weight: 0.5}}
	b := &stubStrategy{name: "text", signal: &Signal{CountryCode: "SWE", Weight: 0.5}}

	resolution := resolve(t, newTestResolver(a, b), "example.com")

	assert.Equal(t, "NOR", resolution.CountryCode)
}

func TestResolveDoubleVotesForceHighConfidence(t *testing.T) {
	directory := &stubStrategy{name: "directory", signal: &Signal{CountryCode: "JPN", Weight: 0.45, Votes: 2}}
	other := &stubStrategy{name: "registry", signal: &Signal{CountryCode: "KOR", Weight: 0.6}}

	resolution := resolve(t, newTestResolver(directory, other), "example.com")

	assert.Equal(t, "JPN", resolution.CountryCode)
	assert.Equal(t, models.ConfidenceHigh, resolution.Confidence)
}

func TestResolveStrategyErrorsDoNotAbortChain(t *testing.T) {
	failing := &stubStrategy{name: "registry", err: errors.New("rdap unreachable")}
	working := &stubStrategy{name: "ip", signal: &Signal{CountryCode: "BRA", Weight: 0.4}}

	resolution := resolve(t, newTestResolver(failing, working), "example.com")

	assert.Equal(t, "BRA", resolution.CountryCode)
	assert.Equal(t, models.ConfidenceMedium, resolution.Confidence)
}

func TestResolveNoSignalsYieldsUnknown(t *testing.T) {
	silent := &stubStrategy{name: "override"}

	resolution := resolve(t, newTestResolver(silent), "example.com")

	assert.Equal(t, "UNK", resolution.CountryCode)
	assert.Equal(t, models.ConfidenceUnknown, resolution.Confidence)
	assert.Equal(t, "none", resolution.Method)
}

func TestResolveIgnoresInvalidCodes(t *testing.T) {
	bogus := &stubStrategy{name: "registry", signal: &Signal{CountryCode: "XXX", Weight: 0.95}}

	resolution := resolve(t, newTestResolver(bogus), "example.com")

	assert.Equal(t, "UNK", resolution.CountryCode)
}

func TestResolveNormalizesInput(t *testing.T) {
	resolution := resolve(t, newTestResolver(NewSuffixStrategy()), "https://WWW.BBC.CO.UK/news")

	assert.Equal(t, "bbc.co.uk", resolution.Domain)
	assert.Equal(t, "GBR", resolution.CountryCode)
	assert.Equal(t, models.ConfidenceHigh, resolution.Confidence)
}

func TestResolveRejectsEmptyDomain(t *testing.T) {
	_, err := newTestResolver().Resolve(context.Background(), "   ", "", models.TierUnknown)
	require.Error(t, err)
}

// memoryCache is an in-process stand-in for the Redis cache.
type memoryCache struct {
	entries map[string]*Resolution
	puts    int
}

func (c *memoryCache) Get(_ context.Context, domain string) (*Resolution, bool) {
	resolution, ok := c.entries[domain]
	if !ok {
		return nil, false
	}
	copied := *resolution
	copied.FromCache = true
	copied.Confidence = models.ConfidenceHigh
	return &copied, true
}

func (c *memoryCache) Put(_ context.Context, domain string, resolution *Resolution, _ models.Tier) {
	c.puts++
	c.entries[domain] = resolution
}

func TestResolveSecondLookupServedFromCache(t *testing.T) {
	strategy := &stubStrategy{name: "registry", signal: &Signal{CountryCode: "AUS", Weight: 0.6}}
	cache := &memoryCache{entries: map[string]*Resolution{}}

	r := newTestResolver(strategy)
	r.cache = cache

	first := resolve(t, r, "theage.com.au")
	second := resolve(t, r, "theage.com.au")

	assert.Equal(t, 1, strategy.calls, "cached lookup must not re-run the chain")
	assert.Equal(t, 1, cache.puts)
	assert.Equal(t, first.CountryCode, second.CountryCode)
	assert.True(t, second.FromCache)
	assert.Equal(t, models.ConfidenceHigh, second.Confidence)
}

func TestResolveDoesNotCacheUnknown(t *testing.T) {
	cache := &memoryCache{entries: map[string]*Resolution{}}

	r := newTestResolver(&stubStrategy{name: "override"})
	r.cache = cache

	resolution := resolve(t, r, "example.com")

	assert.Equal(t, "UNK", resolution.CountryCode)
	assert.Zero(t, cache.puts)
}

func TestResolvePassesTextToStrategies(t *testing.T) {
	text := "ottawa reports from canada as canadian lawmakers debate"

	resolution, err := newTestResolver(NewTextStrategy()).
		Resolve(context.Background(), "example.com", text, models.TierUnknown)
	require.NoError(t, err)

	assert.Equal(t, "CAN", resolution.CountryCode)
	assert.Equal(t, models.ConfidenceMedium, resolution.Confidence)
}
