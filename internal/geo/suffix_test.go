package geo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuffixStrategy(t *testing.T) {
	tests := []struct {
		domain string
		code   string
	}{
		{"bbc.co.uk", "GBR"},
		{"lemonde.fr", "FRA"},
		{"smh.com.au", "AUS"},
		{"cbc.ca", "CAN"},
		{"example.com", ""},
		{"example.org", ""},
		{"startup.io", ""},
		{"channel.tv", ""},
	}

	strategy := NewSuffixStrategy()
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			signal, err := strategy.Resolve(context.Background(), tt.domain, "")
			require.NoError(t, err)

			if tt.code == "" {
				assert.Nil(t, signal)
				return
			}
			require.NotNil(t, signal)
			assert.Equal(t, tt.code, signal.CountryCode)
			assert.InDelta(t, suffixWeight, signal.Weight, 0.0001)
		})
	}
}

func TestOverrideStrategy(t *testing.T) {
	strategy := NewOverrideStrategy(map[string]string{
		"Aljazeera.com": "qat",
		"bogus.example": "ZZZ",
	})

	signal, err := strategy.Resolve(context.Background(), "aljazeera.com", "")
	require.NoError(t, err)
	require.NotNil(t, signal)
	assert.Equal(t, "QAT", signal.CountryCode)
	assert.InDelta(t, overrideWeight, signal.Weight, 0.0001)

	signal, err = strategy.Resolve(context.Background(), "bogus.example", "")
	require.NoError(t, err)
	assert.Nil(t, signal, "invalid override codes are dropped at construction")
}

func TestOverrideStrategyMatchesSubdomains(t *testing.T) {
	strategy := NewOverrideStrategy(map[string]string{"aljazeera.com": "QAT"})

	signal, err := strategy.Resolve(context.Background(), "live.aljazeera.com", "")
	require.NoError(t, err)
	require.NotNil(t, signal)
	assert.Equal(t, "QAT", signal.CountryCode)
}

func TestTextStrategyNeedsRepeatedMentions(t *testing.T) {
	strategy := NewTextStrategy()

	signal, err := strategy.Resolve(context.Background(), "example.com", "one stray mention of france here")
	require.NoError(t, err)
	assert.Nil(t, signal)

	signal, err = strategy.Resolve(context.Background(), "example.com",
		"France votes today. Polls across France opened early, french officials said.")
	require.NoError(t, err)
	require.NotNil(t, signal)
	assert.Equal(t, "FRA", signal.CountryCode)
}

func TestTextStrategyEmptyText(t *testing.T) {
	signal, err := NewTextStrategy().Resolve(context.Background(), "example.com", "  ")
	require.NoError(t, err)
	assert.Nil(t, signal)
}

func TestDominantCountry(t *testing.T) {
	text := "breaking news from canada today. canada and the united states " +
		"signed a deal. canadian officials confirmed."

	code, count := dominantCountry(text)
	assert.Equal(t, "CAN", code)
	assert.GreaterOrEqual(t, count, 3)
}

func TestDominantCountryIgnoresSubstrings(t *testing.T) {
	code, _ := dominantCountry("the best chinatown restaurants")
	assert.NotEqual(t, "CHN", code)
}
