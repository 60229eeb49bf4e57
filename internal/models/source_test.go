package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTier(t *testing.T) {
	assert.Equal(t, Tier0, ParseTier("Tier-0"))
	assert.Equal(t, Tier2, ParseTier("Tier-2"))
	assert.Equal(t, TierUnknown, ParseTier("Tier-9"))
	assert.Equal(t, TierUnknown, ParseTier(""))
}

func TestBetterOfNeverDowngrades(t *testing.T) {
	assert.Equal(t, Tier0, BetterOf(Tier0, Tier2))
	assert.Equal(t, Tier0, BetterOf(Tier2, Tier0))
	assert.Equal(t, Tier1, BetterOf(Tier1, TierUnknown))
	assert.Equal(t, Tier2, BetterOf(Tier2, Tier2))
}

func TestCandidateStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusPromoted.IsTerminal())
}

func TestConfidenceOrdering(t *testing.T) {
	assert.True(t, ConfidenceHigh.AtLeast(ConfidenceMedium))
	assert.True(t, ConfidenceMedium.AtLeast(ConfidenceMedium))
	assert.False(t, ConfidenceLow.AtLeast(ConfidenceMedium))
	assert.Equal(t, "unknown", ConfidenceUnknown.String())
	assert.Equal(t, "high", ConfidenceHigh.String())
}
