package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForPartition(t *testing.T) {
	tt := DefaultTierThresholds()

	cases := []struct {
		v    float64
		want Tier
	}{
		{0.9, TierHealthy},
		{0.6, TierHealthy}, // boundary belongs to the upper tier
		{0.59, TierModerate},
		{0.3, TierModerate},
		{0.29, TierSevere},
		{0.1, TierSevere},
		{0.0999, TierCritical},
		{-0.5, TierCritical},
		{-1, TierCritical},
		{1, TierHealthy},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, tt.TierFor(c.v), "value %v", c.v)
	}
}

func TestTierColor(t *testing.T) {
	assert.Equal(t, "#2ecc71", TierHealthy.Color())
	assert.Equal(t, "#f39c12", TierModerate.Color())
	assert.Equal(t, "#e74c3c", TierSevere.Color())
	assert.Equal(t, "#8e44ad", TierCritical.Color())
}

func TestTierAtLeast(t *testing.T) {
	assert.True(t, TierCritical.AtLeast(TierModerate))
	assert.True(t, TierModerate.AtLeast(TierModerate))
	assert.False(t, TierHealthy.AtLeast(TierModerate))
}

func TestTierThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultTierThresholds().Validate())

	bad := TierThresholds{Healthy: 0.3, Moderate: 0.3, Severe: 0.1}
	assert.Error(t, bad.Validate(), "thresholds must be strictly descending")

	out := TierThresholds{Healthy: 1.5, Moderate: 0.3, Severe: 0.1}
	assert.Error(t, out.Validate(), "thresholds must lie within the index range")
}
