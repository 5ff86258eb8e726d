package models

import "fmt"

// Tier is one of four ordered health bands over the vegetation index.
type Tier string

const (
	TierHealthy  Tier = "Healthy"
	TierModerate Tier = "Moderate"
	TierSevere   Tier = "Severe"
	TierCritical Tier = "Critical"
)

// Color returns the map/legend color for the tier.
func (t Tier) Color() string {
	switch t {
	case TierHealthy:
		return "#2ecc71"
	case TierModerate:
		return "#f39c12"
	case TierSevere:
		return "#e74c3c"
	default:
		return "#8e44ad"
	}
}

// AtLeast reports whether the tier is as bad as or worse than other.
// Ordering: Healthy < Moderate < Severe < Critical.
func (t Tier) AtLeast(other Tier) bool {
	return t.rank() >= other.rank()
}

func (t Tier) rank() int {
	switch t {
	case TierHealthy:
		return 0
	case TierModerate:
		return 1
	case TierSevere:
		return 2
	default:
		return 3
	}
}

// TierThresholds are the classification cut points over the index domain.
// Each boundary value belongs to the tier above it: an index of exactly
// Healthy is Healthy, exactly Moderate is Moderate, exactly Severe is Severe.
type TierThresholds struct {
	Healthy  float64 `json:"healthy"`
	Moderate float64 `json:"moderate"`
	Severe   float64 `json:"severe"`
}

// DefaultTierThresholds returns the 0.6/0.3/0.1 cut points.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{Healthy: 0.6, Moderate: 0.3, Severe: 0.1}
}

// TierFor maps an index value onto exactly one tier.
func (tt TierThresholds) TierFor(v float64) Tier {
	switch {
	case v >= tt.Healthy:
		return TierHealthy
	case v >= tt.Moderate:
		return TierModerate
	case v >= tt.Severe:
		return TierSevere
	default:
		return TierCritical
	}
}

// Validate checks that the cut points form a strictly descending partition
// inside the index domain.
func (tt TierThresholds) Validate() error {
	if !(tt.Healthy > tt.Moderate && tt.Moderate > tt.Severe) {
		return fmt.Errorf("tier thresholds must satisfy healthy > moderate > severe, got %.3f/%.3f/%.3f",
			tt.Healthy, tt.Moderate, tt.Severe)
	}
	if tt.Healthy > 1.0 || tt.Severe < -1.0 {
		return fmt.Errorf("tier thresholds must lie within [-1, 1]")
	}
	return nil
}
