// Package health fuses vegetation index statistics with ambient weather
// into a tiered crop health assessment with agronomic alerts.
package health

import (
	"errors"
	"fmt"
	"time"

	"agrisight/models"
)

// ErrMissingStatistics means the input stats carry no mean index value.
var ErrMissingStatistics = errors.New("health: index statistics missing mean")

// Config holds the classification and alert trigger thresholds. All of it
// is passed in explicitly so the classifier stays a pure function of its
// arguments.
type Config struct {
	Tiers models.TierThresholds

	FrostMarginC       float64 // frost alert below this air temperature
	DroughtMoisture    float64 // irrigation alert below this soil moisture
	WaterlogMoisture   float64 // irrigation alert above this soil moisture
	DiseaseHumidityPct float64 // disease alert above this humidity (with stress)
	SprayWindMps       float64 // spray drift alert above this wind speed
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		Tiers:              models.DefaultTierThresholds(),
		FrostMarginC:       2.0,
		DroughtMoisture:    0.2,
		WaterlogMoisture:   0.8,
		DiseaseHumidityPct: 80,
		SprayWindMps:       10,
	}
}

// Validate rejects threshold combinations that cannot partition their
// domains.
func (c Config) Validate() error {
	if err := c.Tiers.Validate(); err != nil {
		return err
	}
	if !(c.DroughtMoisture < c.WaterlogMoisture) {
		return fmt.Errorf("drought moisture bound %.2f must be below waterlog bound %.2f",
			c.DroughtMoisture, c.WaterlogMoisture)
	}
	return nil
}

// Classify derives a health assessment from index statistics and an
// optional weather record. With weather == nil the result is health-only:
// tier and score are set, alerts stay empty. Stats without a mean fail with
// ErrMissingStatistics.
//
// Soil moisture exactly at the drought or waterlog bound fires no alert;
// both sub-conditions are strict inequalities.
func Classify(stats models.IndexStats, weather *models.WeatherRecord, cfg Config) (*models.Assessment, error) {
	if stats.Mean == nil {
		return nil, ErrMissingStatistics
	}
	mean := *stats.Mean
	tier := cfg.Tiers.TierFor(mean)

	a := &models.Assessment{
		AssessedAt:  time.Now().UTC(),
		Tier:        tier,
		Score:       score(mean),
		HealthyPct:  stats.HealthyPct,
		ModeratePct: stats.ModeratePct,
		SeverePct:   stats.SeverePct,
		CriticalPct: stats.CriticalPct,
		Alerts:      []models.Alert{},
	}

	if weather != nil {
		a.Alerts = deriveAlerts(tier, weather, cfg)
	}
	a.Recommendations = recommend(a)
	return a, nil
}

// score normalizes a mean index from [-1,1] into [0,1], clamped.
func score(mean float64) float64 {
	s := (mean + 1) / 2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// deriveAlerts evaluates every alert rule independently; any subset may
// fire. Readings absent from the record never trigger their rule.
func deriveAlerts(tier models.Tier, w *models.WeatherRecord, cfg Config) []models.Alert {
	alerts := []models.Alert{}

	if w.TemperatureC != nil && *w.TemperatureC < cfg.FrostMarginC {
		alerts = append(alerts, models.Alert{
			Category: models.AlertFrost,
			Severity: 5,
			Message:  fmt.Sprintf("frost risk: air temperature at %.1f°C", *w.TemperatureC),
		})
	}

	if w.SoilMoisture != nil {
		switch m := *w.SoilMoisture; {
		case m < cfg.DroughtMoisture:
			alerts = append(alerts, models.Alert{
				Category: models.AlertIrrigation,
				Severity: 4,
				Message:  fmt.Sprintf("soil moisture deficit at %.0f%%, irrigation needed", m*100),
			})
		case m > cfg.WaterlogMoisture:
			alerts = append(alerts, models.Alert{
				Category: models.AlertIrrigation,
				Severity: 3,
				Message:  fmt.Sprintf("waterlogged soil at %.0f%%, suspend irrigation and check drainage", m*100),
			})
		}
	}

	// Disease pressure is a co-occurrence rule: humid air alone is not
	// actionable unless the canopy already shows stress.
	if w.HumidityPct != nil && *w.HumidityPct > cfg.DiseaseHumidityPct && tier.AtLeast(models.TierModerate) {
		alerts = append(alerts, models.Alert{
			Category: models.AlertDisease,
			Severity: 3,
			Message:  fmt.Sprintf("humidity at %.0f%% with stressed vegetation, scout for fungal pathogens", *w.HumidityPct),
		})
	}

	if w.WindSpeedMps != nil && *w.WindSpeedMps > cfg.SprayWindMps {
		alerts = append(alerts, models.Alert{
			Category: models.AlertSpray,
			Severity: 2,
			Message:  fmt.Sprintf("wind at %.1f m/s, unsuitable for pesticide application", *w.WindSpeedMps),
		})
	}

	return alerts
}

// recommend produces follow-up actions keyed by tier and active alerts.
func recommend(a *models.Assessment) []models.Recommendation {
	var recs []models.Recommendation

	switch a.Tier {
	case models.TierCritical:
		recs = append(recs, models.Recommendation{
			Priority: "HIGH",
			Action:   "Field Inspection",
			Detail:   "Field mean index is critical. Deploy ground crew for immediate visual inspection.",
		})
	case models.TierSevere:
		recs = append(recs, models.Recommendation{
			Priority: "HIGH",
			Action:   "Soil & Nutrient Test",
			Detail:   "Significant stress detected. Sample soil to identify nutrient deficiency or pH imbalance.",
		})
	case models.TierModerate:
		recs = append(recs, models.Recommendation{
			Priority: "MEDIUM",
			Action:   "Targeted Treatment",
			Detail:   "Apply variable-rate fertilizer or irrigation to stressed zones to prevent further decline.",
		})
	default:
		recs = append(recs, models.Recommendation{
			Priority: "LOW",
			Action:   "Routine Monitoring",
			Detail:   "Field is predominantly healthy. Continue scheduled monitoring.",
		})
	}

	for _, al := range a.Alerts {
		switch al.Category {
		case models.AlertFrost:
			recs = append(recs, models.Recommendation{
				Priority: "HIGH",
				Action:   "Frost Protection",
				Detail:   "Active vegetation with frost risk. Consider irrigation or covers overnight.",
			})
		case models.AlertIrrigation:
			recs = append(recs, models.Recommendation{
				Priority: "HIGH",
				Action:   "Review Irrigation Schedule",
				Detail:   al.Message,
			})
		case models.AlertDisease:
			recs = append(recs, models.Recommendation{
				Priority: "MEDIUM",
				Action:   "Disease Scouting",
				Detail:   "Conditions favor fungal pathogens. Scout stressed zones within 48 hours.",
			})
		case models.AlertSpray:
			recs = append(recs, models.Recommendation{
				Priority: "LOW",
				Action:   "Delay Spraying",
				Detail:   "Postpone pesticide application until wind drops below the drift threshold.",
			})
		}
	}
	return recs
}
