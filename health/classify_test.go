package health

import (
	"testing"

	"agrisight/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func statsWithMean(mean float64) models.IndexStats {
	return models.IndexStats{Mean: fptr(mean), ValidPixels: 100}
}

func TestClassifyMissingMean(t *testing.T) {
	_, err := Classify(models.IndexStats{}, nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrMissingStatistics)
}

func TestClassifyWithoutWeather(t *testing.T) {
	a, err := Classify(statsWithMean(0.72), nil, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, models.TierHealthy, a.Tier)
	assert.InDelta(t, 0.86, a.Score, 1e-12)
	assert.Empty(t, a.Alerts)
	require.NotEmpty(t, a.Recommendations)
	assert.Equal(t, "Routine Monitoring", a.Recommendations[0].Action)
}

func TestClassifyScoreClamped(t *testing.T) {
	a, err := Classify(statsWithMean(-1), nil, DefaultConfig())
	require.NoError(t, err)
	assert.Zero(t, a.Score)

	a, err = Classify(statsWithMean(1), nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.Score)
}

func TestClassifyTierRecommendations(t *testing.T) {
	cases := []struct {
		mean   float64
		tier   models.Tier
		action string
	}{
		{0.8, models.TierHealthy, "Routine Monitoring"},
		{0.4, models.TierModerate, "Targeted Treatment"},
		{0.2, models.TierSevere, "Soil & Nutrient Test"},
		{0.0, models.TierCritical, "Field Inspection"},
	}
	for _, c := range cases {
		a, err := Classify(statsWithMean(c.mean), nil, DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, c.tier, a.Tier)
		require.NotEmpty(t, a.Recommendations)
		assert.Equal(t, c.action, a.Recommendations[0].Action, "mean %v", c.mean)
	}
}

func TestClassifyAlertRules(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name    string
		mean    float64
		weather models.WeatherRecord
		want    []models.AlertCategory
	}{
		{
			name:    "frost",
			mean:    0.7,
			weather: models.WeatherRecord{TemperatureC: fptr(1.5)},
			want:    []models.AlertCategory{models.AlertFrost},
		},
		{
			name:    "no frost at margin",
			mean:    0.7,
			weather: models.WeatherRecord{TemperatureC: fptr(2.0)},
			want:    nil,
		},
		{
			name:    "drought",
			mean:    0.7,
			weather: models.WeatherRecord{SoilMoisture: fptr(0.1)},
			want:    []models.AlertCategory{models.AlertIrrigation},
		},
		{
			name:    "waterlogged",
			mean:    0.7,
			weather: models.WeatherRecord{SoilMoisture: fptr(0.9)},
			want:    []models.AlertCategory{models.AlertIrrigation},
		},
		{
			name:    "moisture exactly at drought bound",
			mean:    0.7,
			weather: models.WeatherRecord{SoilMoisture: fptr(0.2)},
			want:    nil,
		},
		{
			name:    "moisture exactly at waterlog bound",
			mean:    0.7,
			weather: models.WeatherRecord{SoilMoisture: fptr(0.8)},
			want:    nil,
		},
		{
			name:    "disease needs stress",
			mean:    0.7, // healthy canopy
			weather: models.WeatherRecord{HumidityPct: fptr(90)},
			want:    nil,
		},
		{
			name:    "disease with stressed canopy",
			mean:    0.4,
			weather: models.WeatherRecord{HumidityPct: fptr(90)},
			want:    []models.AlertCategory{models.AlertDisease},
		},
		{
			name:    "spray drift",
			mean:    0.7,
			weather: models.WeatherRecord{WindSpeedMps: fptr(12)},
			want:    []models.AlertCategory{models.AlertSpray},
		},
		{
			name:    "absent readings fire nothing",
			mean:    0.0,
			weather: models.WeatherRecord{},
			want:    nil,
		},
		{
			name: "multiple rules fire together",
			mean: 0.2,
			weather: models.WeatherRecord{
				TemperatureC: fptr(0),
				SoilMoisture: fptr(0.05),
				HumidityPct:  fptr(95),
				WindSpeedMps: fptr(15),
			},
			want: []models.AlertCategory{
				models.AlertFrost, models.AlertIrrigation,
				models.AlertDisease, models.AlertSpray,
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Classify(statsWithMean(c.mean), &c.weather, cfg)
			require.NoError(t, err)

			assert.Len(t, a.Alerts, len(c.want))
			for _, cat := range c.want {
				assert.True(t, a.HasAlert(cat), "expected %s alert", cat)
			}
		})
	}
}

func TestClassifySeverities(t *testing.T) {
	w := models.WeatherRecord{
		TemperatureC: fptr(-2),
		SoilMoisture: fptr(0.05),
	}
	a, err := Classify(statsWithMean(0.7), &w, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, a.Alerts, 2)

	for _, al := range a.Alerts {
		switch al.Category {
		case models.AlertFrost:
			assert.Equal(t, 5, al.Severity)
		case models.AlertIrrigation:
			assert.Equal(t, 4, al.Severity)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.DroughtMoisture = 0.9
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Tiers = models.TierThresholds{Healthy: 0.1, Moderate: 0.3, Severe: 0.6}
	assert.Error(t, bad.Validate())
}
