package weather

import (
	"context"
	"testing"
	"time"

	"agrisight/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSyntheticFetchDeterministic(t *testing.T) {
	at := time.Date(2026, 7, 10, 14, 0, 0, 0, time.UTC)
	src := NewSyntheticSource(99)
	src.Now = fixedClock(at)

	loc := Location{Name: "demo-field", Lat: 41.88, Lon: -93.1}

	a, err := src.Fetch(context.Background(), loc)
	require.NoError(t, err)
	b, err := src.Fetch(context.Background(), loc)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSyntheticFetchEmptyLocation(t *testing.T) {
	src := NewSyntheticSource(1)

	rec, err := src.Fetch(context.Background(), Location{})
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSyntheticFetchPlausibleRanges(t *testing.T) {
	at := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	for seed := int64(0); seed < 20; seed++ {
		src := NewSyntheticSource(seed)
		src.Now = fixedClock(at)

		rec, err := src.Fetch(context.Background(), Location{Name: "demo-field"})
		require.NoError(t, err)
		require.NotNil(t, rec)

		assert.Equal(t, "demo-field", rec.Location)
		assert.Equal(t, models.SourceSynthetic, rec.Source)
		assert.Equal(t, at, rec.ObservedAt)

		require.NotNil(t, rec.HumidityPct)
		assert.GreaterOrEqual(t, *rec.HumidityPct, 20.0)
		assert.LessOrEqual(t, *rec.HumidityPct, 95.0)

		require.NotNil(t, rec.WindSpeedMps)
		assert.GreaterOrEqual(t, *rec.WindSpeedMps, 0.0)

		require.NotNil(t, rec.SoilMoisture)
		assert.GreaterOrEqual(t, *rec.SoilMoisture, 0.05)
		assert.LessOrEqual(t, *rec.SoilMoisture, 0.95)

		require.NotNil(t, rec.CloudCoverPct)
		assert.GreaterOrEqual(t, *rec.CloudCoverPct, 0.0)
		assert.LessOrEqual(t, *rec.CloudCoverPct, 100.0)

		assert.NotEmpty(t, rec.Description)
	}
}

func TestSyntheticSeasonalSwing(t *testing.T) {
	// July should run warmer than January for the same seed
	summer := NewSyntheticSource(5)
	summer.Now = fixedClock(time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC))
	winter := NewSyntheticSource(5)
	winter.Now = fixedClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	s, err := summer.Fetch(context.Background(), Location{Name: "f"})
	require.NoError(t, err)
	w, err := winter.Fetch(context.Background(), Location{Name: "f"})
	require.NoError(t, err)

	require.NotNil(t, s.TemperatureC)
	require.NotNil(t, w.TemperatureC)
	assert.Greater(t, *s.TemperatureC, *w.TemperatureC)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "heavy rain", describe(20, 90, 8))
	assert.Equal(t, "light rain", describe(20, 90, 2))
	assert.Equal(t, "overcast", describe(20, 90, 0))
	assert.Equal(t, "partly cloudy", describe(20, 60, 0))
	assert.Equal(t, "cold and clear", describe(-5, 10, 0))
	assert.Equal(t, "clear sky", describe(20, 10, 0))
}
