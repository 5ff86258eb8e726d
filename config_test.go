package main

import (
	"testing"
	"time"

	"agrisight/health"
	"agrisight/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	fields := parseFields("north:41.878,-93.098; south : 41.820 , -93.100")
	require.Len(t, fields, 2)
	assert.Equal(t, FieldSpec{Name: "north", Lat: 41.878, Lon: -93.098}, fields[0])
	assert.Equal(t, FieldSpec{Name: "south", Lat: 41.820, Lon: -93.100}, fields[1])
}

func TestParseFieldsSkipsMalformed(t *testing.T) {
	fields := parseFields("good:1,2;;nocoords;badlat:x,2;missinglon:1")
	require.Len(t, fields, 1)
	assert.Equal(t, "good", fields[0].Name)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Health:      health.DefaultConfig(),
		StepTimeout: 30 * time.Second,
		Fields:      []FieldSpec{{Name: "f", Lat: 41, Lon: -93}},
	}
	require.NoError(t, valid.Validate())

	noFields := valid
	noFields.Fields = nil
	assert.Error(t, noFields.Validate())

	badTimeout := valid
	badTimeout.StepTimeout = 0
	assert.Error(t, badTimeout.Validate())

	badTiers := valid
	badTiers.Health.Tiers = models.TierThresholds{Healthy: 0.1, Moderate: 0.3, Severe: 0.6}
	assert.Error(t, badTiers.Validate())
}

func TestBBoxFor(t *testing.T) {
	cfg := Config{BBoxSizeKm: 2.0}
	f := FieldSpec{Name: "f", Lat: 41.878, Lon: -93.098}

	box := cfg.BBoxFor(f)
	assert.Less(t, box.West, f.Lon)
	assert.Greater(t, box.East, f.Lon)
	assert.Less(t, box.South, f.Lat)
	assert.Greater(t, box.North, f.Lat)

	// 2 km at ~111 km/deg is about 0.018 degrees of latitude
	assert.InDelta(t, 2.0/111.0, box.North-box.South, 1e-9)
	assert.InDelta(t, f.Lat, box.CenterLat(), 1e-12)
	assert.InDelta(t, f.Lon, box.CenterLon(), 1e-12)
}

func TestMustConfigDefaults(t *testing.T) {
	cfg := mustConfig()

	assert.Equal(t, "agrisight", cfg.MongoDB)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 512, cfg.ImageSize)
	assert.Equal(t, 100, cfg.MinPlotArea)
	assert.Equal(t, 30*time.Second, cfg.StepTimeout)
	assert.Equal(t, models.DefaultTierThresholds(), cfg.Health.Tiers)
	require.Len(t, cfg.Fields, 1)
	assert.Equal(t, "demo-field", cfg.Fields[0].Name)
	require.NoError(t, cfg.Validate())
}

func TestGetenvHelpers(t *testing.T) {
	t.Setenv("AGRISIGHT_TEST_FLOAT", "0.55")
	t.Setenv("AGRISIGHT_TEST_INT", "7")
	t.Setenv("AGRISIGHT_TEST_DUR", "90s")
	t.Setenv("AGRISIGHT_TEST_BADFLOAT", "nope")

	assert.Equal(t, 0.55, getenvFloat("AGRISIGHT_TEST_FLOAT", 1))
	assert.Equal(t, 7, getenvInt("AGRISIGHT_TEST_INT", 1))
	assert.Equal(t, 90*time.Second, getenvDuration("AGRISIGHT_TEST_DUR", time.Second))
	assert.Equal(t, 1.0, getenvFloat("AGRISIGHT_TEST_BADFLOAT", 1))
	assert.Equal(t, "fallback", getenv("AGRISIGHT_TEST_UNSET", "fallback"))
}
