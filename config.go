package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"agrisight/health"
	"agrisight/models"
	"agrisight/weather"
)

// FieldSpec is one monitored field parsed from the FIELDS env var.
type FieldSpec struct {
	Name string
	Lat  float64
	Lon  float64
}

type Config struct {
	MongoURI string
	MongoDB  string
	Port     string

	JWTSecret     string
	AdminUser     string
	AdminPassHash string // bcrypt hash; empty disables login

	// Imagery provider; an empty token selects the synthetic source.
	HubBaseURL string
	HubToken   string

	// Weather provider; an empty key selects the synthetic source.
	OpenWeatherKey string

	// Monitored fields and scene geometry.
	Fields     []FieldSpec
	BBoxSizeKm float64
	ImageSize  int

	// Pipeline tuning.
	Health       health.Config
	MinPlotArea  int
	StepTimeout  time.Duration
	Parallel     int
	CronSpec     string // empty disables the scheduler
	ArtifactsDir string
}

func mustConfig() Config {
	cfg := Config{
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getenv("MONGO_DB", "agrisight"),
		Port:          getenv("PORT", "8080"),
		JWTSecret:     getenv("JWT_SECRET", "change_me"),
		AdminUser:     getenv("ADMIN_USER", "operator"),
		AdminPassHash: getenv("ADMIN_PASSWORD_HASH", ""),

		HubBaseURL:     getenv("SENTINEL_HUB_URL", "https://services.sentinel-hub.com"),
		HubToken:       getenv("SENTINEL_HUB_TOKEN", ""),
		OpenWeatherKey: getenv("OPENWEATHERMAP_API_KEY", ""),

		BBoxSizeKm:   getenvFloat("FIELD_BBOX_SIZE_KM", 2.0),
		ImageSize:    getenvInt("IMAGE_SIZE_PX", 512),
		MinPlotArea:  getenvInt("MIN_PLOT_AREA", 100),
		StepTimeout:  getenvDuration("STEP_TIMEOUT", 30*time.Second),
		Parallel:     getenvInt("PARALLEL_SCENES", 1),
		CronSpec:     getenv("PIPELINE_CRON", "@every 5m"),
		ArtifactsDir: getenv("ARTIFACTS_DIR", "data/processed"),
	}

	cfg.Health = health.Config{
		Tiers: models.TierThresholds{
			Healthy:  getenvFloat("NDVI_HEALTHY_THRESHOLD", 0.6),
			Moderate: getenvFloat("NDVI_MODERATE_THRESHOLD", 0.3),
			Severe:   getenvFloat("NDVI_SEVERE_THRESHOLD", 0.1),
		},
		FrostMarginC:       getenvFloat("FROST_MARGIN_C", 2.0),
		DroughtMoisture:    getenvFloat("DROUGHT_MOISTURE", 0.2),
		WaterlogMoisture:   getenvFloat("WATERLOG_MOISTURE", 0.8),
		DiseaseHumidityPct: getenvFloat("DISEASE_HUMIDITY_PCT", 80),
		SprayWindMps:       getenvFloat("SPRAY_WIND_MPS", 10),
	}

	cfg.Fields = parseFields(getenv("FIELDS", "demo-field:41.878,-93.098"))

	return cfg
}

// Validate rejects an unusable configuration at startup, before any scene
// is processed.
func (c Config) Validate() error {
	if err := c.Health.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	if c.MinPlotArea < 0 {
		return fmt.Errorf("configuration: MIN_PLOT_AREA must be >= 0")
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("configuration: STEP_TIMEOUT must be positive")
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("configuration: FIELDS must name at least one field")
	}
	return nil
}

// BBoxFor computes a field's extent from its center point and the
// configured box size, using approximate degrees-per-km at mid-latitudes.
func (c Config) BBoxFor(f FieldSpec) models.BBox {
	const degPerKmLat = 1 / 111.0
	degPerKmLon := 1 / (111.0 * 0.75) // ~cos(42°)

	half := c.BBoxSizeKm / 2
	return models.BBox{
		West:  f.Lon - half*degPerKmLon,
		South: f.Lat - half*degPerKmLat,
		East:  f.Lon + half*degPerKmLon,
		North: f.Lat + half*degPerKmLat,
	}
}

// Location exposes a field as a weather lookup location.
func (f FieldSpec) Location() weather.Location {
	return weather.Location{Name: f.Name, Lat: f.Lat, Lon: f.Lon}
}

// parseFields reads "name:lat,lon;name:lat,lon". Malformed entries are
// skipped.
func parseFields(s string) []FieldSpec {
	var out []FieldSpec
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, coords, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		latStr, lonStr, ok := strings.Cut(coords, ",")
		if !ok {
			continue
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, FieldSpec{Name: strings.TrimSpace(name), Lat: lat, Lon: lon})
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
