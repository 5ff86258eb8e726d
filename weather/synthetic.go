package weather

import (
	"context"
	"math"
	"math/rand"
	"time"

	"agrisight/models"
)

// SyntheticSource generates plausible seasonal weather when no API key is
// configured. Deterministic for a fixed seed and observation time.
type SyntheticSource struct {
	Seed int64
	Now  func() time.Time // override in tests; defaults to time.Now
}

// NewSyntheticSource returns a seeded generator.
func NewSyntheticSource(seed int64) *SyntheticSource {
	return &SyntheticSource{Seed: seed, Now: time.Now}
}

// Northern-hemisphere monthly base temperatures, °C.
var seasonalTempC = [13]float64{0, -2, 1, 8, 14, 20, 26, 30, 28, 22, 14, 6, 0}

// Fetch synthesizes an observation for loc, or (nil, nil) when the
// location is unconfigured.
func (s *SyntheticSource) Fetch(ctx context.Context, loc Location) (*models.WeatherRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if loc.Name == "" {
		return nil, nil
	}

	now := s.Now().UTC()
	rng := rand.New(rand.NewSource(s.Seed ^ now.Unix()/3600))

	temp := seasonalTempC[now.Month()] + rng.NormFloat64()*3

	humidity := clamp(70-temp*0.5+rng.NormFloat64()*10, 20, 95)
	wind := math.Max(0, 3+rng.ExpFloat64()*2)
	clouds := clamp(rng.Float64()*rng.Float64()*200, 0, 100)

	rainChance := 0.1
	if humidity > 60 {
		rainChance = 0.3
	}
	rain := 0.0
	if rng.Float64() < rainChance {
		rain = rng.ExpFloat64() * 5
	}
	moisture := clamp(0.4+rain*0.02+rng.NormFloat64()*0.1, 0.05, 0.95)

	return &models.WeatherRecord{
		Location:      loc.Name,
		Source:        models.SourceSynthetic,
		ObservedAt:    now,
		TemperatureC:  ptr(round1(temp)),
		HumidityPct:   ptr(round1(humidity)),
		WindSpeedMps:  ptr(round1(wind)),
		PressureHpa:   ptr(round1(1013 + rng.NormFloat64()*5)),
		CloudCoverPct: ptr(round1(clouds)),
		SoilMoisture:  ptr(math.Round(moisture*1000) / 1000),
		SoilTempC:     ptr(round1(temp - 3 + rng.NormFloat64())),
		RainMm:        ptr(round1(rain)),
		Description:   describe(temp, clouds, rain),
	}, nil
}

func describe(temp, clouds, rain float64) string {
	switch {
	case rain > 5:
		return "heavy rain"
	case rain > 1:
		return "light rain"
	case clouds > 80:
		return "overcast"
	case clouds > 50:
		return "partly cloudy"
	case temp > 35:
		return "hot and clear"
	case temp < 0:
		return "cold and clear"
	default:
		return "clear sky"
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
