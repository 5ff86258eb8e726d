package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"agrisight/models"
)

// OpenWeatherSource fetches current conditions from the OpenWeatherMap API.
// Soil readings are approximated from air conditions since the free tier
// carries no soil sensors.
type OpenWeatherSource struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewOpenWeatherSource builds a client against the public API.
func NewOpenWeatherSource(apiKey string) *OpenWeatherSource {
	return &OpenWeatherSource{
		BaseURL: "https://api.openweathermap.org",
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type owmResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Rain struct {
		OneH float64 `json:"1h"`
	} `json:"rain"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Dt int64 `json:"dt"`
}

// Fetch returns the current observation for loc, or (nil, nil) when the
// location is unconfigured.
func (o *OpenWeatherSource) Fetch(ctx context.Context, loc Location) (*models.WeatherRecord, error) {
	if loc.Name == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(loc.Lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(loc.Lon, 'f', 4, 64))
	q.Set("units", "metric")
	q.Set("appid", o.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		o.BaseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openweather call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("openweather non-2xx: %s, body: %s", resp.Status, msg)
	}

	var out owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode openweather resp: %w", err)
	}

	rec := &models.WeatherRecord{
		Location:      loc.Name,
		Source:        models.SourceLive,
		ObservedAt:    time.Unix(out.Dt, 0).UTC(),
		TemperatureC:  ptr(out.Main.Temp),
		HumidityPct:   ptr(out.Main.Humidity),
		PressureHpa:   ptr(out.Main.Pressure),
		WindSpeedMps:  ptr(out.Wind.Speed),
		CloudCoverPct: ptr(out.Clouds.All),
		RainMm:        ptr(out.Rain.OneH),
	}
	if len(out.Weather) > 0 {
		rec.Description = out.Weather[0].Description
	}

	// Crude soil approximations: moisture tracks recent rain and humidity,
	// soil runs a few degrees cooler than air.
	moisture := clamp01(0.3 + out.Rain.OneH*0.02 + (out.Main.Humidity-50)/500)
	rec.SoilMoisture = ptr(moisture)
	rec.SoilTempC = ptr(out.Main.Temp - 3)

	return rec, nil
}

func ptr(v float64) *float64 { return &v }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
