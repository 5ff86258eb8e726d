// Package weather acquires ambient weather and soil observations for named
// locations, from OpenWeatherMap or a synthetic generator.
package weather

import (
	"context"
	"errors"

	"agrisight/models"
)

// ErrNotFound means the provider does not know the location. An
// unconfigured location (empty name) is not an error: sources return
// (nil, nil) and classification degrades to health-only.
var ErrNotFound = errors.New("weather: location not found")

// Location names a point of interest for weather lookup.
type Location struct {
	Name string
	Lat  float64
	Lon  float64
}

// Source yields one flat observation record per location.
type Source interface {
	Fetch(ctx context.Context, loc Location) (*models.WeatherRecord, error)
}
