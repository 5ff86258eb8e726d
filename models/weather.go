package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeatherRecord is one observation for a named location ("weather_data"
// collection). Not owned by the pipeline; associated with scenes only by
// proximity. Optional readings are pointers so absent values are not
// confused with zero.
type WeatherRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Location   string             `bson:"location"      json:"location"`
	Source     SceneSource        `bson:"source"        json:"source"`
	ObservedAt time.Time          `bson:"observedAt"    json:"observedAt"`

	TemperatureC  *float64 `bson:"temperatureC,omitempty"  json:"temperatureC,omitempty"`
	HumidityPct   *float64 `bson:"humidityPct,omitempty"   json:"humidityPct,omitempty"`
	WindSpeedMps  *float64 `bson:"windSpeedMps,omitempty"  json:"windSpeedMps,omitempty"`
	PressureHpa   *float64 `bson:"pressureHpa,omitempty"   json:"pressureHpa,omitempty"`
	CloudCoverPct *float64 `bson:"cloudCoverPct,omitempty" json:"cloudCoverPct,omitempty"`
	SoilMoisture  *float64 `bson:"soilMoisture,omitempty"  json:"soilMoisture,omitempty"` // volumetric fraction 0..1
	SoilTempC     *float64 `bson:"soilTempC,omitempty"     json:"soilTempC,omitempty"`
	RainMm        *float64 `bson:"rainMm,omitempty"        json:"rainMm,omitempty"`
	Description   string   `bson:"description,omitempty"   json:"description,omitempty"`
}
