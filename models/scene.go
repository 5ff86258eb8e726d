package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SceneSource tags where a raster scene came from.
type SceneSource string

const (
	SourceLive      SceneSource = "live"
	SourceSynthetic SceneSource = "synthetic"
)

// BBox is a geographic bounding extent in the scene's CRS.
type BBox struct {
	West  float64 `bson:"west"  json:"west"`
	South float64 `bson:"south" json:"south"`
	East  float64 `bson:"east"  json:"east"`
	North float64 `bson:"north" json:"north"`
}

// CenterLat returns the latitude of the extent center.
func (b BBox) CenterLat() float64 { return (b.North + b.South) / 2 }

// CenterLon returns the longitude of the extent center.
func (b BBox) CenterLon() float64 { return (b.West + b.East) / 2 }

// SceneMeta is the persisted metadata of one acquired raster scene
// ("imagery" collection). The pixel data itself stays on disk.
type SceneMeta struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SceneID     string             `bson:"sceneId"       json:"sceneId"` // unique within a run
	RunID       string             `bson:"runId"         json:"runId"`
	Field       string             `bson:"field"         json:"field"` // field/location name
	FilePath    string             `bson:"filePath,omitempty" json:"filePath,omitempty"`
	Source      SceneSource        `bson:"source"        json:"source"`
	AcquiredAt  time.Time          `bson:"acquiredAt"    json:"acquiredAt"`
	BBox        BBox               `bson:"bbox"          json:"bbox"`
	CRS         string             `bson:"crs"           json:"crs"`
	Width       int                `bson:"width"         json:"width"`
	Height      int                `bson:"height"        json:"height"`
	Bands       int                `bson:"bands"         json:"bands"`
	ResolutionM float64            `bson:"resolutionM"   json:"resolutionM"`
}
