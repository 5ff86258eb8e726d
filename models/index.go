package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IndexStats summarizes a vegetation index raster over its valid pixels.
// Mean is a pointer so a record missing its mean is detectable downstream.
type IndexStats struct {
	Mean        *float64 `bson:"mean,omitempty" json:"mean,omitempty"`
	StdDev      float64  `bson:"std"            json:"std"`
	Min         float64  `bson:"min"            json:"min"`
	Max         float64  `bson:"max"            json:"max"`
	Median      float64  `bson:"median"         json:"median"`
	P25         float64  `bson:"p25"            json:"p25"`
	P75         float64  `bson:"p75"            json:"p75"`
	ValidPixels int      `bson:"validPixels"    json:"validPixels"`

	// Share of valid pixels per tier, in percent.
	HealthyPct  float64 `bson:"healthyPct"  json:"healthyPct"`
	ModeratePct float64 `bson:"moderatePct" json:"moderatePct"`
	SeverePct   float64 `bson:"severePct"   json:"severePct"`
	CriticalPct float64 `bson:"criticalPct" json:"criticalPct"`
}

// IndexResult is the persisted outcome of the vegetation index step for one
// scene ("ndvi_results" collection). The full raster survives only as the
// rendered artifact; scalars live here.
type IndexResult struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SceneID      string             `bson:"sceneId"       json:"sceneId"`
	RunID        string             `bson:"runId"         json:"runId"`
	ComputedAt   time.Time          `bson:"computedAt"    json:"computedAt"`
	Stats        IndexStats         `bson:"stats"         json:"stats"`
	RenderPath   string             `bson:"renderPath,omitempty"   json:"renderPath,omitempty"`
	BoundaryPath string             `bson:"boundaryPath,omitempty" json:"boundaryPath,omitempty"`
}
