package models

import "github.com/paulmach/orb"

// PlotStats are the index statistics of the pixels a plot encloses.
type PlotStats struct {
	Mean float64 `bson:"mean" json:"mean"`
	Min  float64 `bson:"min"  json:"min"`
	Max  float64 `bson:"max"  json:"max"`
}

// PlotBoundary is one contiguous vegetated region delineated by
// segmentation. Immutable once emitted; IDs are stable within a scene
// (assigned in raster-scan order of the first pixel encountered).
type PlotBoundary struct {
	ID         int       `bson:"id"         json:"id"`
	Ring       orb.Ring  `bson:"ring"       json:"ring"` // closed, geographic coords
	AreaPixels int       `bson:"areaPixels" json:"areaPixels"`
	Centroid   PixelRC   `bson:"centroid"   json:"centroid"`
	Stats      PlotStats `bson:"stats"      json:"stats"`
	Tier       Tier      `bson:"tier"       json:"tier"`
	Color      string    `bson:"color"      json:"color"`
}

// PixelRC is a row/column position in raster space.
type PixelRC struct {
	Row int `bson:"row" json:"row"`
	Col int `bson:"col" json:"col"`
}
