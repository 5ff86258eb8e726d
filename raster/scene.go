// Package raster holds in-memory multi-band scenes and the vegetation
// index engine that runs over them.
package raster

import (
	"errors"
	"fmt"
	"time"

	"agrisight/models"

	"gonum.org/v1/gonum/mat"
)

// Band indexes into a scene's band stack.
type Band int

const (
	BandBlue Band = iota
	BandGreen
	BandRed
	BandNIR
	bandCount
)

// Georegistration ties pixel space to geographic space.
type Georegistration struct {
	CRS         string
	BBox        models.BBox
	ResolutionM float64
	AcquiredAt  time.Time
	Source      models.SceneSource
}

// PixelToGeo maps a pixel center (row, col) of a grid with the given shape
// to geographic coordinates. Row 0 is the northern edge.
func (g Georegistration) PixelToGeo(row, col, rows, cols int) (lon, lat float64) {
	lonPerPx := (g.BBox.East - g.BBox.West) / float64(cols)
	latPerPx := (g.BBox.North - g.BBox.South) / float64(rows)
	lon = g.BBox.West + (float64(col)+0.5)*lonPerPx
	lat = g.BBox.North - (float64(row)+0.5)*latPerPx
	return lon, lat
}

// Scene is an immutable 4-band reflectance raster plus registration.
// Bands are row-major grids of equal shape; values are reflectance in [0,1].
type Scene struct {
	bands [bandCount]*mat.Dense
	rows  int
	cols  int
	Geo   Georegistration
}

var errBandShape = errors.New("raster: band shapes differ")

// NewScene builds a scene from four equally shaped band grids
// (blue, green, red, nir).
func NewScene(blue, green, red, nir *mat.Dense, geo Georegistration) (*Scene, error) {
	rows, cols := blue.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("raster: empty band grid")
	}
	for _, b := range []*mat.Dense{green, red, nir} {
		r, c := b.Dims()
		if r != rows || c != cols {
			return nil, errBandShape
		}
	}
	return &Scene{
		bands: [bandCount]*mat.Dense{blue, green, red, nir},
		rows:  rows,
		cols:  cols,
		Geo:   geo,
	}, nil
}

// Dims returns the scene shape in pixels.
func (s *Scene) Dims() (rows, cols int) { return s.rows, s.cols }

// Band returns one band grid. Callers must treat it as read-only.
func (s *Scene) Band(b Band) *mat.Dense { return s.bands[b] }

// Meta derives the persistable metadata view of the scene.
func (s *Scene) Meta(runID, sceneID, field, filePath string) models.SceneMeta {
	return models.SceneMeta{
		SceneID:     sceneID,
		RunID:       runID,
		Field:       field,
		FilePath:    filePath,
		Source:      s.Geo.Source,
		AcquiredAt:  s.Geo.AcquiredAt,
		BBox:        s.Geo.BBox,
		CRS:         s.Geo.CRS,
		Width:       s.cols,
		Height:      s.rows,
		Bands:       int(bandCount),
		ResolutionM: s.Geo.ResolutionM,
	}
}
