package segment

import (
	"fmt"
	"os"

	"agrisight/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ToGeoJSON converts plot boundaries into a FeatureCollection for the
// external dashboard and mapping tools.
func ToGeoJSON(plots []models.PlotBoundary) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range plots {
		f := geojson.NewFeature(orb.Polygon{p.Ring})
		f.Properties = geojson.Properties{
			"plot_id":     p.ID,
			"tier":        string(p.Tier),
			"color":       p.Color,
			"mean_index":  p.Stats.Mean,
			"area_pixels": p.AreaPixels,
		}
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON marshals the plots to a GeoJSON file at path.
func WriteGeoJSON(plots []models.PlotBoundary, path string) error {
	data, err := ToGeoJSON(plots).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal plots geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
