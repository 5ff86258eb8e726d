package raster

import (
	"errors"
	"math"

	"agrisight/models"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// ErrEmptyRaster means a scene had zero valid pixels to compute over.
var ErrEmptyRaster = errors.New("raster: no valid pixels")

// denomEpsilon guards the NDVI division. Pixels whose NIR+Red magnitude
// falls below it are defined as 0.0 so statistics stay finite.
const denomEpsilon = 1e-9

// IndexRaster is a per-pixel vegetation index grid, every value in [-1, 1],
// carrying the source scene's registration unchanged.
type IndexRaster struct {
	Grid *mat.Dense
	Geo  Georegistration
}

// Dims returns the raster shape in pixels.
func (ir *IndexRaster) Dims() (rows, cols int) { return ir.Grid.Dims() }

// ComputeIndex computes NDVI = (NIR - Red) / (NIR + Red) per pixel and its
// summary statistics over valid pixels. A pixel is invalid when either band
// is NaN; a near-zero denominator yields 0.0, never NaN or Inf. Outputs are
// clamped to [-1, 1].
func ComputeIndex(scene *Scene, thresholds models.TierThresholds) (*IndexRaster, models.IndexStats, error) {
	rows, cols := scene.Dims()
	red := scene.Band(BandRed)
	nir := scene.Band(BandNIR)

	grid := mat.NewDense(rows, cols, nil)
	valid := make([]float64, 0, rows*cols)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			rv, nv := red.At(r, c), nir.At(r, c)
			if math.IsNaN(rv) || math.IsNaN(nv) {
				grid.Set(r, c, math.NaN())
				continue
			}
			denom := nv + rv
			var v float64
			if math.Abs(denom) >= denomEpsilon {
				v = (nv - rv) / denom
			}
			v = clamp(v, -1, 1)
			grid.Set(r, c, v)
			valid = append(valid, v)
		}
	}

	if len(valid) == 0 {
		return nil, models.IndexStats{}, ErrEmptyRaster
	}

	st, err := summarize(valid, thresholds)
	if err != nil {
		return nil, models.IndexStats{}, err
	}
	return &IndexRaster{Grid: grid, Geo: scene.Geo}, st, nil
}

// summarize computes scalar statistics over the valid index values.
func summarize(valid []float64, thresholds models.TierThresholds) (models.IndexStats, error) {
	data := stats.Float64Data(valid)

	mean, err := data.Mean()
	if err != nil {
		return models.IndexStats{}, err
	}
	std, _ := data.StandardDeviation()
	min, _ := data.Min()
	max, _ := data.Max()
	median, _ := data.Median()
	p25, _ := data.Percentile(25)
	p75, _ := data.Percentile(75)

	var healthy, moderate, severe, critical int
	for _, v := range valid {
		switch thresholds.TierFor(v) {
		case models.TierHealthy:
			healthy++
		case models.TierModerate:
			moderate++
		case models.TierSevere:
			severe++
		default:
			critical++
		}
	}
	total := float64(len(valid))

	return models.IndexStats{
		Mean:        &mean,
		StdDev:      std,
		Min:         min,
		Max:         max,
		Median:      median,
		P25:         p25,
		P75:         p75,
		ValidPixels: len(valid),
		HealthyPct:  float64(healthy) / total * 100,
		ModeratePct: float64(moderate) / total * 100,
		SeverePct:   float64(severe) / total * 100,
		CriticalPct: float64(critical) / total * 100,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
