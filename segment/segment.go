// Package segment delineates plot boundaries from a vegetation index
// raster: threshold, morphological opening, connected component labeling,
// and outer boundary tracing into geographic polygons.
package segment

import (
	"math"

	"agrisight/models"
	"agrisight/raster"

	"github.com/paulmach/orb"
)

// Options configures segmentation.
type Options struct {
	// Threshold: a pixel is foreground iff its index value >= Threshold.
	Threshold float64
	// MinPlotArea drops components smaller than this many pixels as noise.
	MinPlotArea int
	// Tiers assigns each plot a health tier from its mean index.
	Tiers models.TierThresholds
}

// DefaultOptions segments at the Severe cut point with a 100-pixel floor.
func DefaultOptions(tiers models.TierThresholds) Options {
	return Options{Threshold: tiers.Severe, MinPlotArea: 100, Tiers: tiers}
}

// bitGrid is a dense binary mask over raster pixels.
type bitGrid struct {
	rows, cols int
	set        []bool
}

func newBitGrid(rows, cols int) *bitGrid {
	return &bitGrid{rows: rows, cols: cols, set: make([]bool, rows*cols)}
}

func (g *bitGrid) at(r, c int) bool {
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols {
		return false
	}
	return g.set[r*g.cols+c]
}

func (g *bitGrid) put(r, c int, v bool) { g.set[r*g.cols+c] = v }

// Segment extracts plot boundaries from an index raster. Identical input
// always yields the same boundaries in the same order: components are
// numbered in raster-scan order of their first pixel. A raster with no
// foreground pixels yields an empty slice, not an error.
func Segment(ir *raster.IndexRaster, opts Options) ([]models.PlotBoundary, error) {
	rows, cols := ir.Dims()

	mask := newBitGrid(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := ir.Grid.At(r, c)
			if !math.IsNaN(v) && v >= opts.Threshold {
				mask.put(r, c, true)
			}
		}
	}

	opened := dilate(erode(mask))

	labels, n := labelComponents(opened)

	comps := collectComponents(ir, opened, labels, n)

	plots := make([]models.PlotBoundary, 0, len(comps))
	id := 0
	for _, comp := range comps {
		if comp.area < opts.MinPlotArea {
			continue
		}
		id++
		ring := traceRing(ir, labels, comp)
		mean := comp.sum / float64(comp.area)
		tier := opts.Tiers.TierFor(mean)
		plots = append(plots, models.PlotBoundary{
			ID:         id,
			Ring:       ring,
			AreaPixels: comp.area,
			Centroid: models.PixelRC{
				Row: comp.rowSum / comp.area,
				Col: comp.colSum / comp.area,
			},
			Stats: models.PlotStats{Mean: mean, Min: comp.min, Max: comp.max},
			Tier:  tier,
			Color: tier.Color(),
		})
	}
	return plots, nil
}

// component accumulates per-label measurements during a single pass.
type component struct {
	label          int32
	firstR, firstC int
	area           int
	rowSum, colSum int
	sum, min, max  float64
}

// labelComponents assigns 8-connected component labels in raster-scan
// order of first-encountered pixel. Labels start at 1; 0 is background.
func labelComponents(g *bitGrid) ([]int32, int) {
	labels := make([]int32, g.rows*g.cols)
	var next int32

	// Scan-order seeded flood fill keeps label numbering deterministic.
	stack := make([][2]int, 0, 256)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if !g.at(r, c) || labels[r*g.cols+c] != 0 {
				continue
			}
			next++
			labels[r*g.cols+c] = next
			stack = append(stack[:0], [2]int{r, c})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for dr := -1; dr <= 1; dr++ {
					for dc := -1; dc <= 1; dc++ {
						if dr == 0 && dc == 0 {
							continue
						}
						nr, nc := p[0]+dr, p[1]+dc
						if g.at(nr, nc) && labels[nr*g.cols+nc] == 0 {
							labels[nr*g.cols+nc] = next
							stack = append(stack, [2]int{nr, nc})
						}
					}
				}
			}
		}
	}
	return labels, int(next)
}

// collectComponents measures every labeled component in one raster pass.
// The result is ordered by label, which is first-pixel scan order.
func collectComponents(ir *raster.IndexRaster, g *bitGrid, labels []int32, n int) []*component {
	comps := make([]*component, n)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			lab := labels[r*g.cols+c]
			if lab == 0 {
				continue
			}
			v := ir.Grid.At(r, c)
			comp := comps[lab-1]
			if comp == nil {
				comp = &component{label: lab, firstR: r, firstC: c, min: v, max: v}
				comps[lab-1] = comp
			}
			comp.area++
			comp.rowSum += r
			comp.colSum += c
			comp.sum += v
			if v < comp.min {
				comp.min = v
			}
			if v > comp.max {
				comp.max = v
			}
		}
	}
	return comps
}

// traceRing walks the component's outer boundary and converts the pixel
// path to a closed geographic ring.
func traceRing(ir *raster.IndexRaster, labels []int32, comp *component) orb.Ring {
	rows, cols := ir.Dims()
	fg := func(r, c int) bool {
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return false
		}
		return labels[r*cols+c] == comp.label
	}

	path := traceBoundary(fg, comp.firstR, comp.firstC, rows*cols)

	ring := make(orb.Ring, 0, len(path)+1)
	for _, p := range path {
		lon, lat := ir.Geo.PixelToGeo(p.Row, p.Col, rows, cols)
		ring = append(ring, orb.Point{lon, lat})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}
