package imagery

import (
	"context"
	"math"
	"math/rand"

	"agrisight/models"
	"agrisight/raster"

	"gonum.org/v1/gonum/mat"
)

// SyntheticSource generates Sentinel-2-like reflectance scenes: fractal
// noise terrain, crop row stripes, and a handful of circular plots with
// varying health. The same seed always produces the same scene for a given
// request size, which keeps pipeline tests reproducible.
type SyntheticSource struct {
	Seed        int64
	ResolutionM float64
}

// NewSyntheticSource returns a generator with a 10 m/px nominal resolution.
func NewSyntheticSource(seed int64) *SyntheticSource {
	return &SyntheticSource{Seed: seed, ResolutionM: 10}
}

// Fetch synthesizes a scene for the requested extent.
func (s *SyntheticSource) Fetch(ctx context.Context, req Request) (*raster.Scene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := req.SizePx
	if size <= 0 {
		size = 512
	}
	rng := rand.New(rand.NewSource(s.Seed))

	vegetation := vegetationField(rng, size)

	blue := mat.NewDense(size, size, nil)
	green := mat.NewDense(size, size, nil)
	red := mat.NewDense(size, size, nil)
	nir := mat.NewDense(size, size, nil)

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			v := vegetation[r*size+c]
			// Healthy vegetation reflects little red and a lot of NIR.
			blue.Set(r, c, clampUnit(0.03+0.05*(1-v)+rng.NormFloat64()*0.005))
			green.Set(r, c, clampUnit(0.05+0.08*v+rng.NormFloat64()*0.005))
			red.Set(r, c, clampUnit(0.03+0.12*(1-v)+rng.NormFloat64()*0.005))
			nir.Set(r, c, clampUnit(0.15+0.45*v+rng.NormFloat64()*0.01))
		}
	}

	geo := raster.Georegistration{
		CRS:         "EPSG:4326",
		BBox:        req.BBox,
		ResolutionM: s.ResolutionM,
		AcquiredAt:  req.Time,
		Source:      models.SourceSynthetic,
	}
	return raster.NewScene(blue, green, red, nir, geo)
}

// vegetationField combines fractal noise, row stripes and circular plots
// into a per-pixel vegetation density in [0,1].
func vegetationField(rng *rand.Rand, size int) []float64 {
	base := fractalNoise(rng, size, 5, 0.5)

	const rowSpacing, rowWidth = 12, 6
	rows := make([]float64, size*size)
	for i := 0; i < size; i += rowSpacing {
		start := maxInt(0, i-rowWidth/2)
		end := minInt(size, i+rowWidth/2)
		for r := start; r < end; r++ {
			for c := 0; c < size; c++ {
				rows[r*size+c] = 1
			}
		}
	}

	// Circular plots with individually degraded health.
	plotHealth := make([]float64, size*size)
	for i := range plotHealth {
		plotHealth[i] = 1
	}
	nPlots := 4 + rng.Intn(4)
	margin := minInt(50, size/4)
	span := maxInt(1, size-2*margin)
	maxRadius := maxInt(2, size/4)
	for p := 0; p < nPlots; p++ {
		cx := margin + rng.Intn(span)
		cy := margin + rng.Intn(span)
		radius := minInt(30+rng.Intn(50), maxRadius)
		factor := 0.3 + rng.Float64()*0.7
		for r := maxInt(0, cy-radius); r < minInt(size, cy+radius+1); r++ {
			for c := maxInt(0, cx-radius); c < minInt(size, cx+radius+1); c++ {
				dr, dc := r-cy, c-cx
				if dr*dr+dc*dc < radius*radius {
					plotHealth[r*size+c] = factor
				}
			}
		}
	}

	out := make([]float64, size*size)
	for i := range out {
		out[i] = clampUnit((base[i]*0.4 + rows[i]*0.3 + 0.3) * plotHealth[i])
	}
	return out
}

// fractalNoise layers bilinearly upsampled value noise octaves and
// normalizes the sum to [0,1].
func fractalNoise(rng *rand.Rand, size, octaves int, persistence float64) []float64 {
	out := make([]float64, size*size)
	freq, amp := 1.0, 1.0

	for o := 0; o < octaves; o++ {
		cells := maxInt(2, int(8*freq))
		coarse := make([]float64, cells*cells)
		for i := range coarse {
			coarse[i] = rng.NormFloat64()
		}
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				out[r*size+c] += bilinear(coarse, cells, float64(r)/float64(size), float64(c)/float64(size)) * amp
			}
		}
		freq *= 2
		amp *= persistence
	}

	lo, hi := out[0], out[0]
	for _, v := range out {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span < 1e-8 {
		span = 1e-8
	}
	for i := range out {
		out[i] = (out[i] - lo) / span
	}
	return out
}

// bilinear samples a cells x cells grid at normalized position (y, x).
func bilinear(grid []float64, cells int, y, x float64) float64 {
	fy := y * float64(cells-1)
	fx := x * float64(cells-1)
	r0, c0 := int(fy), int(fx)
	r1, c1 := minInt(r0+1, cells-1), minInt(c0+1, cells-1)
	ty, tx := fy-float64(r0), fx-float64(c0)

	top := grid[r0*cells+c0]*(1-tx) + grid[r0*cells+c1]*tx
	bot := grid[r1*cells+c0]*(1-tx) + grid[r1*cells+c1]*tx
	return top*(1-ty) + bot*ty
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
