package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"sort"

	"agrisight/models"
)

// Tier ramp colors, aligned with models.Tier colors.
var (
	colorCritical = color.NRGBA{R: 142, G: 68, B: 173, A: 255} // purple
	colorSevere   = color.NRGBA{R: 231, G: 76, B: 60, A: 255}  // red
	colorModerate = color.NRGBA{R: 243, G: 156, B: 18, A: 255} // yellow-orange
	colorHealthy  = color.NRGBA{R: 46, G: 204, B: 113, A: 255} // green
)

// RenderIndex paints the index raster with the fixed tier color ramp:
// Critical purple, Severe red, Moderate interpolated yellow-to-green,
// Healthy green. Invalid pixels come out transparent.
func RenderIndex(ir *IndexRaster, thresholds models.TierThresholds) *image.NRGBA {
	rows, cols := ir.Dims()
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))

	span := thresholds.Healthy - thresholds.Moderate
	if span <= 0 {
		span = 1 // validated at startup; keep the render total anyway
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := ir.Grid.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			var px color.NRGBA
			switch thresholds.TierFor(v) {
			case models.TierCritical:
				px = colorCritical
			case models.TierSevere:
				px = colorSevere
			case models.TierModerate:
				t := (v - thresholds.Moderate) / span
				px = lerpColor(colorModerate, colorHealthy, t)
			default:
				px = colorHealthy
			}
			img.SetNRGBA(c, r, px)
		}
	}
	return img
}

// WritePNG encodes the image to path.
func WritePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// TrueColorComposite builds an RGB view from the Blue/Green/Red bands with
// a 2-98 percentile contrast stretch per band.
func TrueColorComposite(s *Scene) *image.NRGBA {
	return composite(s, BandRed, BandGreen, BandBlue)
}

// FalseColorComposite maps NIR->R, Red->G, Green->B to emphasize vegetation.
func FalseColorComposite(s *Scene) *image.NRGBA {
	return composite(s, BandNIR, BandRed, BandGreen)
}

func composite(s *Scene, rb, gb, bb Band) *image.NRGBA {
	rows, cols := s.Dims()
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))

	rCh := stretchBand(s, rb)
	gCh := stretchBand(s, gb)
	bCh := stretchBand(s, bb)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			img.SetNRGBA(c, r, color.NRGBA{R: rCh[i], G: gCh[i], B: bCh[i], A: 255})
		}
	}
	return img
}

// stretchBand normalizes one band to 0-255 using a 2-98 percentile stretch
// over its positive values.
func stretchBand(s *Scene, b Band) []uint8 {
	rows, cols := s.Dims()
	grid := s.Band(b)

	positive := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if v := grid.At(r, c); v > 0 && !math.IsNaN(v) {
				positive = append(positive, v)
			}
		}
	}

	out := make([]uint8, rows*cols)
	if len(positive) == 0 {
		return out
	}
	sort.Float64s(positive)
	p2 := percentileSorted(positive, 2)
	p98 := percentileSorted(positive, 98)
	scale := p98 - p2
	if scale <= 0 {
		scale = 1e-8
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := grid.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			out[r*cols+c] = uint8(clamp((v-p2)/scale, 0, 1) * 255)
		}
	}
	return out
}

func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	t = clamp(t, 0, 1)
	return color.NRGBA{
		R: uint8(float64(a.R)*(1-t) + float64(b.R)*t),
		G: uint8(float64(a.G)*(1-t) + float64(b.G)*t),
		B: uint8(float64(a.B)*(1-t) + float64(b.B)*t),
		A: 255,
	}
}
