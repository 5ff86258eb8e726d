package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/mat"
)

// Scenes persist to disk as 16-bit TIFFs with the four bands packed into
// the RGBA channels: R=Blue, G=Green, B=Red, A=NIR. Reflectance [0,1] is
// scaled to the full uint16 range. Registration travels separately in the
// imagery metadata record.

const tiffScale = math.MaxUint16

// EncodeScene writes the scene's band stack to w.
func EncodeScene(w io.Writer, s *Scene) error {
	rows, cols := s.Dims()
	img := image.NewNRGBA64(image.Rect(0, 0, cols, rows))

	blue := s.Band(BandBlue)
	green := s.Band(BandGreen)
	red := s.Band(BandRed)
	nir := s.Band(BandNIR)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			img.SetNRGBA64(c, r, color.NRGBA64{
				R: quantize(blue.At(r, c)),
				G: quantize(green.At(r, c)),
				B: quantize(red.At(r, c)),
				A: quantize(nir.At(r, c)),
			})
		}
	}
	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("encode scene tiff: %w", err)
	}
	return nil
}

// DecodeScene reads a band stack written by EncodeScene and attaches the
// given registration.
func DecodeScene(r io.Reader, geo Georegistration) (*Scene, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode scene tiff: %w", err)
	}
	// The alpha channel carries the NIR band, so the pixels must be read
	// non-premultiplied; Color.RGBA() would scale the other bands by NIR.
	packed, ok := img.(*image.NRGBA64)
	if !ok {
		return nil, fmt.Errorf("decode scene tiff: unexpected pixel format %T", img)
	}
	b := packed.Bounds()
	rows, cols := b.Dy(), b.Dx()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("decode scene tiff: empty image")
	}

	blue := mat.NewDense(rows, cols, nil)
	green := mat.NewDense(rows, cols, nil)
	red := mat.NewDense(rows, cols, nil)
	nir := mat.NewDense(rows, cols, nil)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			px := packed.NRGBA64At(b.Min.X+x, b.Min.Y+y)
			blue.Set(y, x, float64(px.R)/tiffScale)
			green.Set(y, x, float64(px.G)/tiffScale)
			red.Set(y, x, float64(px.B)/tiffScale)
			nir.Set(y, x, float64(px.A)/tiffScale)
		}
	}
	return NewScene(blue, green, red, nir, geo)
}

// SaveScene writes the scene to a TIFF file at path.
func SaveScene(s *Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return EncodeScene(f, s)
}

// LoadScene reads a scene TIFF from path.
func LoadScene(path string, geo Georegistration) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeScene(f, geo)
}

func quantize(v float64) uint16 {
	if math.IsNaN(v) {
		return 0
	}
	return uint16(clamp(v, 0, 1) * tiffScale)
}
