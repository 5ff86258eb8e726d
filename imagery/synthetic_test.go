package imagery

import (
	"context"
	"math"
	"testing"
	"time"

	"agrisight/models"
	"agrisight/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testRequest(size int) Request {
	return Request{
		Field:  "demo-field",
		BBox:   models.BBox{West: -93.11, South: 41.87, East: -93.08, North: 41.89},
		SizePx: size,
		Time:   time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestSyntheticFetchDeterministic(t *testing.T) {
	src := NewSyntheticSource(42)

	a, err := src.Fetch(context.Background(), testRequest(64))
	require.NoError(t, err)
	b, err := src.Fetch(context.Background(), testRequest(64))
	require.NoError(t, err)

	for _, band := range []raster.Band{raster.BandBlue, raster.BandGreen, raster.BandRed, raster.BandNIR} {
		assert.True(t, mat.Equal(a.Band(band), b.Band(band)), "band %d differs between fetches", band)
	}
}

func TestSyntheticFetchSeedsDiffer(t *testing.T) {
	a, err := NewSyntheticSource(1).Fetch(context.Background(), testRequest(64))
	require.NoError(t, err)
	b, err := NewSyntheticSource(2).Fetch(context.Background(), testRequest(64))
	require.NoError(t, err)

	assert.False(t, mat.Equal(a.Band(raster.BandNIR), b.Band(raster.BandNIR)))
}

func TestSyntheticFetchReflectanceRange(t *testing.T) {
	scene, err := NewSyntheticSource(7).Fetch(context.Background(), testRequest(64))
	require.NoError(t, err)

	rows, cols := scene.Dims()
	assert.Equal(t, 64, rows)
	assert.Equal(t, 64, cols)

	for _, band := range []raster.Band{raster.BandBlue, raster.BandGreen, raster.BandRed, raster.BandNIR} {
		d := scene.Band(band)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				v := d.At(r, c)
				assert.False(t, math.IsNaN(v))
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

func TestSyntheticFetchCarriesRequestMetadata(t *testing.T) {
	req := testRequest(32)
	scene, err := NewSyntheticSource(42).Fetch(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, req.BBox, scene.Geo.BBox)
	assert.Equal(t, req.Time, scene.Geo.AcquiredAt)
	assert.Equal(t, models.SourceSynthetic, scene.Geo.Source)
}

func TestSyntheticFetchSmallScenes(t *testing.T) {
	// plot placement must stay inside the raster at any requested size
	for _, size := range []int{8, 32, 50, 64, 100, 128} {
		scene, err := NewSyntheticSource(42).Fetch(context.Background(), testRequest(size))
		require.NoError(t, err, "size %d", size)

		rows, cols := scene.Dims()
		assert.Equal(t, size, rows)
		assert.Equal(t, size, cols)
	}
}

func TestSyntheticFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSyntheticSource(42).Fetch(ctx, testRequest(32))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyntheticSceneIsVegetated(t *testing.T) {
	// the generator should produce more NIR than red on average, i.e.
	// a field that actually looks alive to the index computation
	scene, err := NewSyntheticSource(42).Fetch(context.Background(), testRequest(64))
	require.NoError(t, err)

	rows, cols := scene.Dims()
	var red, nir float64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			red += scene.Band(raster.BandRed).At(r, c)
			nir += scene.Band(raster.BandNIR).At(r, c)
		}
	}
	assert.Greater(t, nir, red)
}
