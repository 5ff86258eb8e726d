package imagery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agrisight/models"
	"agrisight/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func hubRequest() Request {
	return Request{
		Field:  "demo-field",
		BBox:   models.BBox{West: -93.11, South: 41.87, East: -93.08, North: 41.89},
		SizePx: 8,
		Time:   time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestHubFetchDecodesScene(t *testing.T) {
	mk := func(v float64) *mat.Dense {
		d := mat.NewDense(8, 8, nil)
		for r := 0; r < 8; r++ {
			for c := 0; c < 8; c++ {
				d.Set(r, c, v)
			}
		}
		return d
	}
	scene, err := raster.NewScene(mk(0.03), mk(0.06), mk(0.1), mk(0.5), raster.Georegistration{CRS: "EPSG:4326"})
	require.NoError(t, err)

	var gotReq hubProcessReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/process", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "image/tiff")
		require.NoError(t, raster.EncodeScene(w, scene))
	}))
	defer srv.Close()

	src := NewHubSource(srv.URL, "tok")
	got, err := src.Fetch(context.Background(), hubRequest())
	require.NoError(t, err)

	rows, cols := got.Dims()
	assert.Equal(t, 8, rows)
	assert.Equal(t, 8, cols)
	assert.InDelta(t, 0.5, got.Band(raster.BandNIR).At(4, 4), 1.0/65535+1e-9)
	assert.Equal(t, models.SourceLive, got.Geo.Source)

	assert.Equal(t, []string{"B02", "B03", "B04", "B08"}, gotReq.Bands)
	assert.Equal(t, 20, gotReq.MaxCloudPct)
	assert.Equal(t, [4]float64{-93.11, 41.87, -93.08, 41.89}, gotReq.BBox)
}

func TestHubFetchErrorMapping(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	src := NewHubSource(srv.URL, "tok")

	_, err := src.Fetch(context.Background(), hubRequest())
	assert.ErrorIs(t, err, ErrAuth)

	status = http.StatusNotFound
	_, err = src.Fetch(context.Background(), hubRequest())
	assert.ErrorIs(t, err, ErrNoData)

	status = http.StatusInternalServerError
	_, err = src.Fetch(context.Background(), hubRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuth)
	assert.NotErrorIs(t, err, ErrNoData)
}
