package imagery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"agrisight/models"
	"agrisight/raster"
)

// HubSource fetches 4-band scenes from a Sentinel-Hub-style process API.
// The API returns the band stack as a 16-bit TIFF (channel layout matching
// raster.DecodeScene).
type HubSource struct {
	BaseURL     string
	Token       string // bearer token from the provider's OAuth flow
	MaxCloudPct int
	ResolutionM float64
	client      *http.Client
}

// NewHubSource builds a client with sane timeouts.
func NewHubSource(baseURL, token string) *HubSource {
	return &HubSource{
		BaseURL:     baseURL,
		Token:       token,
		MaxCloudPct: 20,
		ResolutionM: 10,
		client:      &http.Client{Timeout: 25 * time.Second},
	}
}

type hubProcessReq struct {
	BBox        [4]float64 `json:"bbox"` // west, south, east, north
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Bands       []string   `json:"bands"`
	TimeTo      string     `json:"timeTo"`
	MaxCloudPct int        `json:"maxCloudCoverage"`
}

// Fetch requests a scene and decodes the returned band stack.
func (h *HubSource) Fetch(ctx context.Context, req Request) (*raster.Scene, error) {
	size := req.SizePx
	if size <= 0 {
		size = 512
	}
	body, err := json.Marshal(hubProcessReq{
		BBox:        [4]float64{req.BBox.West, req.BBox.South, req.BBox.East, req.BBox.North},
		Width:       size,
		Height:      size,
		Bands:       []string{"B02", "B03", "B04", "B08"},
		TimeTo:      req.Time.UTC().Format(time.RFC3339),
		MaxCloudPct: h.MaxCloudPct,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal process request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/api/v1/process", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/tiff")
	httpReq.Header.Set("Authorization", "Bearer "+h.Token)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("process call failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrAuth
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNoData
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("process non-2xx: %s, body: %s", resp.Status, msg)
	}

	geo := raster.Georegistration{
		CRS:         "EPSG:4326",
		BBox:        req.BBox,
		ResolutionM: h.ResolutionM,
		AcquiredAt:  req.Time,
		Source:      models.SourceLive,
	}
	scene, err := raster.DecodeScene(resp.Body, geo)
	if err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return scene, nil
}
