// Package imagery acquires 4-band raster scenes, either from a satellite
// process API or from a deterministic synthetic generator. Both satisfy the
// same contract so the pipeline stays source-agnostic.
package imagery

import (
	"context"
	"errors"
	"time"

	"agrisight/models"
	"agrisight/raster"
)

var (
	// ErrNoData means the provider has no imagery for the request.
	ErrNoData = errors.New("imagery: no data available")
	// ErrAuth means the provider rejected our credentials.
	ErrAuth = errors.New("imagery: authentication failed")
)

// Request describes one scene acquisition.
type Request struct {
	Field  string // location name, for logging and persistence
	BBox   models.BBox
	SizePx int
	Time   time.Time
}

// Source yields a registered 4-band scene for a request.
type Source interface {
	Fetch(ctx context.Context, req Request) (*raster.Scene, error)
}
