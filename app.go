package main

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"agrisight/imagery"
	"agrisight/pipeline"
	"agrisight/segment"
	"agrisight/store"
	"agrisight/weather"
)

type App struct {
	cfg   Config
	store *store.Store
	orch  *pipeline.Orchestrator

	// runMu serializes pipeline runs: a scheduled tick or API trigger is
	// skipped while another run is in flight.
	runMu sync.Mutex
}

func newApp(ctx context.Context, cfg Config) (*App, error) {
	st, err := store.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}

	if cfg.ArtifactsDir != "" {
		if err := os.MkdirAll(cfg.ArtifactsDir, 0o755); err != nil {
			return nil, err
		}
	}

	orch, err := pipeline.New(pipeline.Options{
		Imagery:      imagerySource(cfg),
		Weather:      weatherSource(cfg),
		Sink:         st,
		Health:       cfg.Health,
		Segmentation: segmentOptions(cfg),
		StepTimeout:  cfg.StepTimeout,
		ArtifactsDir: cfg.ArtifactsDir,
		Parallel:     cfg.Parallel,
	})
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, store: st, orch: orch}, nil
}

func (a *App) close(ctx context.Context) { a.store.Close(ctx) }

// imagerySource picks the live hub client when a token is configured,
// otherwise the deterministic synthetic generator.
func imagerySource(cfg Config) imagery.Source {
	if cfg.HubToken != "" {
		return imagery.NewHubSource(cfg.HubBaseURL, cfg.HubToken)
	}
	log.Println("imagery: no hub token configured, using synthetic source")
	return imagery.NewSyntheticSource(42)
}

// weatherSource picks OpenWeatherMap when a key is configured, otherwise
// the synthetic generator.
func weatherSource(cfg Config) weather.Source {
	if cfg.OpenWeatherKey != "" {
		return weather.NewOpenWeatherSource(cfg.OpenWeatherKey)
	}
	log.Println("weather: no api key configured, using synthetic source")
	return weather.NewSyntheticSource(time.Now().UnixNano())
}

func segmentOptions(cfg Config) segment.Options {
	opts := segment.DefaultOptions(cfg.Health.Tiers)
	opts.MinPlotArea = cfg.MinPlotArea
	return opts
}

// batch builds one scene descriptor per configured field.
func (a *App) batch() []pipeline.SceneDescriptor {
	now := time.Now().UTC()
	out := make([]pipeline.SceneDescriptor, len(a.cfg.Fields))
	for i, f := range a.cfg.Fields {
		out[i] = pipeline.SceneDescriptor{
			Field:    f.Name,
			Location: f.Location(),
			BBox:     a.cfg.BBoxFor(f),
			SizePx:   a.cfg.ImageSize,
			Time:     now,
		}
	}
	return out
}

// runPipeline executes one batch if no other run is in flight. Returns
// false when skipped.
func (a *App) runPipeline(ctx context.Context) bool {
	if !a.runMu.TryLock() {
		log.Println("pipeline: run already in flight, skipping")
		return false
	}
	defer a.runMu.Unlock()

	a.orch.Run(ctx, a.batch())
	return true
}
