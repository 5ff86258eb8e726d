// Package pipeline orchestrates the per-scene processing sequence:
// acquire, vegetation index, segmentation, classification, persistence.
// One scene's failure never aborts the batch.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"agrisight/health"
	"agrisight/imagery"
	"agrisight/models"
	"agrisight/raster"
	"agrisight/segment"
	"agrisight/weather"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Sink is the persistence contract the orchestrator writes through. The
// scene record set is saved in one call so a failed write fails the whole
// scene rather than leaving a half-visible record.
type Sink interface {
	SaveSceneRecord(ctx context.Context, meta *models.SceneMeta, idx *models.IndexResult, assessment *models.Assessment) error
	SaveWeather(ctx context.Context, rec *models.WeatherRecord) error
	SaveRun(ctx context.Context, rec *models.RunRecord) error
}

// SceneDescriptor names one scene to acquire and process.
type SceneDescriptor struct {
	Field    string
	Location weather.Location
	BBox     models.BBox
	SizePx   int
	Time     time.Time
}

// Options wires the orchestrator's collaborators and tuning.
type Options struct {
	Imagery imagery.Source
	Weather weather.Source // nil disables weather context entirely
	Sink    Sink

	Health       health.Config
	Segmentation segment.Options

	// StepTimeout bounds each externally blocking step per scene.
	StepTimeout time.Duration
	// ArtifactsDir receives rendered rasters and boundary files; empty
	// disables artifact output.
	ArtifactsDir string
	// Parallel > 1 processes scenes concurrently with that many workers.
	// Observable semantics are unchanged: outcomes keep batch order.
	Parallel int
}

// Orchestrator drives pipeline runs.
type Orchestrator struct {
	opts Options
}

// New validates configuration once, before any scene is processed.
func New(opts Options) (*Orchestrator, error) {
	if opts.Imagery == nil {
		return nil, fmt.Errorf("pipeline: imagery source is required")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("pipeline: persistence sink is required")
	}
	if err := opts.Health.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid configuration: %w", err)
	}
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = 30 * time.Second
	}
	return &Orchestrator{opts: opts}, nil
}

// Run executes one batch. Cancellation is cooperative and checked between
// scenes: a cancelled run leaves the remaining scenes Pending and finalizes
// as partial. The run never retries a scene; a caller-level re-run is a new
// run with a new identifier.
func (o *Orchestrator) Run(ctx context.Context, batch []SceneDescriptor) *models.RunRecord {
	rec := &models.RunRecord{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Scenes:    make([]models.SceneOutcome, len(batch)),
	}
	log.Printf("pipeline run %s: %d scene(s)", rec.ID, len(batch))

	for i, desc := range batch {
		rec.Scenes[i] = models.SceneOutcome{
			SceneID: fmt.Sprintf("%s-%02d", rec.ID, i+1),
			Field:   desc.Field,
			Phase:   models.PhasePending,
		}
	}

	if o.opts.Parallel > 1 {
		var g errgroup.Group
		g.SetLimit(o.opts.Parallel)
		for i, desc := range batch {
			if ctx.Err() != nil {
				rec.Cancelled = true
				break
			}
			i, desc := i, desc
			g.Go(func() error {
				rec.Scenes[i] = o.processScene(ctx, rec.ID, rec.Scenes[i].SceneID, desc)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, desc := range batch {
			if ctx.Err() != nil {
				rec.Cancelled = true
				break
			}
			rec.Scenes[i] = o.processScene(ctx, rec.ID, rec.Scenes[i].SceneID, desc)
		}
	}

	rec.FinishedAt = time.Now().UTC()
	rec.StepStats = aggregateSteps(rec.Scenes)
	rec.Status = outcomeStatus(rec)

	saveCtx, cancel := context.WithTimeout(context.Background(), o.opts.StepTimeout)
	defer cancel()
	if err := o.opts.Sink.SaveRun(saveCtx, rec); err != nil {
		log.Printf("pipeline run %s: save run record: %v", rec.ID, err)
	}

	log.Printf("pipeline run %s: %s (%d/%d scenes persisted in %s)",
		rec.ID, rec.Status, rec.Successes(), len(batch), rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond))
	return rec
}

// processScene runs the fixed step sequence for one scene. Every error is
// contained here and converted into a Failed outcome.
func (o *Orchestrator) processScene(ctx context.Context, runID, sceneID string, desc SceneDescriptor) models.SceneOutcome {
	out := models.SceneOutcome{
		SceneID: sceneID,
		Field:   desc.Field,
		StepMs:  make(map[string]float64, len(stepOrder)),
	}
	state := newSceneState()

	// acquire
	state.advance(models.PhaseAcquiring)
	var scene *raster.Scene
	err := o.timeStep(&out, StepAcquire, func(stepCtx context.Context) error {
		var ferr error
		scene, ferr = o.opts.Imagery.Fetch(stepCtx, imagery.Request{
			Field: desc.Field, BBox: desc.BBox, SizePx: desc.SizePx, Time: desc.Time,
		})
		return ferr
	})
	if err != nil {
		return o.failScene(&out, &state, StepAcquire, err)
	}

	// index
	var idxRaster *raster.IndexRaster
	var stats models.IndexStats
	err = o.timeStep(&out, StepIndex, func(context.Context) error {
		var cerr error
		idxRaster, stats, cerr = raster.ComputeIndex(scene, o.opts.Health.Tiers)
		return cerr
	})
	if err != nil {
		return o.failScene(&out, &state, StepIndex, err)
	}
	state.advance(models.PhaseIndexComputed)
	out.MeanIndex = stats.Mean

	// segment
	var plots []models.PlotBoundary
	err = o.timeStep(&out, StepSegment, func(context.Context) error {
		var serr error
		plots, serr = segment.Segment(idxRaster, o.opts.Segmentation)
		return serr
	})
	if err != nil {
		return o.failScene(&out, &state, StepSegment, err)
	}
	state.advance(models.PhaseSegmented)
	out.PlotCount = len(plots)

	// classify
	var assessment *models.Assessment
	err = o.timeStep(&out, StepClassify, func(stepCtx context.Context) error {
		wrec := o.fetchWeather(stepCtx, desc)
		var cerr error
		assessment, cerr = health.Classify(stats, wrec, o.opts.Health)
		return cerr
	})
	if err != nil {
		return o.failScene(&out, &state, StepClassify, err)
	}
	state.advance(models.PhaseClassified)
	assessment.SceneID = sceneID
	assessment.RunID = runID
	assessment.PlotCount = len(plots)
	out.Tier = assessment.Tier

	// persist
	err = o.timeStep(&out, StepPersist, func(stepCtx context.Context) error {
		renderPath, boundaryPath, scenePath := o.writeArtifacts(sceneID, scene, idxRaster, plots)

		meta := scene.Meta(runID, sceneID, desc.Field, scenePath)
		idx := &models.IndexResult{
			SceneID:      sceneID,
			RunID:        runID,
			ComputedAt:   time.Now().UTC(),
			Stats:        stats,
			RenderPath:   renderPath,
			BoundaryPath: boundaryPath,
		}
		return o.opts.Sink.SaveSceneRecord(stepCtx, &meta, idx, assessment)
	})
	if err != nil {
		// A lost write must not be reported as success, even though every
		// upstream step already finished.
		return o.failScene(&out, &state, StepPersist, err)
	}
	state.advance(models.PhasePersisted)

	out.Phase = state.phase
	return out
}

// fetchWeather is best-effort: classification degrades gracefully without
// it, so fetch errors are logged and swallowed.
func (o *Orchestrator) fetchWeather(ctx context.Context, desc SceneDescriptor) *models.WeatherRecord {
	if o.opts.Weather == nil {
		return nil
	}
	rec, err := o.opts.Weather.Fetch(ctx, desc.Location)
	if err != nil {
		log.Printf("pipeline: weather for %q unavailable: %v", desc.Field, err)
		return nil
	}
	if rec == nil {
		return nil
	}
	if err := o.opts.Sink.SaveWeather(ctx, rec); err != nil {
		log.Printf("pipeline: save weather for %q: %v", desc.Field, err)
	}
	return rec
}

// writeArtifacts renders the visualization byproducts. Artifact trouble is
// logged, not fatal: the structured records are the contract.
func (o *Orchestrator) writeArtifacts(sceneID string, scene *raster.Scene, ir *raster.IndexRaster, plots []models.PlotBoundary) (renderPath, boundaryPath, scenePath string) {
	dir := o.opts.ArtifactsDir
	if dir == "" {
		return "", "", ""
	}

	renderPath = filepath.Join(dir, "ndvi_"+sceneID+".png")
	if err := raster.WritePNG(raster.RenderIndex(ir, o.opts.Health.Tiers), renderPath); err != nil {
		log.Printf("pipeline: render index for %s: %v", sceneID, err)
		renderPath = ""
	}

	if err := raster.WritePNG(raster.TrueColorComposite(scene), filepath.Join(dir, "rgb_"+sceneID+".png")); err != nil {
		log.Printf("pipeline: rgb composite for %s: %v", sceneID, err)
	}
	if err := raster.WritePNG(raster.FalseColorComposite(scene), filepath.Join(dir, "false_color_"+sceneID+".png")); err != nil {
		log.Printf("pipeline: false-color composite for %s: %v", sceneID, err)
	}

	boundaryPath = filepath.Join(dir, "plots_"+sceneID+".geojson")
	if err := segment.WriteGeoJSON(plots, boundaryPath); err != nil {
		log.Printf("pipeline: plot boundaries for %s: %v", sceneID, err)
		boundaryPath = ""
	}

	scenePath = filepath.Join(dir, "scene_"+sceneID+".tif")
	if err := raster.SaveScene(scene, scenePath); err != nil {
		log.Printf("pipeline: save scene tiff for %s: %v", sceneID, err)
		scenePath = ""
	}
	return renderPath, boundaryPath, scenePath
}

// timeStep runs fn under the step timeout and records its wall-clock
// duration in milliseconds.
func (o *Orchestrator) timeStep(out *models.SceneOutcome, step Step, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), o.opts.StepTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	out.StepMs[string(step)] = float64(time.Since(start).Microseconds()) / 1000
	return err
}

// failScene finalizes a scene outcome from its state machine.
func (o *Orchestrator) failScene(out *models.SceneOutcome, state *sceneState, step Step, err error) models.SceneOutcome {
	state.fail(step, err)
	out.Phase = state.phase
	out.FailedStep = string(state.failedStep)
	out.Error = state.reason.Error()
	log.Printf("pipeline: scene %s failed at %s: %v", out.SceneID, step, err)
	return *out
}

// aggregateSteps totals per-step durations across scenes, in canonical
// step order.
func aggregateSteps(scenes []models.SceneOutcome) []models.StepStat {
	stats := make([]models.StepStat, 0, len(stepOrder))
	for _, step := range stepOrder {
		st := models.StepStat{Step: string(step)}
		for _, s := range scenes {
			if ms, ok := s.StepMs[string(step)]; ok {
				st.Count++
				st.TotalMs += ms
			}
		}
		if st.Count > 0 {
			st.MeanMs = st.TotalMs / float64(st.Count)
			stats = append(stats, st)
		}
	}
	return stats
}

// outcomeStatus derives the aggregate status deterministically from the
// per-scene outcome list.
func outcomeStatus(rec *models.RunRecord) models.RunStatus {
	if rec.Cancelled {
		return models.RunPartial
	}
	if len(rec.Scenes) == 0 {
		return models.RunSuccess
	}
	n := rec.Successes()
	switch {
	case n == len(rec.Scenes):
		return models.RunSuccess
	case n > 0:
		return models.RunPartial
	default:
		return models.RunFailed
	}
}
