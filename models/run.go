package models

import "time"

// RunStatus is the aggregate outcome of one pipeline run.
type RunStatus string

const (
	RunSuccess RunStatus = "success" // every scene reached Persisted
	RunPartial RunStatus = "partial" // at least one success, or cancelled early
	RunFailed  RunStatus = "failed"  // zero successes
)

// ScenePhase is the per-scene state machine position. A scene advances
// strictly forward; Failed is terminal and reachable from any non-terminal
// phase.
type ScenePhase string

const (
	PhasePending       ScenePhase = "pending"
	PhaseAcquiring     ScenePhase = "acquiring"
	PhaseIndexComputed ScenePhase = "index_computed"
	PhaseSegmented     ScenePhase = "segmented"
	PhaseClassified    ScenePhase = "classified"
	PhasePersisted     ScenePhase = "persisted"
	PhaseFailed        ScenePhase = "failed"
)

// SceneOutcome records how far one scene got and how long each step took.
type SceneOutcome struct {
	SceneID string     `bson:"sceneId" json:"sceneId"`
	Field   string     `bson:"field"   json:"field"`
	Phase   ScenePhase `bson:"phase"   json:"phase"`

	// Set only when Phase == PhaseFailed.
	FailedStep string `bson:"failedStep,omitempty" json:"failedStep,omitempty"`
	Error      string `bson:"error,omitempty"      json:"error,omitempty"`

	// Wall-clock duration per executed step, in milliseconds.
	StepMs map[string]float64 `bson:"stepMs,omitempty" json:"stepMs,omitempty"`

	PlotCount int      `bson:"plotCount"          json:"plotCount"`
	MeanIndex *float64 `bson:"meanIndex,omitempty" json:"meanIndex,omitempty"`
	Tier      Tier     `bson:"tier,omitempty"      json:"tier,omitempty"`
}

// Succeeded reports whether the scene reached the terminal Persisted phase.
func (o SceneOutcome) Succeeded() bool { return o.Phase == PhasePersisted }

// StepStat aggregates one step's timing across all scenes of a run.
type StepStat struct {
	Step    string  `bson:"step"    json:"step"`
	Count   int     `bson:"count"   json:"count"`
	TotalMs float64 `bson:"totalMs" json:"totalMs"`
	MeanMs  float64 `bson:"meanMs"  json:"meanMs"`
}

// RunRecord is one execution of the orchestrator over a batch of scenes
// ("pipeline_runs" collection). Created at run start, finalized at run end,
// immutable thereafter.
type RunRecord struct {
	ID         string         `bson:"_id"        json:"id"` // uuid
	StartedAt  time.Time      `bson:"startedAt"  json:"startedAt"`
	FinishedAt time.Time      `bson:"finishedAt" json:"finishedAt"`
	Status     RunStatus      `bson:"status"     json:"status"`
	Cancelled  bool           `bson:"cancelled,omitempty" json:"cancelled,omitempty"`
	Scenes     []SceneOutcome `bson:"scenes"     json:"scenes"`
	StepStats  []StepStat     `bson:"stepStats"  json:"stepStats"`
}

// Successes counts scenes that reached Persisted.
func (r *RunRecord) Successes() int {
	n := 0
	for _, s := range r.Scenes {
		if s.Succeeded() {
			n++
		}
	}
	return n
}

// RunStats is the aggregate over stored runs, for the metrics endpoint.
type RunStats struct {
	TotalRuns     int     `bson:"totalRuns"     json:"totalRuns"`
	Succeeded     int     `bson:"succeeded"     json:"succeeded"`
	Partial       int     `bson:"partial"       json:"partial"`
	Failed        int     `bson:"failed"        json:"failed"`
	AvgDurationMs float64 `bson:"avgDurationMs" json:"avgDurationMs"`
	SuccessRate   float64 `bson:"successRate"   json:"successRate"` // percent
}
