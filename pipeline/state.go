package pipeline

import "agrisight/models"

// Step names the pipeline stages, in execution order.
type Step string

const (
	StepAcquire  Step = "acquire"
	StepIndex    Step = "index"
	StepSegment  Step = "segment"
	StepClassify Step = "classify"
	StepPersist  Step = "persist"
)

// stepOrder is the canonical ordering for aggregated timing output.
var stepOrder = []Step{StepAcquire, StepIndex, StepSegment, StepClassify, StepPersist}

// sceneState is the per-scene state machine: a phase tag plus failure
// payload, advanced strictly forward. Keeping it a single tagged value
// (instead of scattered flags) makes the failure-containment rule checkable
// in one place.
type sceneState struct {
	phase      models.ScenePhase
	failedStep Step
	reason     error
}

func newSceneState() sceneState {
	return sceneState{phase: models.PhasePending}
}

// advance moves to the next phase. Advancing a terminal state is a
// programming error kept loud.
func (s *sceneState) advance(next models.ScenePhase) {
	if s.terminal() {
		panic("pipeline: advancing terminal scene state")
	}
	s.phase = next
}

// fail marks the terminal Failed state with the offending step and reason.
func (s *sceneState) fail(step Step, err error) {
	if s.terminal() {
		panic("pipeline: failing terminal scene state")
	}
	s.phase = models.PhaseFailed
	s.failedStep = step
	s.reason = err
}

func (s *sceneState) terminal() bool {
	return s.phase == models.PhasePersisted || s.phase == models.PhaseFailed
}
