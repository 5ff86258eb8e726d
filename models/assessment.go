package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertCategory names the agronomic condition an alert is about.
type AlertCategory string

const (
	AlertFrost      AlertCategory = "frost"
	AlertIrrigation AlertCategory = "irrigation"
	AlertDisease    AlertCategory = "disease"
	AlertSpray      AlertCategory = "spray"
)

// Alert is one fired agronomic warning.
type Alert struct {
	Category AlertCategory `bson:"category" json:"category"`
	Severity int           `bson:"severity" json:"severity"` // 0 info .. 5 critical
	Message  string        `bson:"message"  json:"message"`
}

// Recommendation is templated follow-up text keyed by tier and alerts.
type Recommendation struct {
	Priority string `bson:"priority" json:"priority"` // HIGH | MEDIUM | LOW
	Action   string `bson:"action"   json:"action"`
	Detail   string `bson:"detail"   json:"detail"`
}

// Assessment is the classifier's verdict for a scene (or a single plot):
// a tier, a normalized score in [0,1], fired alerts and recommendations.
type Assessment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SceneID    string             `bson:"sceneId,omitempty" json:"sceneId,omitempty"`
	RunID      string             `bson:"runId,omitempty"   json:"runId,omitempty"`
	AssessedAt time.Time          `bson:"assessedAt"    json:"assessedAt"`

	Tier  Tier    `bson:"tier"  json:"tier"`
	Score float64 `bson:"score" json:"score"`

	// Tier shares of the assessed pixels, when full stats were available.
	HealthyPct  float64 `bson:"healthyPct"  json:"healthyPct"`
	ModeratePct float64 `bson:"moderatePct" json:"moderatePct"`
	SeverePct   float64 `bson:"severePct"   json:"severePct"`
	CriticalPct float64 `bson:"criticalPct" json:"criticalPct"`

	PlotCount       int              `bson:"plotCount" json:"plotCount"`
	Alerts          []Alert          `bson:"alerts"          json:"alerts"`
	Recommendations []Recommendation `bson:"recommendations" json:"recommendations"`
}

// HasAlert reports whether an alert of the given category fired.
func (a *Assessment) HasAlert(c AlertCategory) bool {
	for _, al := range a.Alerts {
		if al.Category == c {
			return true
		}
	}
	return false
}
