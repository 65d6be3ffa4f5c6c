package model

import (
	"time"

	"github.com/google/uuid"
)

// Stage names one analysis stage and the sub-document it writes.
type Stage string

const (
	StageAppraisal Stage = "appraisal"
	StageDiagnosis Stage = "diagnosis"
	StageCapacity  Stage = "capacity"
	StageScenario  Stage = "scenario"
	StageRisk      Stage = "risk"
	StageReadiness Stage = "readiness"
)

// AllStages lists every stage in declaration order.
var AllStages = []Stage{StageAppraisal, StageDiagnosis, StageCapacity, StageScenario, StageRisk, StageReadiness}

// AnalysisContext is the per-run record every stage appends to. A stage only
// ever sets its own sub-document; a re-run gets a new ID.
type AnalysisContext struct {
	ID        string    `json:"context_id"`
	CreatedAt time.Time `json:"created_at"`
	Version   string    `json:"version"`

	Appraisal *AppraisalEntry  `json:"appraisal,omitempty"`
	Diagnosis *Diagnosis       `json:"diagnosis,omitempty"`
	Capacity  *Capacity        `json:"capacity,omitempty"`
	Scenario  *ScenarioSet     `json:"scenario,omitempty"`
	Risk      *RiskAssessment  `json:"risk,omitempty"`
	Readiness *ReadinessResult `json:"readiness,omitempty"`
}

// NewAnalysisContext starts a run.
func NewAnalysisContext(version string, now time.Time) *AnalysisContext {
	return &AnalysisContext{
		ID:        uuid.New().String(),
		CreatedAt: now.UTC(),
		Version:   version,
	}
}

// HasStage reports whether the stage's sub-document is present and non-empty.
func (c *AnalysisContext) HasStage(s Stage) bool {
	if c == nil {
		return false
	}
	switch s {
	case StageAppraisal:
		return !c.Appraisal.IsEmpty()
	case StageDiagnosis:
		return !c.Diagnosis.IsEmpty()
	case StageCapacity:
		return !c.Capacity.IsEmpty()
	case StageScenario:
		return !c.Scenario.IsEmpty()
	case StageRisk:
		return !c.Risk.IsEmpty()
	case StageReadiness:
		return !c.Readiness.IsEmpty()
	default:
		return false
	}
}

// CompletedStages lists the stages with a non-empty sub-document.
func (c *AnalysisContext) CompletedStages() []Stage {
	var out []Stage
	for _, s := range AllStages {
		if c.HasStage(s) {
			out = append(out, s)
		}
	}
	return out
}

// AppraisalView returns a read-only view of the appraisal, if present.
func (c *AnalysisContext) AppraisalView() (AppraisalView, bool) {
	if c == nil || c.Appraisal.IsEmpty() {
		return AppraisalView{}, false
	}
	return NewAppraisalView(c.Appraisal), true
}

// Clone returns a deep copy sharing no memory with c.
func (c *AnalysisContext) Clone() *AnalysisContext {
	if c == nil {
		return nil
	}
	return &AnalysisContext{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		Version:   c.Version,
		Appraisal: c.Appraisal.Clone(),
		Diagnosis: c.Diagnosis.Clone(),
		Capacity:  c.Capacity.Clone(),
		Scenario:  c.Scenario.Clone(),
		Risk:      c.Risk.Clone(),
		Readiness: c.Readiness.Clone(),
	}
}
