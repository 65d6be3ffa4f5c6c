package pipeline

import (
	"math"
	"strconv"

	"github.com/sells-group/parcel-cli/internal/model"
)

// Consistency statuses.
const (
	StatusAllConsistent = "ALL_CONSISTENT"
	StatusInconsistent  = "INCONSISTENT"
)

// Checked fields.
const (
	FieldZoneType      = "zone_type"
	FieldOfficialPrice = "official_price"
	FieldFAR           = "far"
)

// floatTolerance is the relative difference under which two prices or
// ratios count as equal.
const floatTolerance = 1e-6

// FieldCheck is one comparison of a field between a reference stage and a
// derived stage.
type FieldCheck struct {
	Field     string      `json:"field"`
	Reference model.Stage `json:"reference"`
	Stage     model.Stage `json:"stage"`
	Expected  string      `json:"expected"`
	Actual    string      `json:"actual"`
	Pass      bool        `json:"pass"`
}

// ConsistencyReport is the outcome of CheckDataConsistency.
type ConsistencyReport struct {
	Status   string                     `json:"status"`
	Fields   map[string]bool            `json:"fields"`
	Checks   []FieldCheck               `json:"checks"`
	Warnings []model.ConsistencyWarning `json:"warnings,omitempty"`
}

// Consistent reports whether every check passed.
func (r ConsistencyReport) Consistent() bool {
	return r.Status == StatusAllConsistent
}

// CheckDataConsistency compares zone type and official price between the
// appraisal and every derived stage that carries them, and FAR between the
// diagnosis and the stages derived from it. Mismatches are reported as
// warnings; this never fails.
func CheckDataConsistency(ctx *model.AnalysisContext) ConsistencyReport {
	rep := ConsistencyReport{
		Status: StatusAllConsistent,
		Fields: map[string]bool{},
	}
	if ctx == nil {
		return rep
	}

	add := func(field string, ref, stage model.Stage, expected, actual string, pass bool) {
		rep.Checks = append(rep.Checks, FieldCheck{
			Field: field, Reference: ref, Stage: stage,
			Expected: expected, Actual: actual, Pass: pass,
		})
		prev, seen := rep.Fields[field]
		rep.Fields[field] = pass && (!seen || prev)
		if !pass {
			rep.Status = StatusInconsistent
			rep.Warnings = append(rep.Warnings, model.ConsistencyWarning{
				Field: field, Stage: stage, Expected: expected, Actual: actual,
			})
		}
	}
	zone := func(ref, stage model.Stage, want, got model.ZoneType) {
		add(FieldZoneType, ref, stage, string(want), string(got), want == got)
	}
	num := func(field string, ref, stage model.Stage, want, got float64) {
		add(field, ref, stage, formatFloat(want), formatFloat(got), floatsEqual(want, got))
	}

	if !ctx.Appraisal.IsEmpty() {
		subj := ctx.Appraisal.Result.Subject
		if !ctx.Diagnosis.IsEmpty() {
			zone(model.StageAppraisal, model.StageDiagnosis, subj.ZoneType, ctx.Diagnosis.ZoneType)
			num(FieldOfficialPrice, model.StageAppraisal, model.StageDiagnosis, subj.OfficialPrice, ctx.Diagnosis.OfficialPrice)
		}
		if !ctx.Capacity.IsEmpty() {
			zone(model.StageAppraisal, model.StageCapacity, subj.ZoneType, ctx.Capacity.ZoneType)
			num(FieldOfficialPrice, model.StageAppraisal, model.StageCapacity, subj.OfficialPrice, ctx.Capacity.OfficialPrice)
		}
		if !ctx.Scenario.IsEmpty() {
			zone(model.StageAppraisal, model.StageScenario, subj.ZoneType, ctx.Scenario.ZoneType)
		}
	}

	if !ctx.Diagnosis.IsEmpty() {
		far := ctx.Diagnosis.LegalFAR
		if !ctx.Capacity.IsEmpty() {
			num(FieldFAR, model.StageDiagnosis, model.StageCapacity, far, ctx.Capacity.FAR)
		}
		if !ctx.Scenario.IsEmpty() {
			if base, ok := baseVariant(ctx.Scenario); ok {
				num(FieldFAR, model.StageDiagnosis, model.StageScenario, far, base.FAR)
			}
		}
	}

	return rep
}

// baseVariant is the scenario with the lowest ordinal.
func baseVariant(s *model.ScenarioSet) (model.ScenarioVariant, bool) {
	if len(s.Variants) == 0 {
		return model.ScenarioVariant{}, false
	}
	best := s.Variants[0]
	for _, v := range s.Variants[1:] {
		if v.Ordinal < best.Ordinal {
			best = v
		}
	}
	return best, true
}

func floatsEqual(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= floatTolerance*scale
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
