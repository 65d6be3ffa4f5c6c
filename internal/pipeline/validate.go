// Package pipeline runs the analysis stages over a shared context and guards
// it: stage ordering, appraisal completeness, protection of the appraisal and
// cross-stage consistency. The guards are pure functions over a context value.
package pipeline

import (
	"fmt"

	"github.com/sells-group/parcel-cli/internal/model"
)

// DefaultMinTransactions is the fewest comparables an appraisal may rest on.
const DefaultMinTransactions = 5

// ValidateAppraisalComplete fails with *model.IncompletePipelineError when
// the appraisal is missing, lacks a required field, or used fewer than
// minTransactions comparables.
func ValidateAppraisalComplete(ctx *model.AnalysisContext, minTransactions int) error {
	if ctx == nil || ctx.Appraisal == nil {
		return &model.IncompletePipelineError{
			Reason:  "appraisal stage has not run",
			Missing: []string{string(model.StageAppraisal)},
		}
	}

	missing := missingAppraisalFields(&ctx.Appraisal.Result)
	if len(missing) > 0 {
		return &model.IncompletePipelineError{Reason: "appraisal lacks required data", Missing: missing}
	}

	if n := len(ctx.Appraisal.Result.Transactions); n < minTransactions {
		return &model.IncompletePipelineError{
			Reason:  fmt.Sprintf("appraisal used %d transactions, need at least %d", n, minTransactions),
			Missing: []string{"transactions"},
		}
	}
	return nil
}

func missingAppraisalFields(r *model.AppraisalResult) []string {
	var missing []string
	check := func(name string, ok bool) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check("final_value", r.FinalValue > 0)
	check("value_per_sqm", r.ValuePerSqm > 0)
	check("confidence_level", r.Confidence != "")
	check("zone_type", r.Subject.ZoneType != "")
	check("official_price", r.Subject.OfficialPrice > 0)
	check("area", r.Subject.Area > 0)
	check("cost_approach", r.Cost.Value > 0)
	check("sales_comparison_approach", r.Sales.Value > 0)
	check("income_approach", r.Income.Value > 0)
	return missing
}

// ValidatePipelineOrder checks stage against DefaultGraph.
func ValidatePipelineOrder(ctx *model.AnalysisContext, stage model.Stage) error {
	return DefaultGraph.ValidateOrder(ctx, stage)
}

// ValidateOrder fails with *model.DependencyMissingError naming every
// predecessor of stage whose sub-document is absent or empty. An unknown
// stage is an *model.InvalidInputError.
func (g *Graph) ValidateOrder(ctx *model.AnalysisContext, stage model.Stage) error {
	deps, ok := g.Requires(stage)
	if !ok {
		return &model.InvalidInputError{Field: "stage", Reason: fmt.Sprintf("unknown stage %q", stage)}
	}

	var missing []model.Stage
	for _, dep := range deps {
		if !ctx.HasStage(dep) {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &model.DependencyMissingError{Stage: stage, Missing: missing}
	}
	return nil
}

// ValidateContextStructure lists structural problems with ctx. An empty
// result means the context is sound.
func ValidateContextStructure(ctx *model.AnalysisContext) []string {
	if ctx == nil {
		return []string{"context is nil"}
	}

	var issues []string
	if ctx.ID == "" {
		issues = append(issues, "missing context_id")
	}
	if ctx.CreatedAt.IsZero() {
		issues = append(issues, "missing created_at")
	}
	if ctx.Version == "" {
		issues = append(issues, "missing version")
	}

	if ctx.Appraisal == nil {
		issues = append(issues, "missing appraisal")
	} else {
		for _, f := range missingAppraisalFields(&ctx.Appraisal.Result) {
			issues = append(issues, "appraisal: missing "+f)
		}
		if ctx.Appraisal.Protected && ctx.Appraisal.LockTimestamp.IsZero() {
			issues = append(issues, "appraisal: protected without lock_timestamp")
		}
	}

	// A present stage whose requirements are absent means the context was
	// assembled out of order.
	for _, s := range DefaultGraph.Order() {
		if !ctx.HasStage(s) {
			continue
		}
		if err := ValidatePipelineOrder(ctx, s); err != nil {
			issues = append(issues, err.Error())
		}
	}
	return issues
}
