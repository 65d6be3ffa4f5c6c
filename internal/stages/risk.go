package stages

import (
	"slices"

	"github.com/sells-group/parcel-cli/internal/model"
)

// Risk deductions from a starting score of 100.
const (
	RestrictionPenalty      = 15
	FewComparablesPenalty   = 15 // fewer than 5 comparables
	SomeComparablesPenalty  = 5  // fewer than 10
	LowConfidencePenalty    = 15
	MediumConfidencePenalty = 5
)

// Risk flags.
const (
	FlagFewComparables = "few comparable transactions"
	FlagLowConfidence  = "low appraisal confidence"
	FlagSalesFallback  = "sales approach fell back to cost value"
)

// RiskScore starts at 100 and deducts per restriction, for a thin
// comparable set and for weak appraisal confidence. The result is in [0, 100].
func RiskScore(restrictions, comparables int, confidence model.ConfidenceLevel) float64 {
	score := 100.0 - float64(RestrictionPenalty*restrictions)

	switch {
	case comparables < 5:
		score -= FewComparablesPenalty
	case comparables < 10:
		score -= SomeComparablesPenalty
	}

	switch confidence {
	case model.ConfidenceLow, "":
		score -= LowConfidencePenalty
	case model.ConfidenceMedium:
		score -= MediumConfidencePenalty
	}

	return max(0, min(100, score))
}

// RiskLevelFor buckets a 0-100 score.
func RiskLevelFor(score float64) model.RiskLevel {
	switch {
	case score >= 75:
		return model.RiskLow
	case score >= 55:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// AssessRisk collects the restrictions from the diagnosis and flags weak
// market evidence.
func AssessRisk(view model.AppraisalView, diag *model.Diagnosis) (*model.RiskAssessment, error) {
	if diag.IsEmpty() {
		return nil, &model.MissingPrerequisiteError{Stage: model.StageRisk, Prerequisite: model.StageDiagnosis}
	}

	var flags []string
	if view.TransactionCount() < 5 {
		flags = append(flags, FlagFewComparables)
	}
	if view.Confidence() == model.ConfidenceLow {
		flags = append(flags, FlagLowConfidence)
	}
	if view.Sales().FellBackToCostValue {
		flags = append(flags, FlagSalesFallback)
	}

	score := RiskScore(len(diag.Restrictions), view.TransactionCount(), view.Confidence())
	return &model.RiskAssessment{
		Level:        RiskLevelFor(score),
		Restrictions: slices.Clone(diag.Restrictions),
		Flags:        flags,
	}, nil
}
