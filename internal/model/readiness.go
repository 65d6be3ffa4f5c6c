package model

// FactorName identifies one readiness factor.
type FactorName string

const (
	FactorLocation   FactorName = "location"
	FactorPrice      FactorName = "price_rationality"
	FactorScale      FactorName = "scale"
	FactorStructural FactorName = "structural"
	FactorPolicy     FactorName = "policy"
	FactorRisk       FactorName = "risk"
)

// AllFactors lists the six factors in report order.
var AllFactors = []FactorName{FactorLocation, FactorPrice, FactorScale, FactorStructural, FactorPolicy, FactorRisk}

// RiskLevel buckets a readiness score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// FactorAnalysis is one scored factor. Contribution = RawScore × Weight.
type FactorAnalysis struct {
	Name         FactorName `json:"name"`
	RawScore     float64    `json:"raw_score"`
	Weight       float64    `json:"weight"`
	Contribution float64    `json:"contribution"`
	Rationale    string     `json:"rationale"`
}

// ScenarioScore is a scenario variant's adjusted readiness score.
type ScenarioScore struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Adjustment  float64 `json:"adjustment"`
	Rank        int     `json:"rank"`
	Recommended bool    `json:"recommended"`
}

// ReadinessResult is the readiness sub-document.
type ReadinessResult struct {
	EngineVersion      string           `json:"engine_version"`
	HousingType        HousingType      `json:"housing_type"`
	TargetUnits        int              `json:"target_units"`
	Factors            []FactorAnalysis `json:"factors"`
	RawScore           float64          `json:"raw_score"`
	PredictedScore     float64          `json:"predicted_score"`
	PassProbability    float64          `json:"pass_probability"`
	RiskLevel          RiskLevel        `json:"risk_level"`
	Suggestions        []string         `json:"suggestions"`
	ScenarioComparison []ScenarioScore  `json:"scenario_comparison,omitempty"`
}

// IsEmpty reports whether the result was never produced.
func (r *ReadinessResult) IsEmpty() bool {
	return r == nil || r.EngineVersion == ""
}

// Factor returns the named factor, if scored.
func (r *ReadinessResult) Factor(name FactorName) (FactorAnalysis, bool) {
	if r == nil {
		return FactorAnalysis{}, false
	}
	for _, f := range r.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return FactorAnalysis{}, false
}

// Clone returns a deep copy.
func (r *ReadinessResult) Clone() *ReadinessResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Factors != nil {
		out.Factors = append([]FactorAnalysis(nil), r.Factors...)
	}
	if r.Suggestions != nil {
		out.Suggestions = append([]string(nil), r.Suggestions...)
	}
	if r.ScenarioComparison != nil {
		out.ScenarioComparison = append([]ScenarioScore(nil), r.ScenarioComparison...)
	}
	return &out
}
