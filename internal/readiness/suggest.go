package readiness

import "github.com/sells-group/parcel-cli/internal/model"

// NoActionSuggestion is returned when every factor clears the threshold.
const NoActionSuggestion = "All factors meet program criteria; no action needed."

var remediation = map[model.FactorName]string{
	model.FactorLocation:   "Strengthen the location case: document transit, school and park access or mitigate nearby nuisance facilities.",
	model.FactorPrice:      "Negotiate the acquisition price toward the regional benchmark or add comparable transactions to support the valuation.",
	model.FactorScale:      "Adjust the unit plan toward the program's ideal unit count.",
	model.FactorStructural: "Revisit the massing so FAR and BCR fall within healthy ranges.",
	model.FactorPolicy:     "Consider a higher-priority housing program such as youth or newlywed housing.",
	model.FactorRisk:       "Resolve or document land-use restrictions and strengthen the market evidence behind the appraisal.",
}

// suggestions emits one remediation per factor scoring below threshold, in
// factor order.
func suggestions(factors []model.FactorAnalysis, threshold float64) []string {
	var out []string
	for _, f := range factors {
		if f.RawScore < threshold {
			out = append(out, remediation[f.Name])
		}
	}
	if len(out) == 0 {
		return []string{NoActionSuggestion}
	}
	return out
}
