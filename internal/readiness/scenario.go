package readiness

import (
	"sort"

	"github.com/sells-group/parcel-cli/internal/model"
)

// Scenario adjustment coefficients.
const (
	returnAdjPerPct   = 0.5
	returnAdjLimit    = 5.0
	ordinalAdjPerStep = 1.0
)

// compareScenarios shifts the calibrated score per variant by its expected
// return relative to the lowest-ordinal variant and by its ordinal, then
// ranks the variants and recommends the top one.
func compareScenarios(base float64, variants []model.ScenarioVariant) []model.ScenarioScore {
	if len(variants) == 0 {
		return nil
	}

	ref := variants[0]
	for _, v := range variants[1:] {
		if v.Ordinal < ref.Ordinal {
			ref = v
		}
	}

	type scored struct {
		model.ScenarioScore
		ordinal int
	}
	out := make([]scored, len(variants))
	for i, v := range variants {
		adj := clamp((v.ExpectedReturnPct-ref.ExpectedReturnPct)*returnAdjPerPct, -returnAdjLimit, returnAdjLimit) -
			float64(v.Ordinal)*ordinalAdjPerStep
		out[i] = scored{
			ScenarioScore: model.ScenarioScore{
				Name:       v.Name,
				Score:      round2(clamp(base+adj, 0, 100)),
				Adjustment: round2(adj),
			},
			ordinal: v.Ordinal,
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ordinal < out[j].ordinal
	})

	res := make([]model.ScenarioScore, len(out))
	for i, s := range out {
		s.Rank = i + 1
		s.Recommended = i == 0
		res[i] = s.ScenarioScore
	}
	return res
}
