package stages

import (
	"math"

	"github.com/sells-group/parcel-cli/internal/model"
)

// ScenarioConfig holds the cost assumptions behind the development variants.
type ScenarioConfig struct {
	ConstructionCostPerSqm float64 // per m² of gross floor area
	Margin                 float64 // developer margin priced into the base variant
	DensityBonus           float64 // FAR multiplier of the density-up variant
	CommercialShare        float64 // share of GFA given to retail in the mixed-use variant
	CommercialPremium      float64 // retail price relative to residential
}

// DefaultScenarioConfig returns the standard assumptions.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		ConstructionCostPerSqm: 2_000_000,
		Margin:                 0.15,
		DensityBonus:           1.2,
		CommercialShare:        0.20,
		CommercialPremium:      1.10,
	}
}

// Scenario variant names.
const (
	ScenarioBase      = "base"
	ScenarioDensityUp = "density-up"
	ScenarioMixedUse  = "mixed-use"
)

// BuildScenarios prices three development variants on top of the capacity
// estimate. The sale price per saleable m² is set so the base variant earns
// exactly the configured margin; denser or mixed variants are measured
// against that price.
func BuildScenarios(view model.AppraisalView, diag *model.Diagnosis, capacity *model.Capacity, cfg ScenarioConfig) (*model.ScenarioSet, error) {
	if diag.IsEmpty() {
		return nil, &model.MissingPrerequisiteError{Stage: model.StageScenario, Prerequisite: model.StageDiagnosis}
	}
	if capacity.IsEmpty() {
		return nil, &model.MissingPrerequisiteError{Stage: model.StageScenario, Prerequisite: model.StageCapacity}
	}

	land := view.FinalValue()
	baseGFA := capacity.GrossFloorArea
	baseCost := land + baseGFA*cfg.ConstructionCostPerSqm
	salePrice := baseCost * (1 + cfg.Margin) / (baseGFA * SaleableRatio)

	variant := func(name string, ordinal int, far float64, residentialShare, priceMix float64) model.ScenarioVariant {
		gfa := baseGFA * far / capacity.FAR
		cost := land + gfa*cfg.ConstructionCostPerSqm
		revenue := gfa * SaleableRatio * salePrice * priceMix
		return model.ScenarioVariant{
			Name:              name,
			Ordinal:           ordinal,
			FAR:               far,
			Units:             unitsFor(gfa*residentialShare, capacity.UnitSize),
			TotalCost:         cost,
			ExpectedReturnPct: round2((revenue - cost) / cost * 100),
		}
	}

	mix := (1 - cfg.CommercialShare) + cfg.CommercialShare*cfg.CommercialPremium
	return &model.ScenarioSet{
		ZoneType: view.ZoneType(),
		Variants: []model.ScenarioVariant{
			variant(ScenarioBase, 0, capacity.FAR, 1, 1),
			variant(ScenarioDensityUp, 1, capacity.FAR*cfg.DensityBonus, 1, 1),
			variant(ScenarioMixedUse, 2, capacity.FAR, 1-cfg.CommercialShare, mix),
		},
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
