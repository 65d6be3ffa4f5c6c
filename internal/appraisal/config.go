// Package appraisal reconciles the cost, sales-comparison and income
// approaches into a single land value.
package appraisal

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/parcel-cli/internal/config"
	"github.com/sells-group/parcel-cli/internal/model"
)

// weightTolerance bounds how far a weight triple may drift from 1.
const weightTolerance = 1e-9

// DefaultConfig returns a config.AppraisalConfig with the standard constants.
// Every zone's weight triple sums to 1.
func DefaultConfig() config.AppraisalConfig {
	return config.AppraisalConfig{
		MarketMarkup:        1.45,
		ExpenseRatio:        0.20,
		MaxComparables:      10,
		PremiumMinPct:       -10,
		PremiumMaxPct:       50,
		TimeAdjPerYear:      0.03,
		DistanceAdjPerKM:    0.02,
		DistanceAdjMin:      0.8,
		DistanceAdjMax:      1.2,
		SizeAdjSmaller:      1.02,
		SizeAdjLarger:       0.98,
		HighConfidenceMin:   10,
		MediumConfidenceMin: 5,
		Zones: config.ZoneTable{
			Commercial: config.ZoneParams{
				Factor: 1.20, RentRate: 0.008, CapRate: 0.055,
				Weights: config.ApproachWeights{Cost: 0.20, Sales: 0.40, Income: 0.40},
			},
			Residential: config.ZoneParams{
				Factor: 1.00, RentRate: 0.006, CapRate: 0.045,
				Weights: config.ApproachWeights{Cost: 0.25, Sales: 0.55, Income: 0.20},
			},
			Industrial: config.ZoneParams{
				Factor: 0.90, RentRate: 0.005, CapRate: 0.060,
				Weights: config.ApproachWeights{Cost: 0.50, Sales: 0.35, Income: 0.15},
			},
			Green: config.ZoneParams{
				Factor: 0.85, RentRate: 0.005, CapRate: 0.060,
				Weights: config.ApproachWeights{Cost: 0.50, Sales: 0.35, Income: 0.15},
			},
			Other: config.ZoneParams{
				Factor: 1.00, RentRate: 0.005, CapRate: 0.060,
				Weights: config.ApproachWeights{Cost: 0.50, Sales: 0.35, Income: 0.15},
			},
		},
	}
}

// ZoneParams returns the parameters for a zone category.
func ZoneParams(c config.AppraisalConfig, cat model.ZoneCategory) config.ZoneParams {
	switch cat {
	case model.ZoneCommercial:
		return c.Zones.Commercial
	case model.ZoneResidential:
		return c.Zones.Residential
	case model.ZoneIndustrial:
		return c.Zones.Industrial
	case model.ZoneGreen:
		return c.Zones.Green
	default:
		return c.Zones.Other
	}
}

var zoneOrder = []model.ZoneCategory{
	model.ZoneCommercial, model.ZoneResidential, model.ZoneIndustrial, model.ZoneGreen, model.ZoneOther,
}

// ValidateConfig checks that an AppraisalConfig is internally consistent.
func ValidateConfig(c config.AppraisalConfig) error {
	var errs []string

	if c.MarketMarkup <= 0 {
		errs = append(errs, "market_markup must be > 0")
	}
	if c.ExpenseRatio < 0 || c.ExpenseRatio >= 1 {
		errs = append(errs, "expense_ratio must be in [0, 1)")
	}
	if c.MaxComparables < 1 {
		errs = append(errs, "max_comparables must be >= 1")
	}
	if c.PremiumMinPct > c.PremiumMaxPct {
		errs = append(errs, "premium_min_pct must be <= premium_max_pct")
	}
	if c.PremiumMinPct <= -100 {
		errs = append(errs, "premium_min_pct must be > -100")
	}
	if c.DistanceAdjMin > c.DistanceAdjMax {
		errs = append(errs, "distance_adj_min must be <= distance_adj_max")
	}
	if c.MediumConfidenceMin > c.HighConfidenceMin {
		errs = append(errs, "medium_confidence_min must be <= high_confidence_min")
	}

	for _, cat := range zoneOrder {
		p := ZoneParams(c, cat)
		if p.Factor <= 0 {
			errs = append(errs, fmt.Sprintf("zones.%s.factor must be > 0", cat))
		}
		if p.RentRate < 0 {
			errs = append(errs, fmt.Sprintf("zones.%s.rent_rate must be >= 0", cat))
		}
		if p.CapRate <= 0 {
			errs = append(errs, fmt.Sprintf("zones.%s.cap_rate must be > 0", cat))
		}
		if p.Weights.Cost < 0 || p.Weights.Sales < 0 || p.Weights.Income < 0 {
			errs = append(errs, fmt.Sprintf("zones.%s.weights must be >= 0", cat))
		}
		if sum := p.Weights.Sum(); math.Abs(sum-1) > weightTolerance {
			errs = append(errs, fmt.Sprintf("zones.%s.weights should sum to 1, got %.4f", cat, sum))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("appraisal: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
