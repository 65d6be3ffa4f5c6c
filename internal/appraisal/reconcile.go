package appraisal

import (
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/parcel-cli/internal/config"
	"github.com/sells-group/parcel-cli/internal/model"
)

// Reconciler turns a subject, its ranked comparables and a location premium
// into an AppraisalResult. It holds no mutable state.
type Reconciler struct {
	cfg config.AppraisalConfig
}

// NewReconciler creates a Reconciler with the given constants.
func NewReconciler(cfg config.AppraisalConfig) *Reconciler {
	return &Reconciler{cfg: cfg}
}

// Config returns the constants the reconciler was built with.
func (r *Reconciler) Config() config.AppraisalConfig {
	return r.cfg
}

// Reconcile values the subject. ranked must already be ordered by relevance;
// only the first MaxComparables with a usable price are consumed. The only
// failure is an invalid subject.
func (r *Reconciler) Reconcile(subject model.Subject, ranked []model.ComparableTransaction, premium model.Premium) (*model.AppraisalResult, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}

	params := ZoneParams(r.cfg, subject.ZoneType.Category())

	cost := r.costApproach(subject, params)
	sales, used := r.salesApproach(subject, ranked, cost.Value)
	income := r.incomeApproach(subject, params)

	cost.Weight = params.Weights.Cost
	sales.Weight = params.Weights.Sales
	income.Weight = params.Weights.Income

	weighted := cost.Value*cost.Weight + sales.Value*sales.Weight + income.Value*income.Weight
	applied := 0.0
	if !math.IsNaN(premium.Percentage) {
		applied = clamp(premium.Percentage, r.cfg.PremiumMinPct, r.cfg.PremiumMaxPct)
	}
	final := weighted * (1 + applied/100)

	res := &model.AppraisalResult{
		Subject:           subject,
		FinalValue:        final,
		ValuePerSqm:       final / subject.Area,
		Cost:              cost,
		Sales:             sales,
		Income:            income,
		Premium:           premium.Clone(),
		AppliedPremiumPct: applied,
		Confidence:        r.confidence(len(used)),
		Transactions:      used,
	}

	zap.L().Debug("appraisal: reconciled",
		zap.String("parcel_id", subject.ParcelID),
		zap.String("zone_category", string(subject.ZoneType.Category())),
		zap.Float64("cost_value", cost.Value),
		zap.Float64("sales_value", sales.Value),
		zap.Float64("income_value", income.Value),
		zap.Float64("premium_pct", applied),
		zap.Float64("final_value", final),
		zap.Int("comparables_used", len(used)),
	)

	return res, nil
}

func (r *Reconciler) costApproach(s model.Subject, p config.ZoneParams) model.CostApproach {
	value := s.OfficialPrice * s.Area * r.cfg.MarketMarkup * p.Factor
	return model.CostApproach{
		ApproachResult: model.ApproachResult{Value: value, ValuePerSqm: value / s.Area},
		OfficialPrice:  s.OfficialPrice,
		MarketMarkup:   r.cfg.MarketMarkup,
		ZoneFactor:     p.Factor,
	}
}

// salesApproach averages the adjusted per-area prices of the usable
// comparables. With none it carries the cost value instead.
func (r *Reconciler) salesApproach(s model.Subject, ranked []model.ComparableTransaction, costValue float64) (model.SalesApproach, []model.ComparableTransaction) {
	var used []model.ComparableTransaction
	var total float64
	for _, tx := range ranked {
		if len(used) >= r.cfg.MaxComparables {
			break
		}
		unit := tx.UnitPrice()
		if unit <= 0 || math.IsNaN(unit) || math.IsInf(unit, 0) {
			continue
		}
		total += unit * r.adjustment(s, tx)
		used = append(used, tx)
	}

	if len(used) == 0 {
		return model.SalesApproach{
			ApproachResult:      model.ApproachResult{Value: costValue, ValuePerSqm: costValue / s.Area},
			FellBackToCostValue: true,
		}, nil
	}

	avg := total / float64(len(used))
	value := avg * s.Area
	return model.SalesApproach{
		ApproachResult:    model.ApproachResult{Value: value, ValuePerSqm: avg},
		ComparablesUsed:   len(used),
		AvgAdjustedPerSqm: avg,
	}, used
}

// adjustment is the product of the time, distance and size adjustments.
func (r *Reconciler) adjustment(s model.Subject, tx model.ComparableTransaction) float64 {
	timeAdj := 1 + float64(max(tx.AgeDays, 0))/365*r.cfg.TimeAdjPerYear
	distAdj := clamp(1-tx.DistanceKM*r.cfg.DistanceAdjPerKM, r.cfg.DistanceAdjMin, r.cfg.DistanceAdjMax)

	sizeAdj := 1.0
	switch {
	case tx.Area <= 0:
	case tx.Area < s.Area:
		sizeAdj = r.cfg.SizeAdjSmaller
	case tx.Area > s.Area:
		sizeAdj = r.cfg.SizeAdjLarger
	}
	return timeAdj * distAdj * sizeAdj
}

func (r *Reconciler) incomeApproach(s model.Subject, p config.ZoneParams) model.IncomeApproach {
	monthly := s.OfficialPrice * p.RentRate
	annual := monthly * 12 * s.Area
	noi := annual * (1 - r.cfg.ExpenseRatio)

	var value float64
	if p.CapRate > 0 {
		value = noi / p.CapRate
	}
	return model.IncomeApproach{
		ApproachResult:    model.ApproachResult{Value: value, ValuePerSqm: value / s.Area},
		MonthlyRentPerSqm: monthly,
		AnnualIncome:      annual,
		ExpenseRatio:      r.cfg.ExpenseRatio,
		NOI:               noi,
		CapRate:           p.CapRate,
	}
}

func (r *Reconciler) confidence(used int) model.ConfidenceLevel {
	switch {
	case used >= r.cfg.HighConfidenceMin:
		return model.ConfidenceHigh
	case used >= r.cfg.MediumConfidenceMin:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
