package readiness

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/parcel-cli/internal/config"
	"github.com/sells-group/parcel-cli/internal/model"
	"github.com/sells-group/parcel-cli/internal/stages"
)

// DefaultConfig returns a config.ReadinessConfig with the standard settings.
func DefaultConfig() config.ReadinessConfig {
	return config.ReadinessConfig{
		Engine:              VersionCalibrated,
		SuggestionThreshold: 70,
		CalibrationMin:      40,
		CalibrationMax:      95,
		LogisticMidpoint:    65,
		LogisticSteepness:   8,
		PriceDiscount:       0.8,
		PriceDiscountBelow:  50,
		BenchmarkMarkup:     1.45,
	}
}

// ValidateConfig checks the calibration band, the logistic midpoint and the
// price discount settings.
func ValidateConfig(cfg config.ReadinessConfig) error {
	var errs []string
	if cfg.CalibrationMin < 0 || cfg.CalibrationMax > 100 {
		errs = append(errs, fmt.Sprintf("calibration band [%.2f, %.2f] must lie within [0, 100]", cfg.CalibrationMin, cfg.CalibrationMax))
	}
	if cfg.CalibrationMin >= cfg.CalibrationMax {
		errs = append(errs, "calibration_min must be < calibration_max")
	}
	if cfg.LogisticMidpoint <= 0 || cfg.LogisticMidpoint >= 100 {
		errs = append(errs, fmt.Sprintf("logistic_midpoint must be in (0, 100), got %.2f", cfg.LogisticMidpoint))
	}
	if cfg.LogisticSteepness < 0 {
		errs = append(errs, "logistic_steepness must not be negative")
	}
	if cfg.PriceDiscount <= 0 || cfg.PriceDiscount > 1 {
		errs = append(errs, fmt.Sprintf("price_discount must be in (0, 1], got %.2f", cfg.PriceDiscount))
	}
	if cfg.PriceDiscountBelow < 0 || cfg.PriceDiscountBelow > 100 {
		errs = append(errs, "price_discount_below must be in [0, 100]")
	}
	if cfg.SuggestionThreshold < 0 || cfg.SuggestionThreshold > 100 {
		errs = append(errs, "suggestion_threshold must be in [0, 100]")
	}
	if cfg.BenchmarkMarkup <= 0 {
		errs = append(errs, "benchmark_markup must be positive")
	}
	if len(errs) > 0 {
		return eris.Errorf("readiness: invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Engine scores a context with one strategy. It keeps no state between calls.
type Engine struct {
	strategy   Strategy
	cfg        config.ReadinessConfig
	benchmarks map[string]float64
}

// NewEngine creates an Engine. benchmarks maps a region to its benchmark
// price per m² and may be nil.
func NewEngine(strategy Strategy, cfg config.ReadinessConfig, benchmarks map[string]float64) (*Engine, error) {
	if strategy == nil {
		return nil, eris.New("readiness: nil strategy")
	}
	if err := ValidateWeights(strategy.Weights()); err != nil {
		return nil, eris.Wrapf(err, "readiness: engine %s", strategy.Version())
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, eris.Wrapf(err, "readiness: engine %s", strategy.Version())
	}
	b := make(map[string]float64, len(benchmarks))
	for k, v := range benchmarks {
		b[k] = v
	}
	return &Engine{strategy: strategy, cfg: cfg, benchmarks: b}, nil
}

// Strategy returns the engine's strategy.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Score produces the readiness result for ctx. The appraisal is required;
// other stages fill in factor inputs when present and fall back to neutral
// scores when not. targetUnits <= 0 uses the capacity estimate.
func (e *Engine) Score(ctx *model.AnalysisContext, ht model.HousingType, targetUnits int) (*model.ReadinessResult, error) {
	view, ok := ctx.AppraisalView()
	if !ok {
		return nil, &model.MissingPrerequisiteError{Stage: model.StageReadiness, Prerequisite: model.StageAppraisal}
	}

	if targetUnits <= 0 && !ctx.Capacity.IsEmpty() {
		targetUnits = ctx.Capacity.EstimatedUnits
	}

	weights := e.strategy.Weights()
	res := &model.ReadinessResult{
		EngineVersion: e.strategy.Version(),
		HousingType:   ht,
		TargetUnits:   targetUnits,
	}

	addFactor := func(name model.FactorName, score float64, rationale string) {
		w := weights.Of(name)
		res.Factors = append(res.Factors, model.FactorAnalysis{
			Name:         name,
			RawScore:     round2(score),
			Weight:       w,
			Contribution: round2(score * w),
			Rationale:    rationale,
		})
		res.RawScore += score * w
	}

	comps := view.TransactionCount()

	score, why := scoreLocation(view.ZoneType(), view.Premium().Factors)
	addFactor(model.FactorLocation, score, why)

	priceScore, why := scorePrice(view.ValuePerSqm(), e.benchmark(ctx, view), comps)
	addFactor(model.FactorPrice, priceScore, why)

	score, why = scoreScale(ht, targetUnits)
	addFactor(model.FactorScale, score, why)

	far, bcr := structuralInputs(ctx)
	score, why = scoreStructural(far, bcr)
	addFactor(model.FactorStructural, score, why)

	score, why = scorePolicy(ht)
	addFactor(model.FactorPolicy, score, why)

	score, why = scoreRisk(restrictions(ctx), comps, view.Confidence())
	addFactor(model.FactorRisk, score, why)

	res.RawScore = round2(res.RawScore)
	res.PredictedScore = round2(e.strategy.Calibrate(res.RawScore, priceScore))
	res.PassProbability = round4(e.strategy.PassProbability(res.PredictedScore, priceScore))
	res.RiskLevel = stages.RiskLevelFor(res.PredictedScore)
	res.Suggestions = suggestions(res.Factors, e.cfg.SuggestionThreshold)

	if !ctx.Scenario.IsEmpty() {
		res.ScenarioComparison = compareScenarios(res.PredictedScore, ctx.Scenario.Variants)
	}

	zap.L().Debug("readiness: scored",
		zap.String("context_id", ctx.ID),
		zap.String("engine", res.EngineVersion),
		zap.String("housing_type", string(ht)),
		zap.Float64("raw_score", res.RawScore),
		zap.Float64("predicted_score", res.PredictedScore),
		zap.Float64("pass_probability", res.PassProbability),
	)

	return res, nil
}

// benchmark resolves the regional benchmark price per m²: the configured
// regional table first, then the diagnosis, then the official price marked
// up to market.
func (e *Engine) benchmark(ctx *model.AnalysisContext, view model.AppraisalView) float64 {
	region := view.Subject().Region
	if !ctx.Diagnosis.IsEmpty() && ctx.Diagnosis.Region != "" {
		region = ctx.Diagnosis.Region
	}
	if v, ok := e.benchmarks[region]; ok && v > 0 {
		return v
	}
	if !ctx.Diagnosis.IsEmpty() && ctx.Diagnosis.BenchmarkPricePerSqm > 0 {
		return ctx.Diagnosis.BenchmarkPricePerSqm
	}
	return view.OfficialPrice() * e.cfg.BenchmarkMarkup
}

// structuralInputs prefers the capacity plan and falls back to the legal
// limits from the diagnosis.
func structuralInputs(ctx *model.AnalysisContext) (far, bcr float64) {
	if !ctx.Capacity.IsEmpty() {
		return ctx.Capacity.FAR, ctx.Capacity.BCR
	}
	if !ctx.Diagnosis.IsEmpty() {
		return ctx.Diagnosis.LegalFAR, ctx.Diagnosis.LegalBCR
	}
	return 0, 0
}

func restrictions(ctx *model.AnalysisContext) []string {
	if !ctx.Risk.IsEmpty() {
		return ctx.Risk.Restrictions
	}
	if !ctx.Diagnosis.IsEmpty() {
		return ctx.Diagnosis.Restrictions
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
