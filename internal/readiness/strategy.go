// Package readiness scores how well an appraised parcel fits a public-housing
// acquisition program.
package readiness

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/parcel-cli/internal/config"
	"github.com/sells-group/parcel-cli/internal/model"
)

// Engine versions.
const (
	VersionLegacy     = "v1"
	VersionCalibrated = "v42"
)

// Weights is a factor weight vector. A valid vector sums to 1.
type Weights struct {
	Location   float64 `json:"location"`
	Price      float64 `json:"price_rationality"`
	Scale      float64 `json:"scale"`
	Structural float64 `json:"structural"`
	Policy     float64 `json:"policy"`
	Risk       float64 `json:"risk"`
}

// Of returns the weight of one factor.
func (w Weights) Of(name model.FactorName) float64 {
	switch name {
	case model.FactorLocation:
		return w.Location
	case model.FactorPrice:
		return w.Price
	case model.FactorScale:
		return w.Scale
	case model.FactorStructural:
		return w.Structural
	case model.FactorPolicy:
		return w.Policy
	case model.FactorRisk:
		return w.Risk
	default:
		return 0
	}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Location + w.Price + w.Scale + w.Structural + w.Policy + w.Risk
}

// ValidateWeights checks that no weight is negative and the vector sums to 1.
func ValidateWeights(w Weights) error {
	var errs []string
	for _, name := range model.AllFactors {
		if w.Of(name) < 0 {
			errs = append(errs, fmt.Sprintf("%s weight must be >= 0", name))
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > 1e-9 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1, got %.4f", sum))
	}
	if len(errs) > 0 {
		return eris.Errorf("readiness: invalid weights: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Strategy is one versioned scoring variant: its weight vector, its
// calibration curve and its pass-probability model.
type Strategy interface {
	Version() string
	Weights() Weights
	// Calibrate maps the raw weighted total to the predicted score.
	Calibrate(raw, priceScore float64) float64
	// PassProbability maps a calibrated score to a probability in [0, 1].
	PassProbability(score, priceScore float64) float64
}

// priceDiscount applies the weak-price discount shared by every strategy.
func priceDiscount(p, priceScore float64, cfg config.ReadinessConfig) float64 {
	if priceScore < cfg.PriceDiscountBelow {
		p *= cfg.PriceDiscount
	}
	return clamp(p, 0, 1)
}

// LegacyStrategy is the v1 engine: totals clamped to the calibration band
// without a multiplier, and a banded pass probability.
type LegacyStrategy struct {
	cfg config.ReadinessConfig
}

// NewLegacyStrategy creates the v1 strategy.
func NewLegacyStrategy(cfg config.ReadinessConfig) *LegacyStrategy {
	return &LegacyStrategy{cfg: cfg}
}

// Version returns "v1".
func (s *LegacyStrategy) Version() string { return VersionLegacy }

// Weights returns the v1 weight vector.
func (s *LegacyStrategy) Weights() Weights {
	return Weights{Price: 0.25, Location: 0.20, Structural: 0.15, Scale: 0.15, Policy: 0.15, Risk: 0.10}
}

// Calibrate applies a 1.0 multiplier and clamps to the configured band.
func (s *LegacyStrategy) Calibrate(raw, _ float64) float64 {
	return clamp(raw, s.cfg.CalibrationMin, s.cfg.CalibrationMax)
}

var legacyPassBands = []struct {
	min float64
	p   float64
}{
	{85, 0.90},
	{75, 0.75},
	{65, 0.55},
	{55, 0.35},
	{45, 0.20},
}

// PassProbability is a step function of the score.
func (s *LegacyStrategy) PassProbability(score, priceScore float64) float64 {
	p := 0.10
	for _, b := range legacyPassBands {
		if score >= b.min {
			p = b.p
			break
		}
	}
	return priceDiscount(p, priceScore, s.cfg)
}

// CalibrationBand multiplies the raw total when the price sub-score is at
// least Min.
type CalibrationBand struct {
	Min        float64
	Multiplier float64
}

// DefaultCalibrationBands returns the v42 price-keyed multipliers, highest
// band first. Scores below the last band use FloorMultiplier.
func DefaultCalibrationBands() []CalibrationBand {
	return []CalibrationBand{
		{Min: 95, Multiplier: 1.05},
		{Min: 85, Multiplier: 1.00},
		{Min: 70, Multiplier: 0.95},
		{Min: 50, Multiplier: 0.85},
	}
}

// FloorMultiplier applies below every calibration band.
const FloorMultiplier = 0.70

// CalibratedStrategy is the v42 engine: price-keyed calibration clamped to a
// configured band and a logistic pass probability.
type CalibratedStrategy struct {
	cfg   config.ReadinessConfig
	bands []CalibrationBand
}

// NewCalibratedStrategy creates the v42 strategy with the default bands.
func NewCalibratedStrategy(cfg config.ReadinessConfig) *CalibratedStrategy {
	return &CalibratedStrategy{cfg: cfg, bands: DefaultCalibrationBands()}
}

// WithBands returns a copy of s using different calibration bands, ordered
// highest Min first.
func (s *CalibratedStrategy) WithBands(bands []CalibrationBand) *CalibratedStrategy {
	out := *s
	out.bands = append([]CalibrationBand(nil), bands...)
	return &out
}

// Version returns "v42".
func (s *CalibratedStrategy) Version() string { return VersionCalibrated }

// Weights returns the v42 weight vector. Price rationality carries the most
// weight.
func (s *CalibratedStrategy) Weights() Weights {
	return Weights{Price: 0.35, Location: 0.15, Scale: 0.15, Structural: 0.10, Policy: 0.15, Risk: 0.10}
}

// Multiplier returns the calibration multiplier for a price sub-score.
func (s *CalibratedStrategy) Multiplier(priceScore float64) float64 {
	for _, b := range s.bands {
		if priceScore >= b.Min {
			return b.Multiplier
		}
	}
	return FloorMultiplier
}

// Calibrate scales raw by the price-keyed multiplier and clamps the result
// to [CalibrationMin, CalibrationMax].
func (s *CalibratedStrategy) Calibrate(raw, priceScore float64) float64 {
	return clamp(raw*s.Multiplier(priceScore), s.cfg.CalibrationMin, s.cfg.CalibrationMax)
}

// PassProbability is a logistic curve centred on LogisticMidpoint.
func (s *CalibratedStrategy) PassProbability(score, priceScore float64) float64 {
	steep := s.cfg.LogisticSteepness
	if steep <= 0 {
		steep = 8
	}
	p := 1 / (1 + math.Exp(-(score-s.cfg.LogisticMidpoint)/steep))
	return priceDiscount(p, priceScore, s.cfg)
}

// StrategyFor selects a strategy by version.
func StrategyFor(version string, cfg config.ReadinessConfig) (Strategy, error) {
	var s Strategy
	switch strings.ToLower(strings.TrimSpace(version)) {
	case VersionLegacy:
		s = NewLegacyStrategy(cfg)
	case VersionCalibrated:
		s = NewCalibratedStrategy(cfg)
	default:
		return nil, &model.InvalidInputError{Field: "engine", Reason: fmt.Sprintf("unknown engine version %q", version)}
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, eris.Wrapf(err, "readiness: strategy %s", s.Version())
	}
	return s, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
