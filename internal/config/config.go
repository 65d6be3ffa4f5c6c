package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig        `yaml:"store" mapstructure:"store"`
	Log       LogConfig          `yaml:"log" mapstructure:"log"`
	Ranker    RankerConfig       `yaml:"ranker" mapstructure:"ranker"`
	Appraisal AppraisalConfig    `yaml:"appraisal" mapstructure:"appraisal"`
	Pipeline  PipelineConfig     `yaml:"pipeline" mapstructure:"pipeline"`
	Readiness ReadinessConfig    `yaml:"readiness" mapstructure:"readiness"`
	Batch     BatchConfig        `yaml:"batch" mapstructure:"batch"`
	Benchmark map[string]float64 `yaml:"benchmark" mapstructure:"benchmark"`
}

// StoreConfig configures the context store backend.
type StoreConfig struct {
	Driver      string      `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string      `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32       `yaml:"max_conns" mapstructure:"max_conns"`
	Retry       RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig bounds retries of transient store failures.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMS int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMS     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RankerConfig holds comparable relevance weights and normalization horizons.
type RankerConfig struct {
	RecencyWeight   float64 `yaml:"recency_weight" mapstructure:"recency_weight"`
	ProximityWeight float64 `yaml:"proximity_weight" mapstructure:"proximity_weight"`
	SizeWeight      float64 `yaml:"size_weight" mapstructure:"size_weight"`
	RecencyDays     float64 `yaml:"recency_days" mapstructure:"recency_days"`
	ProximityKM     float64 `yaml:"proximity_km" mapstructure:"proximity_km"`
}

// ApproachWeights is the (cost, sales, income) reconciliation triple.
type ApproachWeights struct {
	Cost   float64 `yaml:"cost" mapstructure:"cost"`
	Sales  float64 `yaml:"sales" mapstructure:"sales"`
	Income float64 `yaml:"income" mapstructure:"income"`
}

// Sum returns the total of the three weights.
func (w ApproachWeights) Sum() float64 {
	return w.Cost + w.Sales + w.Income
}

// ZoneParams holds the zone-conditioned appraisal constants.
type ZoneParams struct {
	Factor   float64         `yaml:"factor" mapstructure:"factor"`
	RentRate float64         `yaml:"rent_rate" mapstructure:"rent_rate"`
	CapRate  float64         `yaml:"cap_rate" mapstructure:"cap_rate"`
	Weights  ApproachWeights `yaml:"weights" mapstructure:"weights"`
}

// ZoneTable maps each zone category to its parameters.
type ZoneTable struct {
	Commercial  ZoneParams `yaml:"commercial" mapstructure:"commercial"`
	Residential ZoneParams `yaml:"residential" mapstructure:"residential"`
	Industrial  ZoneParams `yaml:"industrial" mapstructure:"industrial"`
	Green       ZoneParams `yaml:"green" mapstructure:"green"`
	Other       ZoneParams `yaml:"other" mapstructure:"other"`
}

// AppraisalConfig holds reconciler constants. Assessed prices trail market
// prices, which MarketMarkup encodes.
type AppraisalConfig struct {
	MarketMarkup        float64   `yaml:"market_markup" mapstructure:"market_markup"`
	ExpenseRatio        float64   `yaml:"expense_ratio" mapstructure:"expense_ratio"`
	MaxComparables      int       `yaml:"max_comparables" mapstructure:"max_comparables"`
	PremiumMinPct       float64   `yaml:"premium_min_pct" mapstructure:"premium_min_pct"`
	PremiumMaxPct       float64   `yaml:"premium_max_pct" mapstructure:"premium_max_pct"`
	TimeAdjPerYear      float64   `yaml:"time_adj_per_year" mapstructure:"time_adj_per_year"`
	DistanceAdjPerKM    float64   `yaml:"distance_adj_per_km" mapstructure:"distance_adj_per_km"`
	DistanceAdjMin      float64   `yaml:"distance_adj_min" mapstructure:"distance_adj_min"`
	DistanceAdjMax      float64   `yaml:"distance_adj_max" mapstructure:"distance_adj_max"`
	SizeAdjSmaller      float64   `yaml:"size_adj_smaller" mapstructure:"size_adj_smaller"`
	SizeAdjLarger       float64   `yaml:"size_adj_larger" mapstructure:"size_adj_larger"`
	HighConfidenceMin   int       `yaml:"high_confidence_min" mapstructure:"high_confidence_min"`
	MediumConfidenceMin int       `yaml:"medium_confidence_min" mapstructure:"medium_confidence_min"`
	Zones               ZoneTable `yaml:"zones" mapstructure:"zones"`
}

// PipelineConfig configures context validation.
type PipelineConfig struct {
	Version         string `yaml:"version" mapstructure:"version"`
	MinTransactions int    `yaml:"min_transactions" mapstructure:"min_transactions"`
}

// ReadinessConfig configures the readiness scoring engine.
type ReadinessConfig struct {
	Engine              string  `yaml:"engine" mapstructure:"engine"`
	SuggestionThreshold float64 `yaml:"suggestion_threshold" mapstructure:"suggestion_threshold"`
	CalibrationMin      float64 `yaml:"calibration_min" mapstructure:"calibration_min"`
	CalibrationMax      float64 `yaml:"calibration_max" mapstructure:"calibration_max"`
	LogisticMidpoint    float64 `yaml:"logistic_midpoint" mapstructure:"logistic_midpoint"`
	LogisticSteepness   float64 `yaml:"logistic_steepness" mapstructure:"logistic_steepness"`
	PriceDiscount       float64 `yaml:"price_discount" mapstructure:"price_discount"`
	PriceDiscountBelow  float64 `yaml:"price_discount_below" mapstructure:"price_discount_below"`
	BenchmarkMarkup     float64 `yaml:"benchmark_markup" mapstructure:"benchmark_markup"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PARCEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "parcel.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.retry.max_attempts", 4)
	v.SetDefault("store.retry.initial_backoff_ms", 50)
	v.SetDefault("store.retry.max_backoff_ms", 2000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("batch.max_concurrency", 4)

	v.SetDefault("ranker.recency_weight", 0.40)
	v.SetDefault("ranker.proximity_weight", 0.35)
	v.SetDefault("ranker.size_weight", 0.25)
	v.SetDefault("ranker.recency_days", 365)
	v.SetDefault("ranker.proximity_km", 3)

	v.SetDefault("appraisal.market_markup", 1.45)
	v.SetDefault("appraisal.expense_ratio", 0.20)
	v.SetDefault("appraisal.max_comparables", 10)
	v.SetDefault("appraisal.premium_min_pct", -10)
	v.SetDefault("appraisal.premium_max_pct", 50)
	v.SetDefault("appraisal.time_adj_per_year", 0.03)
	v.SetDefault("appraisal.distance_adj_per_km", 0.02)
	v.SetDefault("appraisal.distance_adj_min", 0.8)
	v.SetDefault("appraisal.distance_adj_max", 1.2)
	v.SetDefault("appraisal.size_adj_smaller", 1.02)
	v.SetDefault("appraisal.size_adj_larger", 0.98)
	v.SetDefault("appraisal.high_confidence_min", 10)
	v.SetDefault("appraisal.medium_confidence_min", 5)
	setZoneDefaults(v, "commercial", 1.20, 0.008, 0.055, 0.20, 0.40, 0.40)
	setZoneDefaults(v, "residential", 1.00, 0.006, 0.045, 0.25, 0.55, 0.20)
	setZoneDefaults(v, "industrial", 0.90, 0.005, 0.060, 0.50, 0.35, 0.15)
	setZoneDefaults(v, "green", 0.85, 0.005, 0.060, 0.50, 0.35, 0.15)
	setZoneDefaults(v, "other", 1.00, 0.005, 0.060, 0.50, 0.35, 0.15)

	v.SetDefault("pipeline.version", "v42")
	v.SetDefault("pipeline.min_transactions", 5)

	v.SetDefault("readiness.engine", "v42")
	v.SetDefault("readiness.suggestion_threshold", 70)
	v.SetDefault("readiness.calibration_min", 40)
	v.SetDefault("readiness.calibration_max", 95)
	v.SetDefault("readiness.logistic_midpoint", 65)
	v.SetDefault("readiness.logistic_steepness", 8)
	v.SetDefault("readiness.price_discount", 0.8)
	v.SetDefault("readiness.price_discount_below", 50)
	v.SetDefault("readiness.benchmark_markup", 1.45)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setZoneDefaults(v *viper.Viper, zone string, factor, rent, capRate, wCost, wSales, wIncome float64) {
	prefix := "appraisal.zones." + zone + "."
	v.SetDefault(prefix+"factor", factor)
	v.SetDefault(prefix+"rent_rate", rent)
	v.SetDefault(prefix+"cap_rate", capRate)
	v.SetDefault(prefix+"weights.cost", wCost)
	v.SetDefault(prefix+"weights.sales", wSales)
	v.SetDefault(prefix+"weights.income", wIncome)
}

// Validate checks the settings that must hold before any command runs.
func (c *Config) Validate() error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	if c.Store.Retry.MaxAttempts < 1 {
		errs = append(errs, "store.retry.max_attempts must be >= 1")
	}
	if c.Pipeline.MinTransactions < 0 {
		errs = append(errs, "pipeline.min_transactions must be >= 0")
	}
	if c.Batch.MaxConcurrency < 1 {
		errs = append(errs, "batch.max_concurrency must be >= 1")
	}
	r := c.Ranker
	if r.RecencyWeight < 0 || r.ProximityWeight < 0 || r.SizeWeight < 0 {
		errs = append(errs, "ranker weights must not be negative")
	}
	if sum := r.RecencyWeight + r.ProximityWeight + r.SizeWeight; math.Abs(sum-1) > 1e-9 {
		errs = append(errs, fmt.Sprintf("ranker weights must sum to 1, got %.4f", sum))
	}
	if c.Readiness.CalibrationMin >= c.Readiness.CalibrationMax {
		errs = append(errs, "readiness.calibration_min must be < readiness.calibration_max")
	}
	for region, price := range c.Benchmark {
		if price <= 0 {
			errs = append(errs, "benchmark."+region+" must be > 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
