// Package comparable ranks comparable land transactions by their relevance to
// a subject parcel.
package comparable

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/parcel-cli/internal/config"
	"github.com/sells-group/parcel-cli/internal/model"
)

// DefaultConfig returns the ranker weights and horizons.
// Weights sum to 1.
func DefaultConfig() config.RankerConfig {
	return config.RankerConfig{
		RecencyWeight:   0.40,
		ProximityWeight: 0.35,
		SizeWeight:      0.25,
		RecencyDays:     365,
		ProximityKM:     3,
	}
}

// ValidateConfig checks that the weights are non-negative and sum to 1, and
// that the horizons are not negative.
func ValidateConfig(cfg config.RankerConfig) error {
	var errs []string
	for _, w := range []struct {
		name string
		v    float64
	}{
		{"recency_weight", cfg.RecencyWeight},
		{"proximity_weight", cfg.ProximityWeight},
		{"size_weight", cfg.SizeWeight},
	} {
		if w.v < 0 || math.IsNaN(w.v) {
			errs = append(errs, fmt.Sprintf("%s must not be negative, got %.4f", w.name, w.v))
		}
	}
	if sum := cfg.RecencyWeight + cfg.ProximityWeight + cfg.SizeWeight; math.Abs(sum-1) > 1e-9 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1, got %.4f", sum))
	}
	if cfg.RecencyDays < 0 {
		errs = append(errs, "recency_days must not be negative")
	}
	if cfg.ProximityKM < 0 {
		errs = append(errs, "proximity_km must not be negative")
	}
	if len(errs) > 0 {
		return eris.Errorf("comparable: invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Ranker orders comparables by relevance.
type Ranker struct {
	cfg config.RankerConfig
}

// NewRanker creates a Ranker. Zero horizons fall back to the defaults.
func NewRanker(cfg config.RankerConfig) *Ranker {
	def := DefaultConfig()
	if cfg.RecencyDays <= 0 {
		cfg.RecencyDays = def.RecencyDays
	}
	if cfg.ProximityKM <= 0 {
		cfg.ProximityKM = def.ProximityKM
	}
	return &Ranker{cfg: cfg}
}

// Rank returns a copy of txs with RelevanceScore set, sorted by descending
// relevance. Ties keep their input order. The input slice is not modified.
func (r *Ranker) Rank(subjectArea float64, txs []model.ComparableTransaction) []model.ComparableTransaction {
	out := make([]model.ComparableTransaction, len(txs))
	for i, tx := range txs {
		tx.RelevanceScore = r.Score(subjectArea, tx)
		out[i] = tx
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	return out
}

// Score computes the relevance of a single comparable. Each sub-score is
// held to [0, 1].
func (r *Ranker) Score(subjectArea float64, tx model.ComparableTransaction) float64 {
	recency := clamp01(1 - float64(tx.AgeDays)/r.cfg.RecencyDays)
	proximity := clamp01(1 - tx.DistanceKM/r.cfg.ProximityKM)

	size := 0.0
	if subjectArea > 0 {
		size = clamp01(1 - math.Abs(subjectArea-tx.Area)/subjectArea)
	}

	return r.cfg.RecencyWeight*recency + r.cfg.ProximityWeight*proximity + r.cfg.SizeWeight*size
}

// Rank ranks with the default configuration.
func Rank(subjectArea float64, txs []model.ComparableTransaction) []model.ComparableTransaction {
	return NewRanker(DefaultConfig()).Rank(subjectArea, txs)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
