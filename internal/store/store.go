// Package store persists analysis contexts. Writes are upserts keyed by
// context ID; the last write wins.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/parcel-cli/internal/config"
	"github.com/sells-group/parcel-cli/internal/db"
	"github.com/sells-group/parcel-cli/internal/model"
	"github.com/sells-group/parcel-cli/internal/resilience"
)

// ErrNotFound is returned when a context ID has no stored record.
var ErrNotFound = eris.New("store: not found")

// ContextFilter specifies criteria for listing contexts.
type ContextFilter struct {
	ParcelID string `json:"parcel_id,omitempty"`
	Version  string `json:"version,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// ContextSummary is the indexed subset of a stored context.
type ContextSummary struct {
	ID             string    `json:"context_id"`
	ParcelID       string    `json:"parcel_id"`
	Version        string    `json:"version"`
	EngineVersion  string    `json:"engine_version"`
	FinalValue     float64   `json:"final_value"`
	PredictedScore float64   `json:"predicted_score"`
	RiskLevel      string    `json:"risk_level"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Store defines the persistence interface for analysis contexts.
type Store interface {
	SaveContext(ctx context.Context, ac *model.AnalysisContext) error
	GetContext(ctx context.Context, id string) (*model.AnalysisContext, error)
	ListContexts(ctx context.Context, filter ContextFilter) ([]ContextSummary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the backend named by cfg.Driver and runs migrations.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "sqlite", "":
		st, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		retry := resilience.FromConfig(cfg.Retry)
		retry.OnRetry = resilience.RetryLogger("connect", zap.String("driver", cfg.Driver))
		st, err = resilience.DoVal(ctx, retry, func(ctx context.Context) (Store, error) {
			return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns})
		})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

const contextsTable = "analysis_contexts"

// contextColumns is the bind order of record.args.
var contextColumns = []string{
	"id", "parcel_id", "version", "engine_version", "final_value",
	"predicted_score", "risk_level", "document", "created_at", "updated_at",
}

// upsertStatement keeps created_at from the first write.
func upsertStatement(p db.Placeholder) string {
	update := make([]string, 0, len(contextColumns))
	for _, c := range contextColumns {
		if c != "id" && c != "created_at" {
			update = append(update, c)
		}
	}
	sql, err := db.UpsertSQL(db.UpsertConfig{
		Table:        contextsTable,
		Columns:      contextColumns,
		ConflictKeys: []string{"id"},
		UpdateCols:   update,
		Placeholder:  p,
	})
	if err != nil {
		panic(err)
	}
	return sql
}

// record is the row form of a context shared by both backends.
type record struct {
	ContextSummary
	Document []byte
}

func toRecord(ac *model.AnalysisContext, now time.Time) (*record, error) {
	if ac == nil || ac.ID == "" {
		return nil, eris.New("store: context has no id")
	}
	doc, err := json.Marshal(ac)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal context")
	}

	r := &record{
		ContextSummary: ContextSummary{
			ID:        ac.ID,
			Version:   ac.Version,
			CreatedAt: ac.CreatedAt.UTC(),
			UpdatedAt: now.UTC(),
		},
		Document: doc,
	}
	if ac.Appraisal != nil {
		r.ParcelID = ac.Appraisal.Result.Subject.ParcelID
		r.FinalValue = ac.Appraisal.Result.FinalValue
	}
	if !ac.Readiness.IsEmpty() {
		r.EngineVersion = ac.Readiness.EngineVersion
		r.PredictedScore = ac.Readiness.PredictedScore
		r.RiskLevel = string(ac.Readiness.RiskLevel)
	}
	return r, nil
}

func (r *record) args(doc any) []any {
	return []any{
		r.ID, r.ParcelID, r.Version, r.EngineVersion, r.FinalValue,
		r.PredictedScore, r.RiskLevel, doc, r.CreatedAt, r.UpdatedAt,
	}
}

func decodeDocument(doc []byte) (*model.AnalysisContext, error) {
	var ac model.AnalysisContext
	if err := json.Unmarshal(doc, &ac); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal context")
	}
	return &ac, nil
}

func listLimit(f ContextFilter) int {
	if f.Limit <= 0 {
		return 100
	}
	return f.Limit
}
