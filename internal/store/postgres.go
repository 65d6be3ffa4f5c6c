package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/parcel-cli/internal/db"
	"github.com/sells-group/parcel-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	now     func() time.Time
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	if minConns > maxConns {
		minConns = maxConns
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close, now: time.Now}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analysis_contexts (
	id              TEXT PRIMARY KEY,
	parcel_id       TEXT NOT NULL DEFAULT '',
	version         TEXT NOT NULL DEFAULT '',
	engine_version  TEXT NOT NULL DEFAULT '',
	final_value     DOUBLE PRECISION NOT NULL DEFAULT 0,
	predicted_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	risk_level      TEXT NOT NULL DEFAULT '',
	document        JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analysis_contexts_parcel ON analysis_contexts(parcel_id);
CREATE INDEX IF NOT EXISTS idx_analysis_contexts_created ON analysis_contexts(created_at DESC);
`

var postgresUpsert = upsertStatement(db.Dollar)

// Migrate creates the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveContext upserts ac.
func (s *PostgresStore) SaveContext(ctx context.Context, ac *model.AnalysisContext) error {
	r, err := toRecord(ac, s.clock())
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, postgresUpsert, r.args(r.Document)...); err != nil {
		return eris.Wrapf(err, "postgres: save context %s", r.ID)
	}
	return nil
}

// GetContext loads a context by ID.
func (s *PostgresStore) GetContext(ctx context.Context, id string) (*model.AnalysisContext, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM analysis_contexts WHERE id = $1`, id,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: context %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get context %s", id)
	}
	return decodeDocument(doc)
}

// ListContexts returns summaries, newest first.
func (s *PostgresStore) ListContexts(ctx context.Context, filter ContextFilter) ([]ContextSummary, error) {
	query := `SELECT id, parcel_id, version, engine_version, final_value, predicted_score, risk_level, created_at, updated_at
		FROM analysis_contexts WHERE true`
	args := []any{}
	argIdx := 1

	if filter.ParcelID != "" {
		query += fmt.Sprintf(` AND parcel_id = $%d`, argIdx)
		args = append(args, filter.ParcelID)
		argIdx++
	}
	if filter.Version != "" {
		query += fmt.Sprintf(` AND version = $%d`, argIdx)
		args = append(args, filter.Version)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contexts")
	}
	defer rows.Close()

	var out []ContextSummary
	for rows.Next() {
		var c ContextSummary
		if err := rows.Scan(&c.ID, &c.ParcelID, &c.Version, &c.EngineVersion, &c.FinalValue,
			&c.PredictedScore, &c.RiskLevel, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan context")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list contexts iterate")
}

func (s *PostgresStore) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
