package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/parcel-cli/internal/db"
	"github.com/sells-group/parcel-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// sqlitePragmas are applied by the driver to every pooled connection.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

// sqliteDSN appends the connection pragmas to a database path or URI.
func sqliteDSN(dsn string) string {
	params := make([]string, len(sqlitePragmas))
	for i, p := range sqlitePragmas {
		params[i] = "_pragma=" + p
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// NewSQLite opens a SQLite database at the given path in WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if err := db.Ping(); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "sqlite: ping")
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analysis_contexts (
	id              TEXT PRIMARY KEY,
	parcel_id       TEXT NOT NULL DEFAULT '',
	version         TEXT NOT NULL DEFAULT '',
	engine_version  TEXT NOT NULL DEFAULT '',
	final_value     REAL NOT NULL DEFAULT 0,
	predicted_score REAL NOT NULL DEFAULT 0,
	risk_level      TEXT NOT NULL DEFAULT '',
	document        TEXT NOT NULL,
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analysis_contexts_parcel ON analysis_contexts(parcel_id);
CREATE INDEX IF NOT EXISTS idx_analysis_contexts_created ON analysis_contexts(created_at);
`

var sqliteUpsert = upsertStatement(db.Question)

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveContext upserts ac.
func (s *SQLiteStore) SaveContext(ctx context.Context, ac *model.AnalysisContext) error {
	r, err := toRecord(ac, s.now())
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, sqliteUpsert, r.args(string(r.Document))...)
	return eris.Wrapf(err, "sqlite: save context %s", r.ID)
}

// GetContext loads a context by ID.
func (s *SQLiteStore) GetContext(ctx context.Context, id string) (*model.AnalysisContext, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM analysis_contexts WHERE id = ?`, id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: context %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get context %s", id)
	}
	return decodeDocument([]byte(doc))
}

// ListContexts returns summaries, newest first.
func (s *SQLiteStore) ListContexts(ctx context.Context, filter ContextFilter) ([]ContextSummary, error) {
	query := `SELECT id, parcel_id, version, engine_version, final_value, predicted_score, risk_level, created_at, updated_at
		FROM analysis_contexts WHERE 1=1`
	var args []any

	if filter.ParcelID != "" {
		query += ` AND parcel_id = ?`
		args = append(args, filter.ParcelID)
	}
	if filter.Version != "" {
		query += ` AND version = ?`
		args = append(args, filter.Version)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, listLimit(filter))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contexts")
	}
	defer rows.Close() //nolint:errcheck

	var out []ContextSummary
	for rows.Next() {
		var c ContextSummary
		if err := rows.Scan(&c.ID, &c.ParcelID, &c.Version, &c.EngineVersion, &c.FinalValue,
			&c.PredictedScore, &c.RiskLevel, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan context")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list contexts iterate")
}
