package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock, now: func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS analysis_contexts`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveContext(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO "analysis_contexts" .* ON CONFLICT \("id"\) DO UPDATE SET`).
		WithArgs("ctx-1", "p1", "v42", "", 1_250_000.0, 0.0, "", pgxmock.AnyArg(), created, s.now()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveContext(context.Background(), testContext("ctx-1", "p1", created)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveContext_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO "analysis_contexts"`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err := s.SaveContext(context.Background(), testContext("ctx-1", "p1", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: save context ctx-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetContext(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	doc, err := json.Marshal(testContext("ctx-1", "p1", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT document FROM analysis_contexts WHERE id = \$1`).
		WithArgs("ctx-1").
		WillReturnRows(mock.NewRows([]string{"document"}).AddRow(doc))

	got, err := s.GetContext(context.Background(), "ctx-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.Appraisal.Result.Subject.ParcelID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetContext_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT document FROM analysis_contexts WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetContext(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListContexts(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"id", "parcel_id", "version", "engine_version", "final_value", "predicted_score", "risk_level", "created_at", "updated_at"}
	mock.ExpectQuery(`FROM analysis_contexts WHERE true AND parcel_id = \$1 ORDER BY created_at DESC, id LIMIT \$2 OFFSET \$3`).
		WithArgs("p1", 10, 5).
		WillReturnRows(mock.NewRows(cols).
			AddRow("ctx-1", "p1", "v42", "v42", 1_250_000.0, 71.5, "MEDIUM", created, created))

	list, err := s.ListContexts(context.Background(), ContextFilter{ParcelID: "p1", Limit: 10, Offset: 5})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ctx-1", list[0].ID)
	assert.Equal(t, 71.5, list[0].PredictedScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListContexts_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`WHERE true ORDER BY created_at DESC, id LIMIT \$1`).
		WithArgs(100).
		WillReturnRows(mock.NewRows([]string{"id"}))

	list, err := s.ListContexts(context.Background(), ContextFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Close(t *testing.T) {
	closed := false
	s := &PostgresStore{closeFn: func() { closed = true }}
	require.NoError(t, s.Close())
	assert.True(t, closed)
}
