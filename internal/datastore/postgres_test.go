package datastore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tahcohcat/ramadan-tracker/internal/models"
)

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dest {
		switch target := dest[i].(type) {
		case *string:
			*target = r.values[i].(string)
		case *int64:
			*target = r.values[i].(int64)
		case **int64:
			*target = r.values[i].(*int64)
		case *time.Time:
			*target = r.values[i].(time.Time)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

type stubPgx struct {
	tx        *stubTx
	row       stubRow
	execErr   error
	execCalls []string
	execArgs  [][]any
	queries   []string
}

func (db *stubPgx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execCalls = append(db.execCalls, sql)
	db.execArgs = append(db.execArgs, args)
	return pgconn.NewCommandTag("UPDATE 1"), db.execErr
}

func (db *stubPgx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	db.queries = append(db.queries, sql)
	return db.row
}

func (db *stubPgx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (db *stubPgx) Begin(_ context.Context) (pgx.Tx, error) {
	if db.tx == nil {
		return nil, errors.New("not implemented")
	}
	return db.tx, nil
}

// stubTx routes statements to its parent stub and records the outcome
type stubTx struct {
	pgx.Tx
	db         *stubPgx
	committed  bool
	rolledBack bool
}

func (tx *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return tx.db.Exec(ctx, sql, args...)
}

func (tx *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return tx.db.QueryRow(ctx, sql, args...)
}

func (tx *stubTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *stubTx) Rollback(context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

const validID = "8f14e45f-ceea-467f-a0e6-4c1b7d2a9d1e"

func TestPostgresGetProfileMapsNoRows(t *testing.T) {
	db := &stubPgx{row: stubRow{err: pgx.ErrNoRows}}
	s := NewPostgresStore(db)

	_, err := s.GetProfile(context.Background(), validID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresGetProfileRejectsNonUUIDWithoutQuery(t *testing.T) {
	db := &stubPgx{}
	s := NewPostgresStore(db)

	_, err := s.GetProfile(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, db.queries)
}

func TestPostgresGetProfileScansRow(t *testing.T) {
	pts := int64(50)
	now := time.Now()
	db := &stubPgx{row: stubRow{values: []any{validID, "Omar", "S", "male", "555", &pts, now, now}}}
	s := NewPostgresStore(db)

	rec, err := s.GetProfile(context.Background(), validID)
	require.NoError(t, err)
	assert.Equal(t, "Omar", rec.FirstName)
	assert.Equal(t, int64(50), *rec.Points)
}

func TestPostgresGetProfileWrapsFailures(t *testing.T) {
	db := &stubPgx{row: stubRow{err: errors.New("connection reset")}}
	s := NewPostgresStore(db)

	_, err := s.GetProfile(context.Background(), validID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPostgresIncrementLeaderboardCallsProcedure(t *testing.T) {
	db := &stubPgx{}
	s := NewPostgresStore(db)

	require.NoError(t, s.IncrementLeaderboard(context.Background(), models.ColumnFemalePoints, 150))
	require.Len(t, db.execCalls, 1)
	assert.Contains(t, db.execCalls[0], "increment_leaderboard_points")
	assert.Equal(t, []any{"female_points", int64(150)}, db.execArgs[0])

	err := s.IncrementLeaderboard(context.Background(), "total", 1)
	assert.ErrorIs(t, err, ErrInvalidColumn)
	assert.Len(t, db.execCalls, 1, "invalid column must not reach the server")
}

func TestPostgresIncrementProfileMapsNoRows(t *testing.T) {
	db := &stubPgx{row: stubRow{err: pgx.ErrNoRows}}
	s := NewPostgresStore(db)

	_, err := s.IncrementProfilePoints(context.Background(), validID, 100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresUpdateProfilePointsReportsRows(t *testing.T) {
	db := &stubPgx{}
	s := NewPostgresStore(db)

	affected, err := s.UpdateProfilePoints(context.Background(), validID, 150)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = s.UpdateProfilePoints(context.Background(), "not-a-uuid", 150)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestPostgresAwardPointsLeaderboardFailureRollsBack(t *testing.T) {
	total := int64(150)
	db := &stubPgx{row: stubRow{values: []any{&total}}, execErr: errors.New("function does not exist")}
	db.tx = &stubTx{db: db}
	s := NewPostgresStore(db)

	_, err := s.AwardPoints(context.Background(), validID, models.ColumnMalePoints, 100)
	assert.ErrorIs(t, err, ErrLeaderboardWrite)
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
}

func TestPostgresAwardPointsCommits(t *testing.T) {
	total := int64(150)
	db := &stubPgx{row: stubRow{values: []any{&total}}}
	db.tx = &stubTx{db: db}
	s := NewPostgresStore(db)

	got, err := s.AwardPoints(context.Background(), validID, models.ColumnMalePoints, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(150), got)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
}
