package datastore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tahcohcat/ramadan-tracker/internal/models"
)

// PgxDB is the subset of pgxpool.Pool the store needs
type PgxDB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore talks to the hosted schema in migrations/. Leaderboard
// increments go through the increment_leaderboard_points SQL function.
type PostgresStore struct {
	db PgxDB
}

func NewPostgresStore(db PgxDB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateProfile(ctx context.Context, rec *models.ProfileRecord) error {
	if rec.Points == nil {
		zero := int64(0)
		rec.Points = &zero
	}

	query := `
		INSERT INTO profiles (first_name, last_name, gender, phone_number, points)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query, rec.FirstName, rec.LastName, rec.Gender, rec.PhoneNumber, *rec.Points).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*models.ProfileRecord, error) {
	// ids are uuids server side; anything else cannot match a row
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	query := `
		SELECT id::text, first_name, last_name, gender, phone_number, points, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	var rec models.ProfileRecord
	err := s.db.QueryRow(ctx, query, id).
		Scan(&rec.ID, &rec.FirstName, &rec.LastName, &rec.Gender, &rec.PhoneNumber, &rec.Points, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) UpdateProfilePoints(ctx context.Context, id string, newPoints int64) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, nil
	}

	tag, err := s.db.Exec(ctx, `UPDATE profiles SET points = $1, updated_at = NOW() WHERE id = $2`, newPoints, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update profile points: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) IncrementProfilePoints(ctx context.Context, id string, delta int64) (int64, error) {
	return pgIncrementProfile(ctx, s.db, id, delta)
}

func (s *PostgresStore) IncrementLeaderboard(ctx context.Context, column models.LeaderboardColumn, delta int64) error {
	return pgIncrementLeaderboard(ctx, s.db, column, delta)
}

func (s *PostgresStore) AwardPoints(ctx context.Context, id string, column models.LeaderboardColumn, delta int64) (int64, error) {
	if err := checkColumn(column); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLeaderboardWrite, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	total, err := pgIncrementProfile(ctx, tx, id, delta)
	if err != nil {
		return 0, err
	}

	if err := pgIncrementLeaderboard(ctx, tx, column, delta); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLeaderboardWrite, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit award: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) GetLeaderboard(ctx context.Context) (*models.LeaderboardAggregate, error) {
	var agg models.LeaderboardAggregate
	err := s.db.QueryRow(ctx, `SELECT male_points, female_points FROM leaderboard WHERE id = 1`).
		Scan(&agg.MalePoints, &agg.FemalePoints)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return &agg, nil
}

func (s *PostgresStore) ListProfilesByPointsDesc(ctx context.Context, limit int) ([]models.ProfileSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT first_name, last_name, COALESCE(points, 0) AS points
		FROM profiles
		ORDER BY COALESCE(points, 0) DESC, first_name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ProfileSummary])
	if err != nil {
		return nil, fmt.Errorf("failed to scan profiles: %w", err)
	}
	return profiles, nil
}

func (s *PostgresStore) RecordCompletion(ctx context.Context, c *models.Completion) error {
	query := `
		INSERT INTO activity_completions (user_id, activity_id, title, points_awarded)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at
	`
	err := s.db.QueryRow(ctx, query, c.UserID, c.ActivityID, c.Title, c.PointsAwarded).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCompletions(ctx context.Context, userID string, limit int) ([]models.Completion, error) {
	if limit <= 0 {
		limit = 10
	}
	if _, err := uuid.Parse(userID); err != nil {
		return []models.Completion{}, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT id::text AS id, user_id::text AS user_id, activity_id, title, points_awarded, created_at
		FROM activity_completions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}

	completions, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Completion])
	if err != nil {
		return nil, fmt.Errorf("failed to scan completions: %w", err)
	}
	return completions, nil
}

func (s *PostgresStore) Close() error {
	if closer, ok := s.db.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}

func pgIncrementProfile(ctx context.Context, q pgxQuerier, id string, delta int64) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, ErrNotFound
	}

	var total *int64
	err := q.QueryRow(ctx, `UPDATE profiles SET points = points + $1, updated_at = NOW() WHERE id = $2 RETURNING points`, delta, id).
		Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	} else if err != nil {
		return 0, fmt.Errorf("failed to increment profile points: %w", err)
	}

	if total == nil {
		return 0, fmt.Errorf("profile %s has no points value", id)
	}
	return *total, nil
}

func pgIncrementLeaderboard(ctx context.Context, q pgxQuerier, column models.LeaderboardColumn, delta int64) error {
	if err := checkColumn(column); err != nil {
		return err
	}

	if _, err := q.Exec(ctx, `SELECT increment_leaderboard_points($1, $2)`, string(column), delta); err != nil {
		return fmt.Errorf("failed to increment leaderboard: %w", err)
	}
	return nil
}
