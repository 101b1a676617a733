package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tahcohcat/ramadan-tracker/internal/database"
	"github.com/tahcohcat/ramadan-tracker/internal/models"
)

type SQLiteStore struct {
	db *database.DB
}

func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// CreateProfile inserts a new profile row
func (s *SQLiteStore) CreateProfile(ctx context.Context, rec *models.ProfileRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Points == nil {
		zero := int64(0)
		rec.Points = &zero
	}
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	query := `
		INSERT INTO profiles (id, first_name, last_name, gender, phone_number, points, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :gender, :phone_number, :points, :created_at, :updated_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a profile by its ID
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*models.ProfileRecord, error) {
	var rec models.ProfileRecord
	query := `SELECT id, first_name, last_name, gender, phone_number, points, created_at, updated_at
			  FROM profiles WHERE id = ?`

	err := s.db.GetContext(ctx, &rec, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &rec, nil
}

func (s *SQLiteStore) UpdateProfilePoints(ctx context.Context, id string, newPoints int64) (int64, error) {
	query := `UPDATE profiles SET points = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, newPoints, time.Now().UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to update profile points: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

func (s *SQLiteStore) IncrementProfilePoints(ctx context.Context, id string, delta int64) (int64, error) {
	return incrementProfile(ctx, s.db, id, delta)
}

func (s *SQLiteStore) IncrementLeaderboard(ctx context.Context, column models.LeaderboardColumn, delta int64) error {
	return incrementLeaderboard(ctx, s.db, column, delta)
}

// AwardPoints applies both increments inside one transaction
func (s *SQLiteStore) AwardPoints(ctx context.Context, id string, column models.LeaderboardColumn, delta int64) (int64, error) {
	if err := checkColumn(column); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLeaderboardWrite, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	total, err := incrementProfile(ctx, tx, id, delta)
	if err != nil {
		return 0, err
	}

	if err := incrementLeaderboard(ctx, tx, column, delta); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLeaderboardWrite, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit award: %w", err)
	}
	return total, nil
}

func (s *SQLiteStore) GetLeaderboard(ctx context.Context) (*models.LeaderboardAggregate, error) {
	var agg models.LeaderboardAggregate
	err := s.db.GetContext(ctx, &agg, `SELECT male_points, female_points FROM leaderboard WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return &agg, nil
}

func (s *SQLiteStore) ListProfilesByPointsDesc(ctx context.Context, limit int) ([]models.ProfileSummary, error) {
	query := `
		SELECT first_name, last_name, COALESCE(points, 0) AS points
		FROM profiles
		ORDER BY COALESCE(points, 0) DESC, first_name ASC
		LIMIT ?
	`

	profiles := []models.ProfileSummary{}
	if err := s.db.SelectContext(ctx, &profiles, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// RecordCompletion adds a completion history entry for the user
func (s *SQLiteStore) RecordCompletion(ctx context.Context, c *models.Completion) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO activity_completions (id, user_id, activity_id, title, points_awarded, created_at)
		VALUES (:id, :user_id, :activity_id, :title, :points_awarded, :created_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	return nil
}

// ListCompletions returns the user's most recent completions first
func (s *SQLiteStore) ListCompletions(ctx context.Context, userID string, limit int) ([]models.Completion, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, user_id, activity_id, title, points_awarded, created_at
		FROM activity_completions
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	completions := []models.Completion{}
	if err := s.db.SelectContext(ctx, &completions, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	return completions, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func incrementProfile(ctx context.Context, q sqlx.QueryerContext, id string, delta int64) (int64, error) {
	var total sql.NullInt64
	query := `UPDATE profiles SET points = points + ?, updated_at = ? WHERE id = ? RETURNING points`

	err := sqlx.GetContext(ctx, q, &total, query, delta, time.Now().UTC(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	} else if err != nil {
		return 0, fmt.Errorf("failed to increment profile points: %w", err)
	}

	if !total.Valid {
		return 0, fmt.Errorf("profile %s has no points value", id)
	}
	return total.Int64, nil
}

func incrementLeaderboard(ctx context.Context, e sqlx.ExecerContext, column models.LeaderboardColumn, delta int64) error {
	if err := checkColumn(column); err != nil {
		return err
	}

	// column is checked against the closed set above
	query := fmt.Sprintf(`UPDATE leaderboard SET %[1]s = %[1]s + ? WHERE id = 1`, column)
	result, err := e.ExecContext(ctx, query, delta)
	if err != nil {
		return fmt.Errorf("failed to increment leaderboard: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to increment leaderboard: %w", ErrNotFound)
	}
	return nil
}
