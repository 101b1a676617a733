package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tahcohcat/ramadan-tracker/internal/datastore"
	"github.com/tahcohcat/ramadan-tracker/internal/logger"
	"github.com/tahcohcat/ramadan-tracker/internal/models"
	"go.uber.org/zap"
)

type WriteMode string

const (
	// WriteModeIncrement adds to the profile's points on the server.
	WriteModeIncrement WriteMode = "increment"
	// WriteModeOverwrite writes the client-computed total back. Concurrent
	// completions by the same user can lose updates.
	WriteModeOverwrite WriteMode = "overwrite"
	// WriteModeTransactional applies the profile and leaderboard writes in
	// one datastore transaction.
	WriteModeTransactional WriteMode = "transactional"
)

const DefaultTimeout = 15 * time.Second

// CompletionResult is returned when all writes succeeded
type CompletionResult struct {
	UserID     string                   `json:"user_id"`
	ActivityID string                   `json:"activity_id"`
	Awarded    int64                    `json:"awarded"`
	NewPoints  int64                    `json:"points"`
	Column     models.LeaderboardColumn `json:"leaderboard_column"`
}

type CompletionService struct {
	store   datastore.Datastore
	mode    WriteMode
	timeout time.Duration
}

type CompletionOption func(*CompletionService)

func WithWriteMode(mode WriteMode) CompletionOption {
	return func(s *CompletionService) { s.mode = mode }
}

// WithTimeout bounds every datastore call made by CompleteActivity.
func WithTimeout(d time.Duration) CompletionOption {
	return func(s *CompletionService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewCompletionService(store datastore.Datastore, opts ...CompletionOption) *CompletionService {
	s := &CompletionService{
		store:   store,
		mode:    WriteModeIncrement,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CompleteActivity credits activity.PointValue to the user's profile and to
// the leaderboard column for their gender. It is not idempotent and does not
// retry. Outside transactional mode a leaderboard failure leaves the profile
// write in place.
func (s *CompletionService) CompleteActivity(ctx context.Context, userID string, activity models.Activity) (*CompletionResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	if activity.PointValue < 0 {
		return nil, fmt.Errorf("%w: activity %s has negative point value %d", ErrInvalidRequest, activity.ID, activity.PointValue)
	}

	log := logger.New().With(zap.String("user_id", userID), zap.String("activity", activity.ID))

	// 1. fetch
	rec, err := s.fetchProfile(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("could not fetch profile")
		return nil, err
	}

	// 2. validate; nothing is written for a bad row
	gender, points, err := rec.Validate()
	if err != nil {
		log.WithError(err).Warn("refusing to award points to invalid profile")
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfileState, err)
	}
	column, err := models.ColumnFor(gender)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfileState, err)
	}

	// 3. compute
	newPoints := points + activity.PointValue

	// 4. persist (and 5, in transactional mode)
	switch s.mode {
	case WriteModeTransactional:
		newPoints, err = s.awardInTransaction(ctx, userID, column, activity.PointValue)
		if err != nil {
			log.WithError(err).Warn("award transaction failed")
			return nil, err
		}

	case WriteModeOverwrite:
		if err := s.overwritePoints(ctx, userID, newPoints); err != nil {
			log.WithError(err).Warn("could not write profile points")
			return nil, err
		}

	default:
		newPoints, err = s.incrementPoints(ctx, userID, activity.PointValue)
		if err != nil {
			log.WithError(err).Warn("could not increment profile points")
			return nil, err
		}
	}

	// 5. leaderboard
	if s.mode != WriteModeTransactional {
		if err := s.incrementLeaderboard(ctx, column, activity.PointValue); err != nil {
			log.WithError(err).Error(fmt.Sprintf("profile credited with %d points but %s was not updated", activity.PointValue, column))
			return nil, err
		}
	}

	// 6. report
	s.recordCompletion(ctx, userID, activity, log)
	log.Info(fmt.Sprintf("awarded %d points, total now %d", activity.PointValue, newPoints))

	return &CompletionResult{
		UserID:     userID,
		ActivityID: activity.ID,
		Awarded:    activity.PointValue,
		NewPoints:  newPoints,
		Column:     column,
	}, nil
}

func (s *CompletionService) fetchProfile(ctx context.Context, userID string) (*models.ProfileRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransientFetch, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
	}
	return rec, nil
}

func (s *CompletionService) overwritePoints(ctx context.Context, userID string, newPoints int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	affected, err := s.store.UpdateProfilePoints(ctx, userID, newPoints)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransientWrite, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrUpdateConflict, userID)
	}
	return nil
}

func (s *CompletionService) incrementPoints(ctx context.Context, userID string, delta int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	total, err := s.store.IncrementProfilePoints(ctx, userID, delta)
	if errors.Is(err, datastore.ErrNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrUpdateConflict, userID)
	} else if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransientWrite, err)
	}
	return total, nil
}

func (s *CompletionService) awardInTransaction(ctx context.Context, userID string, column models.LeaderboardColumn, delta int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	total, err := s.store.AwardPoints(ctx, userID, column, delta)
	if errors.Is(err, datastore.ErrLeaderboardWrite) {
		// rolled back with the profile write
		return 0, fmt.Errorf("%w: %w", ErrLeaderboardUpdate, err)
	} else if errors.Is(err, datastore.ErrNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrUpdateConflict, userID)
	} else if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransientWrite, err)
	}
	return total, nil
}

func (s *CompletionService) incrementLeaderboard(ctx context.Context, column models.LeaderboardColumn, delta int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.IncrementLeaderboard(ctx, column, delta); err != nil {
		return fmt.Errorf("%w: %w", ErrLeaderboardUpdate, err)
	}
	return nil
}

// recordCompletion writes the history row; failures are logged only
func (s *CompletionService) recordCompletion(ctx context.Context, userID string, activity models.Activity, log *logger.Log) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c := &models.Completion{
		UserID:        userID,
		ActivityID:    activity.ID,
		Title:         activity.Title,
		PointsAwarded: activity.PointValue,
	}
	if err := s.store.RecordCompletion(ctx, c); err != nil {
		log.WithError(err).Warn("failed to record completion history")
	}
}
