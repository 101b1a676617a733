// Package datastore is the boundary to the remote profile and leaderboard
// store. Implementations must make IncrementProfilePoints and
// IncrementLeaderboard atomic on the server side.
package datastore

import (
	"context"
	"errors"
	"fmt"

	"github.com/tahcohcat/ramadan-tracker/internal/models"
)

var (
	ErrNotFound      = errors.New("row not found")
	ErrInvalidColumn = errors.New("invalid leaderboard column")

	// ErrLeaderboardWrite marks the leaderboard half of a failed AwardPoints.
	ErrLeaderboardWrite = errors.New("leaderboard write failed")
)

type Datastore interface {
	// CreateProfile inserts a profile and assigns its ID.
	CreateProfile(ctx context.Context, rec *models.ProfileRecord) error

	// GetProfile returns ErrNotFound when no row matches id.
	GetProfile(ctx context.Context, id string) (*models.ProfileRecord, error)

	// UpdateProfilePoints overwrites points and reports the affected row count.
	UpdateProfilePoints(ctx context.Context, id string, newPoints int64) (int64, error)

	// IncrementProfilePoints adds delta in place and returns the new total.
	IncrementProfilePoints(ctx context.Context, id string, delta int64) (int64, error)

	// IncrementLeaderboard adds delta to one gender column in place.
	IncrementLeaderboard(ctx context.Context, column models.LeaderboardColumn, delta int64) error

	// AwardPoints increments the profile and the leaderboard column in one
	// transaction. A failed leaderboard write wraps ErrLeaderboardWrite.
	AwardPoints(ctx context.Context, id string, column models.LeaderboardColumn, delta int64) (int64, error)

	GetLeaderboard(ctx context.Context) (*models.LeaderboardAggregate, error)
	ListProfilesByPointsDesc(ctx context.Context, limit int) ([]models.ProfileSummary, error)

	RecordCompletion(ctx context.Context, c *models.Completion) error
	ListCompletions(ctx context.Context, userID string, limit int) ([]models.Completion, error)

	Close() error
}

func checkColumn(column models.LeaderboardColumn) error {
	if !column.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, column)
	}
	return nil
}
