package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tahcohcat/ramadan-tracker/internal/datastore"
	"github.com/tahcohcat/ramadan-tracker/internal/models"
)

type LeaderboardService struct {
	store datastore.Datastore
}

func NewLeaderboardService(store datastore.Datastore) *LeaderboardService {
	return &LeaderboardService{store: store}
}

// Individual ranks profiles by points, highest first
func (s *LeaderboardService) Individual(ctx context.Context, limit int) ([]models.RankedProfile, error) {
	profiles, err := s.store.ListProfilesByPointsDesc(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get individual leaderboard: %w", err)
	}

	ranked := make([]models.RankedProfile, len(profiles))
	for i, p := range profiles {
		ranked[i] = models.RankedProfile{Rank: i + 1, ProfileSummary: p}
	}
	return ranked, nil
}

// ByGender returns the aggregate points per gender
func (s *LeaderboardService) ByGender(ctx context.Context) (*models.LeaderboardAggregate, error) {
	agg, err := s.store.GetLeaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gender leaderboard: %w", err)
	}
	return agg, nil
}

// UserPoints reads a user's current points; a missing value reads as zero.
func (s *LeaderboardService) UserPoints(ctx context.Context, userID string) (int64, error) {
	rec, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, datastore.ErrNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
	} else if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransientFetch, err)
	}

	if rec.Points == nil {
		return 0, nil
	}
	return *rec.Points, nil
}
