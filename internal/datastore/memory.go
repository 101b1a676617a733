package datastore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tahcohcat/ramadan-tracker/internal/models"
)

// MemoryStore keeps everything in process. Each method holds the lock for
// its whole body, which makes the increments atomic.
type MemoryStore struct {
	mu          sync.Mutex
	profiles    map[string]*models.ProfileRecord
	leaderboard models.LeaderboardAggregate
	completions []models.Completion
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*models.ProfileRecord),
	}
}

// Put stores rec as-is, bypassing defaults. Used to seed fixtures.
func (s *MemoryStore) Put(rec models.ProfileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[rec.ID] = cloneRecord(&rec)
}

// SetLeaderboard overwrites the aggregate row.
func (s *MemoryStore) SetLeaderboard(agg models.LeaderboardAggregate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboard = agg
}

func (s *MemoryStore) CreateProfile(_ context.Context, rec *models.ProfileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, exists := s.profiles[rec.ID]; exists {
		return fmt.Errorf("failed to create profile: id %s already exists", rec.ID)
	}
	if rec.Points == nil {
		zero := int64(0)
		rec.Points = &zero
	}
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	s.profiles[rec.ID] = cloneRecord(rec)
	return nil
}

func (s *MemoryStore) GetProfile(_ context.Context, id string) (*models.ProfileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) UpdateProfilePoints(_ context.Context, id string, newPoints int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.profiles[id]
	if !ok {
		return 0, nil
	}
	rec.Points = &newPoints
	rec.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (s *MemoryStore) IncrementProfilePoints(_ context.Context, id string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incrementProfileLocked(id, delta)
}

func (s *MemoryStore) IncrementLeaderboard(_ context.Context, column models.LeaderboardColumn, delta int64) error {
	if err := checkColumn(column); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaderboard.Add(column, delta)
}

func (s *MemoryStore) AwardPoints(_ context.Context, id string, column models.LeaderboardColumn, delta int64) (int64, error) {
	if err := checkColumn(column); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLeaderboardWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total, err := s.incrementProfileLocked(id, delta)
	if err != nil {
		return 0, err
	}
	// column is valid, Add cannot fail after the profile write
	_ = s.leaderboard.Add(column, delta)
	return total, nil
}

func (s *MemoryStore) GetLeaderboard(_ context.Context) (*models.LeaderboardAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg := s.leaderboard
	return &agg, nil
}

func (s *MemoryStore) ListProfilesByPointsDesc(_ context.Context, limit int) ([]models.ProfileSummary, error) {
	s.mu.Lock()
	out := make([]models.ProfileSummary, 0, len(s.profiles))
	for _, rec := range s.profiles {
		var pts int64
		if rec.Points != nil {
			pts = *rec.Points
		}
		out = append(out, models.ProfileSummary{FirstName: rec.FirstName, LastName: rec.LastName, Points: pts})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].FirstName < out[j].FirstName
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) RecordCompletion(_ context.Context, c *models.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.completions = append(s.completions, *c)
	return nil
}

func (s *MemoryStore) ListCompletions(_ context.Context, userID string, limit int) ([]models.Completion, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Completion{}
	for i := len(s.completions) - 1; i >= 0 && len(out) < limit; i-- {
		if s.completions[i].UserID == userID {
			out = append(out, s.completions[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) incrementProfileLocked(id string, delta int64) (int64, error) {
	rec, ok := s.profiles[id]
	if !ok {
		return 0, ErrNotFound
	}
	if rec.Points == nil {
		return 0, fmt.Errorf("profile %s has no points value", id)
	}

	total := *rec.Points + delta
	rec.Points = &total
	rec.UpdatedAt = time.Now().UTC()
	return total, nil
}

func cloneRecord(rec *models.ProfileRecord) *models.ProfileRecord {
	out := *rec
	if rec.Points != nil {
		p := *rec.Points
		out.Points = &p
	}
	return &out
}
