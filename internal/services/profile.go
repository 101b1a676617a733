package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tahcohcat/ramadan-tracker/internal/datastore"
	"github.com/tahcohcat/ramadan-tracker/internal/models"
)

type ProfileService struct {
	store datastore.Datastore
}

func NewProfileService(store datastore.Datastore) *ProfileService {
	return &ProfileService{store: store}
}

// Register creates a new profile with zero points
func (s *ProfileService) Register(ctx context.Context, req *models.CreateProfileRequest) (*models.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	gender, _ := models.ParseGender(req.Gender)
	zero := int64(0)
	rec := &models.ProfileRecord{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Gender:      string(gender),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Points:      &zero,
	}

	if err := s.store.CreateProfile(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to register profile: %w", err)
	}

	return rec.Profile()
}

// GetProfile retrieves and validates a profile by its ID
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	rec, err := s.store.GetProfile(ctx, id)
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransientFetch, err)
	}

	p, err := rec.Profile()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfileState, err)
	}
	return p, nil
}

// Exists reports whether id still refers to a stored profile
func (s *ProfileService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.store.GetProfile(ctx, id)
	if errors.Is(err, datastore.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("%w: %w", ErrTransientFetch, err)
	}
	return true, nil
}

// RecentCompletions returns the user's latest completions
func (s *ProfileService) RecentCompletions(ctx context.Context, userID string, limit int) ([]models.Completion, error) {
	completions, err := s.store.ListCompletions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransientFetch, err)
	}
	return completions, nil
}
