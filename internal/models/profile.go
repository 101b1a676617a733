package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidGender = errors.New("gender must be male or female")
	ErrInvalidPoints = errors.New("points must be a non-negative integer")
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender accepts male/female in any case; everything else is rejected.
func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGender, s)
	}
}

// ProfileRecord is a profile row as the datastore returns it. Gender and
// Points are left unvalidated so corrupted or partially initialised rows can
// be represented and rejected.
type ProfileRecord struct {
	ID          string    `json:"id" db:"id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Gender      string    `json:"gender" db:"gender"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Points      *int64    `json:"points" db:"points"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks gender against the closed set and points against the
// non-negative range.
func (r *ProfileRecord) Validate() (Gender, int64, error) {
	if r.Points == nil || *r.Points < 0 {
		return "", 0, ErrInvalidPoints
	}

	gender, err := ParseGender(r.Gender)
	if err != nil {
		return "", 0, err
	}

	return gender, *r.Points, nil
}

// Profile converts a record into its validated form.
func (r *ProfileRecord) Profile() (*Profile, error) {
	gender, points, err := r.Validate()
	if err != nil {
		return nil, err
	}

	return &Profile{
		ID:          r.ID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Gender:      gender,
		PhoneNumber: r.PhoneNumber,
		Points:      points,
		CreatedAt:   r.CreatedAt,
	}, nil
}

// Profile is a registered user whose gender and points have been validated
type Profile struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Gender      Gender    `json:"gender"`
	PhoneNumber string    `json:"-"`
	Points      int64     `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProfileRequest represents a signup
type CreateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Gender      string `json:"gender"`
	PhoneNumber string `json:"phone_number"`
}

// Validate reports the first missing or malformed field.
func (req *CreateProfileRequest) Validate() error {
	if strings.TrimSpace(req.FirstName) == "" ||
		strings.TrimSpace(req.LastName) == "" ||
		strings.TrimSpace(req.PhoneNumber) == "" ||
		strings.TrimSpace(req.Gender) == "" {
		return errors.New("please fill in all fields")
	}

	if _, err := ParseGender(req.Gender); err != nil {
		return err
	}

	return nil
}

// ProfileSummary is one row of the individual leaderboard
type ProfileSummary struct {
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Points    int64  `json:"points" db:"points"`
}

type RankedProfile struct {
	Rank int `json:"rank"`
	ProfileSummary
}
