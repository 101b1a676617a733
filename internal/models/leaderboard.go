package models

import "fmt"

// LeaderboardColumn names one gender partition of the aggregate row.
type LeaderboardColumn string

const (
	ColumnMalePoints   LeaderboardColumn = "male_points"
	ColumnFemalePoints LeaderboardColumn = "female_points"
)

func ColumnFor(g Gender) (LeaderboardColumn, error) {
	switch g {
	case GenderMale:
		return ColumnMalePoints, nil
	case GenderFemale:
		return ColumnFemalePoints, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGender, g)
	}
}

func (c LeaderboardColumn) Valid() bool {
	return c == ColumnMalePoints || c == ColumnFemalePoints
}

// LeaderboardAggregate is the single row holding summed points per gender.
type LeaderboardAggregate struct {
	MalePoints   int64 `json:"male_points" db:"male_points"`
	FemalePoints int64 `json:"female_points" db:"female_points"`
}

// Add applies delta to column in place.
func (a *LeaderboardAggregate) Add(column LeaderboardColumn, delta int64) error {
	switch column {
	case ColumnMalePoints:
		a.MalePoints += delta
	case ColumnFemalePoints:
		a.FemalePoints += delta
	default:
		return fmt.Errorf("unknown leaderboard column %q", column)
	}
	return nil
}
