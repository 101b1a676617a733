package models

import (
	"time"
)

// Activity is an entry in the static catalog
type Activity struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	PointValue int64  `json:"point_value"`
	ImagePath  string `json:"image_path"` // logical key, resolved by the catalog
}

// Completion is a history row written after points were awarded
type Completion struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	ActivityID    string    `json:"activity_id" db:"activity_id"`
	Title         string    `json:"title" db:"title"`
	PointsAwarded int64     `json:"points_awarded" db:"points_awarded"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

const (
	TableProfiles    = "profiles"
	TableLeaderboard = "leaderboard"

	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
)

// ChangeEvent is pushed to subscribers when a profile or the leaderboard row changes.
type ChangeEvent struct {
	Table string    `json:"table"`
	Event string    `json:"event"`
	RowID string    `json:"row_id,omitempty"`
	At    time.Time `json:"at"`
}
