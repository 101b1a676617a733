package services

import "errors"

// Completion failures. Each step of CompleteActivity fails with exactly one
// of these; callers match them with errors.Is.
var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrInvalidProfileState = errors.New("invalid profile state")
	ErrTransientFetch      = errors.New("could not retrieve profile")
	ErrUpdateConflict      = errors.New("profile vanished before points were written")
	ErrTransientWrite      = errors.New("could not update profile points")
	ErrLeaderboardUpdate   = errors.New("could not update leaderboard points")
)

const (
	KindInvalidRequest      = "invalid_request"
	KindProfileNotFound     = "profile_not_found"
	KindInvalidProfileState = "invalid_profile_state"
	KindTransientFetch      = "transient_fetch_error"
	KindUpdateConflict      = "update_conflict"
	KindTransientWrite      = "transient_write_error"
	KindLeaderboardUpdate   = "leaderboard_update_error"
	KindUnknown             = "unknown"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidRequest, KindInvalidRequest},
	{ErrProfileNotFound, KindProfileNotFound},
	{ErrInvalidProfileState, KindInvalidProfileState},
	{ErrTransientFetch, KindTransientFetch},
	{ErrUpdateConflict, KindUpdateConflict},
	{ErrTransientWrite, KindTransientWrite},
	{ErrLeaderboardUpdate, KindLeaderboardUpdate},
}

// KindOf returns a stable name for err's failure kind.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
