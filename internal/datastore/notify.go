package datastore

import (
	"context"
	"time"

	"github.com/tahcohcat/ramadan-tracker/internal/models"
)

// Publisher receives row-change notifications
type Publisher interface {
	Publish(event models.ChangeEvent)
}

type PublisherFunc func(event models.ChangeEvent)

func (f PublisherFunc) Publish(event models.ChangeEvent) { f(event) }

// NotifyingStore publishes a ChangeEvent after every successful profile or
// leaderboard write. Reads pass straight through.
type NotifyingStore struct {
	Datastore
	pub Publisher
	now func() time.Time
}

func NewNotifyingStore(inner Datastore, pub Publisher) *NotifyingStore {
	return &NotifyingStore{Datastore: inner, pub: pub, now: time.Now}
}

func (s *NotifyingStore) CreateProfile(ctx context.Context, rec *models.ProfileRecord) error {
	if err := s.Datastore.CreateProfile(ctx, rec); err != nil {
		return err
	}
	s.emit(models.TableProfiles, models.EventInsert, rec.ID)
	return nil
}

func (s *NotifyingStore) UpdateProfilePoints(ctx context.Context, id string, newPoints int64) (int64, error) {
	affected, err := s.Datastore.UpdateProfilePoints(ctx, id, newPoints)
	if err == nil && affected > 0 {
		s.emit(models.TableProfiles, models.EventUpdate, id)
	}
	return affected, err
}

func (s *NotifyingStore) IncrementProfilePoints(ctx context.Context, id string, delta int64) (int64, error) {
	total, err := s.Datastore.IncrementProfilePoints(ctx, id, delta)
	if err == nil {
		s.emit(models.TableProfiles, models.EventUpdate, id)
	}
	return total, err
}

func (s *NotifyingStore) IncrementLeaderboard(ctx context.Context, column models.LeaderboardColumn, delta int64) error {
	if err := s.Datastore.IncrementLeaderboard(ctx, column, delta); err != nil {
		return err
	}
	s.emit(models.TableLeaderboard, models.EventUpdate, "")
	return nil
}

func (s *NotifyingStore) AwardPoints(ctx context.Context, id string, column models.LeaderboardColumn, delta int64) (int64, error) {
	total, err := s.Datastore.AwardPoints(ctx, id, column, delta)
	if err != nil {
		return 0, err
	}
	s.emit(models.TableProfiles, models.EventUpdate, id)
	s.emit(models.TableLeaderboard, models.EventUpdate, "")
	return total, nil
}

func (s *NotifyingStore) emit(table, event, rowID string) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(models.ChangeEvent{Table: table, Event: event, RowID: rowID, At: s.now().UTC()})
}
