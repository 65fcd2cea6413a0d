package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rawthoughts/modfeed/src/status"
	"github.com/rawthoughts/modfeed/src/types"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no submission matches the requested id.
	ErrNotFound = errors.New("submission not found")
	// ErrUnavailable wraps driver and connection failures. Callers must not
	// assume the triggering write was committed.
	ErrUnavailable = errors.New("store unavailable")
)

// Store owns persisted submission state. All other components go through it;
// nothing caches a mutable copy between calls.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new pending submission and returns it with the assigned
// id. Ids come from the database auto-increment, so they are monotone and
// never reused.
func (s *Store) Create(ctx context.Context, text string) (types.Submission, error) {
	sub := types.Submission{
		Text:   text,
		Status: types.StatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return types.Submission{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return sub, nil
}

func (s *Store) Get(ctx context.Context, id uint64) (types.Submission, error) {
	var sub types.Submission
	err := s.db.WithContext(ctx).First(&sub, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.Submission{}, ErrNotFound
	case err != nil:
		return types.Submission{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return sub, nil
}

// ListByStatus returns submissions with the given status in creation order.
func (s *Store) ListByStatus(ctx context.Context, st string) ([]types.Submission, error) {
	var subs []types.Submission
	err := s.db.WithContext(ctx).
		Where("status = ?", st).
		Order("id ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return subs, nil
}

// All returns every submission in creation order.
func (s *Store) All(ctx context.Context) ([]types.Submission, error) {
	var subs []types.Submission
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return subs, nil
}

// SetStatus moves a pending submission to a terminal state. The update is
// conditional on the current status, so a record that was already decided is
// never silently re-decided: the caller gets ErrAlreadyDecided instead.
func (s *Store) SetStatus(ctx context.Context, id uint64, target string) error {
	if err := status.Transition(types.StatusPending, target); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&types.Submission{}).
		Where("id = ? AND status = ?", id, types.StatusPending).
		Update("status", target)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		// Missing record or already decided; read back to tell them apart.
		sub, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		return status.Transition(sub.Status, target)
	}
	return nil
}

// SetVoteCount writes the Likes column directly. It does not check the value
// against the voter set; keeping the two consistent is the ledger's job.
func (s *Store) SetVoteCount(ctx context.Context, id uint64, count int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(&types.Submission{}).
		Where("id = ?", id).
		Update("likes", count).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// SwapVoters replaces the serialized voter set and the derived count in one
// conditional update. It returns false when the stored set no longer matches
// old, which means a concurrent toggle won and the caller must re-read.
func (s *Store) SwapVoters(ctx context.Context, id uint64, old, updated string, count int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&types.Submission{}).
		Where("id = ? AND voters = ?", id, old).
		Updates(map[string]interface{}{"voters": updated, "likes": count})
	if res.Error != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CountByStatus returns submission totals grouped by status.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&types.Submission{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
