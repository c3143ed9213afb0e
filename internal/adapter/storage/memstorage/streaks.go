package memstorage

import (
	"context"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/streak"
	"time"
)

type streakRow struct {
	CurrentStreak      int
	LongestStreak      int
	LastQualifyingDate *time.Time
	UpdatedAt          time.Time
}

type StreakStorage struct {
	store *Store
	seen  *tracker
}

func NewStreakStorage(store *Store) *StreakStorage {
	return &StreakStorage{store: store, seen: newTracker()}
}

func (s *StreakStorage) Get(ctx context.Context, userID string) (*streak.State, error) {
	s.store.mu.RLock()
	row, ok := s.store.streaks[userID]
	s.store.mu.RUnlock()

	st := streak.NewState(userID)
	if ok {
		st.CurrentStreak = row.CurrentStreak
		st.LongestStreak = row.LongestStreak
		st.LastQualifyingDate = copyTime(row.LastQualifyingDate)
		st.UpdatedAt = row.UpdatedAt
	}
	s.seen.markSeen(userID, st)
	return st, nil
}

func (s *StreakStorage) Save(ctx context.Context, st *streak.State) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row := streakRow{
		CurrentStreak:      st.CurrentStreak,
		LongestStreak:      st.LongestStreak,
		LastQualifyingDate: copyTime(st.LastQualifyingDate),
		UpdatedAt:          st.UpdatedAt,
	}
	if prev, ok := s.store.streaks[st.UserID]; ok {
		row.LongestStreak = max(row.LongestStreak, prev.LongestStreak)
	}
	s.store.streaks[st.UserID] = row
	s.seen.markSeen(st.UserID, st)
	return nil
}

func (s *StreakStorage) CollectEvents() []domain.Event {
	return s.seen.collectEvents()
}

func (s *StreakStorage) Close() error {
	s.seen.close()
	return nil
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
