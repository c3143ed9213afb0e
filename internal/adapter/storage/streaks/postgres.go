package streakstorage

import (
	"context"
	"database/sql"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/pgutil"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/streak"
	"github.com/leporo/sqlf"
)

type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

// Get returns a fresh zero state when the user has no stored streak.
func (s *PostgresStorage) Get(ctx context.Context, userID string) (*streak.State, error) {
	st := streak.NewState(userID)
	var last sql.NullTime
	q := sqlf.From("streaks s").
		Where("s.user_id = ?", userID).
		Select("s.current_streak").To(&st.CurrentStreak).
		Select("s.longest_streak").To(&st.LongestStreak).
		Select("s.last_qualifying_date").To(&last).
		Select("s.updated_at").To(&st.UpdatedAt)

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		if pgutil.NoRows(err) {
			s.base.MarkSeen(userID, st)
			return st, nil
		}
		return nil, storage.InternalError(err)
	}
	if last.Valid {
		d := domain.Date(last.Time)
		st.LastQualifyingDate = &d
	}

	s.base.MarkSeen(userID, st)
	return st, nil
}

// Save upserts the state. The stored longest streak is never lowered.
func (s *PostgresStorage) Save(ctx context.Context, st *streak.State) error {
	q := sqlf.InsertInto("streaks").
		Set("user_id", st.UserID).
		Set("current_streak", st.CurrentStreak).
		Set("longest_streak", st.LongestStreak).
		Set("last_qualifying_date", st.LastQualifyingDate).
		Set("updated_at", st.UpdatedAt).
		Clause(`ON CONFLICT (user_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = GREATEST(streaks.longest_streak, EXCLUDED.longest_streak),
			last_qualifying_date = EXCLUDED.last_qualifying_date,
			updated_at = EXCLUDED.updated_at`)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		return storage.InternalError(err)
	}

	s.base.MarkSeen(st.UserID, st)
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}
