package exerciselogstorage

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/pgutil"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/exerciselog"
	"github.com/leporo/sqlf"
	"time"
)

var (
	ErrEntryExists = fmt.Errorf("%w: exercise log entry already exists", domain.ErrConflict)
)

type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *PostgresStorage) Add(ctx context.Context, e *exerciselog.Entry) error {
	q := sqlf.InsertInto("exercise_log_entries").
		Set("entry_id", e.ID).
		Set("user_id", e.UserID).
		Set("entry_date", e.Date).
		Set("total_volume", e.Metrics.TotalVolume).
		Set("total_duration", e.Metrics.TotalDuration).
		Set("total_calories_burned", e.Metrics.TotalCaloriesBurned).
		Set("version", e.Version).
		Set("created_at", e.CreatedAt).
		Set("updated_at", e.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "exercise_log_entries_pkey") {
			return ErrEntryExists
		}
		return storage.InternalError(err)
	}

	if err := s.addSets(ctx, e); err != nil {
		return err
	}

	s.base.MarkSeen(e.ID, e)
	return nil
}

func (s *PostgresStorage) addSets(ctx context.Context, e *exerciselog.Entry) error {
	for pos, set := range e.Sets {
		q := sqlf.InsertInto("exercise_sets").
			Set("entry_id", e.ID).
			Set("position", pos).
			Set("exercise_id", set.ExerciseID).
			Set("reps", set.Reps).
			Set("weight_kg", set.WeightKg).
			Set("duration_min", set.DurationMin).
			Set("calories_burned", set.CaloriesBurned)

		if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
			return storage.InternalError(err)
		}
	}
	return nil
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt),
) ([]*exerciselog.Entry, error) {
	var tmp entryWithSetRow

	q := sqlf.From("exercise_log_entries e").
		LeftJoin("exercise_sets s", "s.entry_id = e.entry_id").
		Select("e.entry_id").To(&tmp.EntryID).
		Select("e.user_id").To(&tmp.UserID).
		Select("e.entry_date").To(&tmp.Date).
		Select("e.total_volume").To(&tmp.Metrics.TotalVolume).
		Select("e.total_duration").To(&tmp.Metrics.TotalDuration).
		Select("e.total_calories_burned").To(&tmp.Metrics.TotalCaloriesBurned).
		Select("e.version").To(&tmp.Version).
		Select("e.created_at").To(&tmp.CreatedAt).
		Select("e.updated_at").To(&tmp.UpdatedAt).
		Select("s.exercise_id").To(&tmp.ExerciseID).
		Select("s.reps").To(&tmp.Reps).
		Select("s.weight_kg").To(&tmp.WeightKg).
		Select("s.duration_min").To(&tmp.DurationMin).
		Select("s.calories_burned").To(&tmp.CaloriesBurned)

	modify(q)
	q.OrderBy("e.entry_date", "e.seq", "s.position")

	var fetchedRows []entryWithSetRow
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		fetchedRows = append(fetchedRows, tmp)
	})
	if err != nil && !pgutil.NoRows(err) {
		return nil, storage.InternalError(err)
	}

	return rowsToDomain(fetchedRows), nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, userID, entryID string) (*exerciselog.Entry, error) {
	entries, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.entry_id = ?", entryID).Where("e.user_id = ?", userID)
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, exerciselog.ErrEntryNotFound
	}
	s.base.MarkSeen(entries[0].ID, entries[0])
	return entries[0], nil
}

func (s *PostgresStorage) ListByDate(ctx context.Context, userID string, date time.Time) ([]*exerciselog.Entry, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.user_id = ?", userID).Where("e.entry_date = ?", domain.Date(date))
	})
}

func (s *PostgresStorage) ListByRange(ctx context.Context, userID string, from, to time.Time) ([]*exerciselog.Entry, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.user_id = ?", userID).
			Where("e.entry_date >= ?", domain.Date(from)).
			Where("e.entry_date <= ?", domain.Date(to))
	})
}

func (s *PostgresStorage) EarliestDate(ctx context.Context, userID string) (*time.Time, error) {
	var earliest sql.NullTime
	q := sqlf.From("exercise_log_entries e").
		Where("e.user_id = ?", userID).
		Select("MIN(e.entry_date)").To(&earliest)

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil && !pgutil.NoRows(err) {
		return nil, storage.InternalError(err)
	}
	if !earliest.Valid {
		return nil, nil
	}
	d := domain.Date(earliest.Time)
	return &d, nil
}

func (s *PostgresStorage) Persist(ctx context.Context, e *exerciselog.Entry, loadedVersion int) error {
	q := sqlf.Update("exercise_log_entries").
		Where("entry_id = ?", e.ID).
		Where("version = ?", loadedVersion).
		Set("total_volume", e.Metrics.TotalVolume).
		Set("total_duration", e.Metrics.TotalDuration).
		Set("total_calories_burned", e.Metrics.TotalCaloriesBurned).
		Set("version", e.Version).
		Set("updated_at", e.UpdatedAt)

	res, err := q.ExecAndClose(ctx, s.base.DB)
	if err := pgutil.AssertUpdated(res, err, exerciselog.ErrEntryConflict); err != nil {
		return err
	}

	del := sqlf.DeleteFrom("exercise_sets").Where("entry_id = ?", e.ID)
	if _, err := del.ExecAndClose(ctx, s.base.DB); err != nil {
		return storage.InternalError(err)
	}
	if err := s.addSets(ctx, e); err != nil {
		return err
	}

	s.base.MarkSeen(e.ID, e)
	return nil
}

func (s *PostgresStorage) Delete(ctx context.Context, e *exerciselog.Entry, loadedVersion int) error {
	q := sqlf.DeleteFrom("exercise_log_entries").
		Where("entry_id = ?", e.ID).
		Where("user_id = ?", e.UserID).
		Where("version = ?", loadedVersion)

	res, err := q.ExecAndClose(ctx, s.base.DB)
	if err := pgutil.AssertUpdated(res, err, exerciselog.ErrEntryConflict); err != nil {
		return err
	}

	s.base.MarkSeen(e.ID, e)
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}

type entryWithSetRow struct {
	EntryID   string
	UserID    string
	Date      time.Time
	Metrics   exerciselog.Metrics
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time

	ExerciseID     *string
	Reps           *int
	WeightKg       *float64
	DurationMin    *float64
	CaloriesBurned *float64
}

func rowsToDomain(rows []entryWithSetRow) []*exerciselog.Entry {
	byID := make(map[string]*exerciselog.Entry)
	var entries []*exerciselog.Entry

	for _, row := range rows {
		e, ok := byID[row.EntryID]
		if !ok {
			e = &exerciselog.Entry{
				ID:        row.EntryID,
				UserID:    row.UserID,
				Date:      domain.Date(row.Date),
				Metrics:   row.Metrics,
				Version:   row.Version,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
				Sets:      make([]exerciselog.Set, 0),
			}
			byID[row.EntryID] = e
			entries = append(entries, e)
		}
		if row.ExerciseID != nil {
			e.Sets = append(e.Sets, exerciselog.Set{
				ExerciseID:     *row.ExerciseID,
				Reps:           row.Reps,
				WeightKg:       row.WeightKg,
				DurationMin:    *row.DurationMin,
				CaloriesBurned: *row.CaloriesBurned,
			})
		}
	}
	return entries
}
