package memstorage

import (
	"context"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/exerciselog"
	"github.com/samber/lo"
	"sort"
	"time"
)

var (
	ErrExerciseEntryExists = fmt.Errorf("%w: exercise log entry already exists", domain.ErrConflict)
)

type exerciseEntryRow struct {
	ID        string
	UserID    string
	Date      time.Time
	Sets      []exerciselog.Set
	Metrics   exerciselog.Metrics
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
	Seq       int64
}

func copySets(sets []exerciselog.Set) []exerciselog.Set {
	return lo.Map(sets, func(s exerciselog.Set, _ int) exerciselog.Set {
		s.Reps = copyInt(s.Reps)
		s.WeightKg = copyFloat(s.WeightKg)
		return s
	})
}

func exerciseEntryToRow(e *exerciselog.Entry) exerciseEntryRow {
	return exerciseEntryRow{
		ID:        e.ID,
		UserID:    e.UserID,
		Date:      e.Date,
		Sets:      copySets(e.Sets),
		Metrics:   e.Metrics,
		Version:   e.Version,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (r exerciseEntryRow) toDomain() *exerciselog.Entry {
	return &exerciselog.Entry{
		ID:        r.ID,
		UserID:    r.UserID,
		Date:      r.Date,
		Sets:      copySets(r.Sets),
		Metrics:   r.Metrics,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type ExerciseLogStorage struct {
	store *Store
	seen  *tracker
}

func NewExerciseLogStorage(store *Store) *ExerciseLogStorage {
	return &ExerciseLogStorage{store: store, seen: newTracker()}
}

func (s *ExerciseLogStorage) Add(ctx context.Context, e *exerciselog.Entry) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.exerciseEntries[e.ID]; ok {
		return ErrExerciseEntryExists
	}
	row := exerciseEntryToRow(e)
	row.Seq = s.store.nextSeq()
	s.store.exerciseEntries[e.ID] = row
	s.seen.markSeen(e.ID, e)
	return nil
}

func (s *ExerciseLogStorage) GetByID(ctx context.Context, userID, entryID string) (*exerciselog.Entry, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	row, ok := s.store.exerciseEntries[entryID]
	if !ok || row.UserID != userID {
		return nil, exerciselog.ErrEntryNotFound
	}
	e := row.toDomain()
	s.seen.markSeen(e.ID, e)
	return e, nil
}

func (s *ExerciseLogStorage) ListByDate(ctx context.Context, userID string, date time.Time) ([]*exerciselog.Entry, error) {
	return s.ListByRange(ctx, userID, date, date)
}

func (s *ExerciseLogStorage) ListByRange(ctx context.Context, userID string, from, to time.Time) ([]*exerciselog.Entry, error) {
	from, to = domain.Date(from), domain.Date(to)
	rows := s.filter(func(r exerciseEntryRow) bool {
		return r.UserID == userID && !r.Date.Before(from) && !r.Date.After(to)
	})
	return lo.Map(rows, func(r exerciseEntryRow, _ int) *exerciselog.Entry {
		return r.toDomain()
	}), nil
}

func (s *ExerciseLogStorage) EarliestDate(ctx context.Context, userID string) (*time.Time, error) {
	rows := s.filter(func(r exerciseEntryRow) bool {
		return r.UserID == userID
	})
	if len(rows) == 0 {
		return nil, nil
	}
	earliest := rows[0].Date
	return &earliest, nil
}

func (s *ExerciseLogStorage) Persist(ctx context.Context, e *exerciselog.Entry, loadedVersion int) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.exerciseEntries[e.ID]
	if !ok || row.Version != loadedVersion {
		return exerciselog.ErrEntryConflict
	}
	updated := exerciseEntryToRow(e)
	updated.Seq = row.Seq
	s.store.exerciseEntries[e.ID] = updated
	s.seen.markSeen(e.ID, e)
	return nil
}

func (s *ExerciseLogStorage) Delete(ctx context.Context, e *exerciselog.Entry, loadedVersion int) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.exerciseEntries[e.ID]
	if !ok || row.UserID != e.UserID || row.Version != loadedVersion {
		return exerciselog.ErrEntryConflict
	}
	delete(s.store.exerciseEntries, e.ID)
	s.seen.markSeen(e.ID, e)
	return nil
}

func (s *ExerciseLogStorage) filter(keep func(exerciseEntryRow) bool) []exerciseEntryRow {
	s.store.mu.RLock()
	rows := lo.Filter(lo.Values(s.store.exerciseEntries), func(r exerciseEntryRow, _ int) bool {
		return keep(r)
	})
	s.store.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Seq < rows[j].Seq
	})
	return rows
}

func (s *ExerciseLogStorage) CollectEvents() []domain.Event {
	return s.seen.collectEvents()
}

func (s *ExerciseLogStorage) Close() error {
	s.seen.close()
	return nil
}
