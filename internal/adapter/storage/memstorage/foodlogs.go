package memstorage

import (
	"context"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"github.com/samber/lo"
	"sort"
	"time"
)

var (
	ErrFoodEntryExists = fmt.Errorf("%w: food log entry already exists", domain.ErrConflict)
)

type foodEntryRow struct {
	ID        string
	UserID    string
	Date      time.Time
	MealType  foodlog.MealType
	Items     []foodlog.Item
	Totals    catalog.Nutrients
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
	Seq       int64
}

func foodEntryToRow(e *foodlog.Entry) foodEntryRow {
	return foodEntryRow{
		ID:        e.ID,
		UserID:    e.UserID,
		Date:      e.Date,
		MealType:  e.MealType,
		Items:     append([]foodlog.Item(nil), e.Items...),
		Totals:    e.Totals,
		Version:   e.Version,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (r foodEntryRow) toDomain() *foodlog.Entry {
	return &foodlog.Entry{
		ID:        r.ID,
		UserID:    r.UserID,
		Date:      r.Date,
		MealType:  r.MealType,
		Items:     append([]foodlog.Item(nil), r.Items...),
		Totals:    r.Totals,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type FoodLogStorage struct {
	store *Store
	seen  *tracker
}

func NewFoodLogStorage(store *Store) *FoodLogStorage {
	return &FoodLogStorage{store: store, seen: newTracker()}
}

func (s *FoodLogStorage) Add(ctx context.Context, e *foodlog.Entry) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.foodEntries[e.ID]; ok {
		return ErrFoodEntryExists
	}
	row := foodEntryToRow(e)
	row.Seq = s.store.nextSeq()
	s.store.foodEntries[e.ID] = row
	s.seen.markSeen(e.ID, e)
	return nil
}

func (s *FoodLogStorage) GetByID(ctx context.Context, userID, entryID string) (*foodlog.Entry, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	row, ok := s.store.foodEntries[entryID]
	if !ok || row.UserID != userID {
		return nil, foodlog.ErrEntryNotFound
	}
	e := row.toDomain()
	s.seen.markSeen(e.ID, e)
	return e, nil
}

func (s *FoodLogStorage) ListByDate(ctx context.Context, userID string, date time.Time) ([]*foodlog.Entry, error) {
	return s.ListByRange(ctx, userID, date, date)
}

func (s *FoodLogStorage) ListByRange(ctx context.Context, userID string, from, to time.Time) ([]*foodlog.Entry, error) {
	from, to = domain.Date(from), domain.Date(to)
	rows := s.filter(func(r foodEntryRow) bool {
		return r.UserID == userID && !r.Date.Before(from) && !r.Date.After(to)
	})
	return lo.Map(rows, func(r foodEntryRow, _ int) *foodlog.Entry {
		return r.toDomain()
	}), nil
}

func (s *FoodLogStorage) EarliestDate(ctx context.Context, userID string) (*time.Time, error) {
	rows := s.filter(func(r foodEntryRow) bool {
		return r.UserID == userID
	})
	if len(rows) == 0 {
		return nil, nil
	}
	earliest := rows[0].Date
	return &earliest, nil
}

func (s *FoodLogStorage) Persist(ctx context.Context, e *foodlog.Entry, loadedVersion int) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.foodEntries[e.ID]
	if !ok || row.Version != loadedVersion {
		return foodlog.ErrEntryConflict
	}
	updated := foodEntryToRow(e)
	updated.Seq = row.Seq
	s.store.foodEntries[e.ID] = updated
	s.seen.markSeen(e.ID, e)
	return nil
}

func (s *FoodLogStorage) Delete(ctx context.Context, e *foodlog.Entry, loadedVersion int) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.foodEntries[e.ID]
	if !ok || row.UserID != e.UserID || row.Version != loadedVersion {
		return foodlog.ErrEntryConflict
	}
	delete(s.store.foodEntries, e.ID)
	s.seen.markSeen(e.ID, e)
	return nil
}

// filter returns matching rows ordered by date, then insertion order.
func (s *FoodLogStorage) filter(keep func(foodEntryRow) bool) []foodEntryRow {
	s.store.mu.RLock()
	rows := lo.Filter(lo.Values(s.store.foodEntries), func(r foodEntryRow, _ int) bool {
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

func (s *FoodLogStorage) CollectEvents() []domain.Event {
	return s.seen.collectEvents()
}

func (s *FoodLogStorage) Close() error {
	s.seen.close()
	return nil
}
