package foodlogstorage

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/pgutil"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"github.com/leporo/sqlf"
	"time"
)

var (
	ErrEntryExists = fmt.Errorf("%w: food log entry already exists", domain.ErrConflict)
)

type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *PostgresStorage) Add(ctx context.Context, e *foodlog.Entry) error {
	q := sqlf.InsertInto("food_log_entries").
		Set("entry_id", e.ID).
		Set("user_id", e.UserID).
		Set("entry_date", e.Date).
		Set("meal_type", string(e.MealType)).
		Set("calories", e.Totals.Calories).
		Set("protein", e.Totals.Protein).
		Set("fat", e.Totals.Fat).
		Set("carbs", e.Totals.Carbs).
		Set("fiber", e.Totals.Fiber).
		Set("version", e.Version).
		Set("created_at", e.CreatedAt).
		Set("updated_at", e.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "food_log_entries_pkey") {
			return ErrEntryExists
		}
		return storage.InternalError(err)
	}

	if err := s.addItems(ctx, e); err != nil {
		return err
	}

	s.base.MarkSeen(e.ID, e)
	return nil
}

func (s *PostgresStorage) addItems(ctx context.Context, e *foodlog.Entry) error {
	for pos, item := range e.Items {
		q := sqlf.InsertInto("food_log_items").
			Set("entry_id", e.ID).
			Set("position", pos).
			Set("food_id", item.FoodID).
			Set("serving_qty", item.ServingQty).
			Set("serving_unit", item.ServingUnit).
			Set("grams", item.Grams).
			Set("calories", item.Nutrients.Calories).
			Set("protein", item.Nutrients.Protein).
			Set("fat", item.Nutrients.Fat).
			Set("carbs", item.Nutrients.Carbs).
			Set("fiber", item.Nutrients.Fiber)

		if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
			return storage.InternalError(err)
		}
	}
	return nil
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt),
) ([]*foodlog.Entry, error) {
	var tmp entryWithItemRow

	q := sqlf.From("food_log_entries e").
		LeftJoin("food_log_items i", "i.entry_id = e.entry_id").
		Select("e.entry_id").To(&tmp.EntryID).
		Select("e.user_id").To(&tmp.UserID).
		Select("e.entry_date").To(&tmp.Date).
		Select("e.meal_type").To(&tmp.MealType).
		Select("e.calories").To(&tmp.Totals.Calories).
		Select("e.protein").To(&tmp.Totals.Protein).
		Select("e.fat").To(&tmp.Totals.Fat).
		Select("e.carbs").To(&tmp.Totals.Carbs).
		Select("e.fiber").To(&tmp.Totals.Fiber).
		Select("e.version").To(&tmp.Version).
		Select("e.created_at").To(&tmp.CreatedAt).
		Select("e.updated_at").To(&tmp.UpdatedAt).
		Select("i.food_id").To(&tmp.FoodID).
		Select("i.serving_qty").To(&tmp.ServingQty).
		Select("i.serving_unit").To(&tmp.ServingUnit).
		Select("i.grams").To(&tmp.Grams).
		Select("i.calories").To(&tmp.ItemCalories).
		Select("i.protein").To(&tmp.ItemProtein).
		Select("i.fat").To(&tmp.ItemFat).
		Select("i.carbs").To(&tmp.ItemCarbs).
		Select("i.fiber").To(&tmp.ItemFiber)

	modify(q)
	q.OrderBy("e.entry_date", "e.seq", "i.position")

	var fetchedRows []entryWithItemRow
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		fetchedRows = append(fetchedRows, tmp)
	})
	if err != nil && !pgutil.NoRows(err) {
		return nil, storage.InternalError(err)
	}

	return rowsToDomain(fetchedRows), nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, userID, entryID string) (*foodlog.Entry, error) {
	entries, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.entry_id = ?", entryID).Where("e.user_id = ?", userID)
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, foodlog.ErrEntryNotFound
	}
	s.base.MarkSeen(entries[0].ID, entries[0])
	return entries[0], nil
}

func (s *PostgresStorage) ListByDate(ctx context.Context, userID string, date time.Time) ([]*foodlog.Entry, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.user_id = ?", userID).Where("e.entry_date = ?", domain.Date(date))
	})
}

// ListByRange returns the entries dated within [from, to].
func (s *PostgresStorage) ListByRange(ctx context.Context, userID string, from, to time.Time) ([]*foodlog.Entry, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.user_id = ?", userID).
			Where("e.entry_date >= ?", domain.Date(from)).
			Where("e.entry_date <= ?", domain.Date(to))
	})
}

// EarliestDate returns nil when the user never logged food.
func (s *PostgresStorage) EarliestDate(ctx context.Context, userID string) (*time.Time, error) {
	var earliest sql.NullTime
	q := sqlf.From("food_log_entries e").
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

// Persist writes the entry only if the stored version still equals
// loadedVersion. Items are replaced as a whole.
func (s *PostgresStorage) Persist(ctx context.Context, e *foodlog.Entry, loadedVersion int) error {
	q := sqlf.Update("food_log_entries").
		Where("entry_id = ?", e.ID).
		Where("version = ?", loadedVersion).
		Set("meal_type", string(e.MealType)).
		Set("calories", e.Totals.Calories).
		Set("protein", e.Totals.Protein).
		Set("fat", e.Totals.Fat).
		Set("carbs", e.Totals.Carbs).
		Set("fiber", e.Totals.Fiber).
		Set("version", e.Version).
		Set("updated_at", e.UpdatedAt)

	res, err := q.ExecAndClose(ctx, s.base.DB)
	if err := pgutil.AssertUpdated(res, err, foodlog.ErrEntryConflict); err != nil {
		return err
	}

	del := sqlf.DeleteFrom("food_log_items").Where("entry_id = ?", e.ID)
	if _, err := del.ExecAndClose(ctx, s.base.DB); err != nil {
		return storage.InternalError(err)
	}
	if err := s.addItems(ctx, e); err != nil {
		return err
	}

	s.base.MarkSeen(e.ID, e)
	return nil
}

// Delete removes the entry and its items if its version is still
// loadedVersion.
func (s *PostgresStorage) Delete(ctx context.Context, e *foodlog.Entry, loadedVersion int) error {
	q := sqlf.DeleteFrom("food_log_entries").
		Where("entry_id = ?", e.ID).
		Where("user_id = ?", e.UserID).
		Where("version = ?", loadedVersion)

	res, err := q.ExecAndClose(ctx, s.base.DB)
	if err := pgutil.AssertUpdated(res, err, foodlog.ErrEntryConflict); err != nil {
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

type entryWithItemRow struct {
	EntryID   string
	UserID    string
	Date      time.Time
	MealType  string
	Totals    catalog.Nutrients
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time

	FoodID       *string
	ServingQty   *float64
	ServingUnit  *string
	Grams        *float64
	ItemCalories *float64
	ItemProtein  *float64
	ItemFat      *float64
	ItemCarbs    *float64
	ItemFiber    *float64
}

// rowsToDomain folds joined rows into entries, keeping the order of the
// first row of every entry.
func rowsToDomain(rows []entryWithItemRow) []*foodlog.Entry {
	byID := make(map[string]*foodlog.Entry)
	var entries []*foodlog.Entry

	for _, row := range rows {
		e, ok := byID[row.EntryID]
		if !ok {
			e = &foodlog.Entry{
				ID:        row.EntryID,
				UserID:    row.UserID,
				Date:      domain.Date(row.Date),
				MealType:  foodlog.MealType(row.MealType),
				Totals:    row.Totals,
				Version:   row.Version,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
				Items:     make([]foodlog.Item, 0),
			}
			byID[row.EntryID] = e
			entries = append(entries, e)
		}
		if row.FoodID != nil {
			e.Items = append(e.Items, foodlog.Item{
				FoodID:      *row.FoodID,
				ServingQty:  *row.ServingQty,
				ServingUnit: *row.ServingUnit,
				Grams:       *row.Grams,
				Nutrients: catalog.Nutrients{
					Calories: *row.ItemCalories,
					Protein:  *row.ItemProtein,
					Fat:      *row.ItemFat,
					Carbs:    *row.ItemCarbs,
					Fiber:    *row.ItemFiber,
				},
			})
		}
	}
	return entries
}
