package catalogstorage

import (
	"context"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/pgutil"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/leporo/sqlf"
)

// PostgresStorage reads the food and exercise reference tables. The catalog
// is maintained outside of this service, so it is read-only here.
type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *PostgresStorage) GetFood(ctx context.Context, foodID string) (*catalog.Food, error) {
	var f catalog.Food
	q := sqlf.From("foods f").
		Where("f.food_id = ?", foodID).
		Select("f.food_id").To(&f.FoodID).
		Select("f.name").To(&f.Name).
		Select("f.serving_size_g").To(&f.ServingSizeG).
		Select("f.calories").To(&f.Per100g.Calories).
		Select("f.protein").To(&f.Per100g.Protein).
		Select("f.fat").To(&f.Per100g.Fat).
		Select("f.carbs").To(&f.Per100g.Carbs).
		Select("f.fiber").To(&f.Per100g.Fiber)

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		if pgutil.NoRows(err) {
			return nil, catalog.ErrFoodNotFound
		}
		return nil, storage.InternalError(err)
	}
	return &f, nil
}

func (s *PostgresStorage) GetExercise(ctx context.Context, exerciseID string) (*catalog.Exercise, error) {
	var e catalog.Exercise
	q := sqlf.From("exercises e").
		Where("e.exercise_id = ?", exerciseID).
		Select("e.exercise_id").To(&e.ExerciseID).
		Select("e.name").To(&e.Name).
		Select("e.met").To(&e.MET)

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		if pgutil.NoRows(err) {
			return nil, catalog.ErrExerciseNotFound
		}
		return nil, storage.InternalError(err)
	}
	return &e, nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}
