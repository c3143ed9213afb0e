package goalstorage

import (
	"context"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/pgutil"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/goal"
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

func (s *PostgresStorage) Upsert(ctx context.Context, g *goal.Goal) error {
	q := sqlf.InsertInto("goals").
		Set("user_id", g.UserID).
		Set("calories", g.Calories).
		Set("protein_g", g.ProteinG).
		Set("carbs_g", g.CarbsG).
		Set("fat_g", g.FatG).
		Set("updated_at", g.UpdatedAt).
		Clause(`ON CONFLICT (user_id) DO UPDATE SET
			calories = EXCLUDED.calories,
			protein_g = EXCLUDED.protein_g,
			carbs_g = EXCLUDED.carbs_g,
			fat_g = EXCLUDED.fat_g,
			updated_at = EXCLUDED.updated_at`)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		return storage.InternalError(err)
	}
	return nil
}

// GetByUser returns nil without an error when the user has no goal.
func (s *PostgresStorage) GetByUser(ctx context.Context, userID string) (*goal.Goal, error) {
	var g goal.Goal
	q := sqlf.From("goals g").
		Where("g.user_id = ?", userID).
		Select("g.user_id").To(&g.UserID).
		Select("g.calories").To(&g.Calories).
		Select("g.protein_g").To(&g.ProteinG).
		Select("g.carbs_g").To(&g.CarbsG).
		Select("g.fat_g").To(&g.FatG).
		Select("g.updated_at").To(&g.UpdatedAt)

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		if pgutil.NoRows(err) {
			return nil, nil
		}
		return nil, storage.InternalError(err)
	}
	return &g, nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}
