package foodlogapp

import (
	"context"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"github.com/google/uuid"
	"log/slog"
	"time"
)

type ItemInput struct {
	FoodID      string
	ServingQty  float64
	ServingUnit string
	Grams       float64
}

type Service struct {
	logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
}

func New(logger *slog.Logger) *Service {
	return &Service{
		logger: logger,
		Now:    time.Now,
		NewID:  func() string { return uuid.New().String() },
	}
}

// CreateEntry snapshots the catalog values of every item and stores the
// entry with its totals in one transaction.
func (s *Service) CreateEntry(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	date time.Time,
	mealType foodlog.MealType,
	inputs []ItemInput,
) (e *foodlog.Entry, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		items, err := s.snapshotItems(ctx, inputs)
		if err != nil {
			return err
		}

		if e, err = foodlog.NewEntry(s.NewID(), userID, date, mealType, items, s.Now().UTC()); err != nil {
			return err
		}
		if err := ctx.FoodLogStorage.Add(ctx.Context(), e); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

// UpdateItems replaces the item list of an entry. When expectedVersion is
// set and the stored entry has another version, ErrEntryConflict is
// returned and nothing is written.
func (s *Service) UpdateItems(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID, entryID string,
	inputs []ItemInput,
	expectedVersion *int,
) (e *foodlog.Entry, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if e, err = ctx.FoodLogStorage.GetByID(ctx.Context(), userID, entryID); err != nil {
			return err
		}
		loaded := e.Version
		if expectedVersion != nil && *expectedVersion != loaded {
			return foodlog.ErrEntryConflict
		}

		items, err := s.snapshotItems(ctx, inputs)
		if err != nil {
			return err
		}
		if err := e.ReplaceItems(items, s.Now().UTC()); err != nil {
			return err
		}

		if err := ctx.FoodLogStorage.Persist(ctx.Context(), e, loaded); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) DeleteEntry(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID, entryID string,
	expectedVersion *int,
) error {
	return uow.Atomic(ctx, func(ctx *AtomicContext) error {
		e, err := ctx.FoodLogStorage.GetByID(ctx.Context(), userID, entryID)
		if err != nil {
			return err
		}
		if expectedVersion != nil && *expectedVersion != e.Version {
			return foodlog.ErrEntryConflict
		}

		e.MarkDeleted(s.Now().UTC())
		if err := ctx.FoodLogStorage.Delete(ctx.Context(), e, e.Version); err != nil {
			return err
		}
		return ctx.Commit()
	})
}

func (s *Service) GetEntry(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID, entryID string,
) (e *foodlog.Entry, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if e, err = ctx.FoodLogStorage.GetByID(ctx.Context(), userID, entryID); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

// ListByDate returns the entries of one day in insertion order.
func (s *Service) ListByDate(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	date time.Time,
) (entries []*foodlog.Entry, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if entries, err = ctx.FoodLogStorage.ListByDate(ctx.Context(), userID, domain.Date(date)); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

// snapshotItems reads every referenced food once and copies its nutrients
// onto the items.
func (s *Service) snapshotItems(ctx *AtomicContext, inputs []ItemInput) ([]foodlog.Item, error) {
	if len(inputs) == 0 {
		return nil, domain.ValidationError("entry must contain at least one item")
	}

	foods := make(map[string]*catalog.Food)
	items := make([]foodlog.Item, 0, len(inputs))
	for i, in := range inputs {
		food, ok := foods[in.FoodID]
		if !ok {
			var err error
			if food, err = ctx.Catalog.GetFood(ctx.Context(), in.FoodID); err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			foods[in.FoodID] = food
		}

		item, err := foodlog.NewItem(food, in.ServingQty, in.ServingUnit, in.Grams)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}
