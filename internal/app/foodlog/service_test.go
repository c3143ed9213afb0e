package foodlogapp_test

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/memstorage"
	foodlogapp "github.com/burenotti/go_health_tracker/internal/app/foodlog"
	"github.com/burenotti/go_health_tracker/internal/app/messagebus"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"
)

var (
	now   = time.Date(2026, 7, 20, 9, 0, 0, 0, time.UTC)
	today = time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)

	oats = catalog.Food{
		FoodID:       "oats",
		Name:         "Oats",
		ServingSizeG: 40,
		Per100g:      catalog.Nutrients{Calories: 380, Protein: 13, Fat: 7, Carbs: 60, Fiber: 10},
	}
	milk = catalog.Food{
		FoodID:  "milk",
		Name:    "Milk",
		Per100g: catalog.Nutrients{Calories: 60, Protein: 3.2, Fat: 3.5, Carbs: 4.8},
	}
)

func setup(t *testing.T) (*memstorage.Store, *unitofwork.UnitOfWork[*foodlogapp.AtomicContext], *foodlogapp.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstorage.New()
	store.AddFood(oats)
	store.AddFood(milk)
	bus := messagebus.New(logger)
	t.Cleanup(bus.Close)

	ids := 0
	svc := foodlogapp.New(logger)
	svc.Now = func() time.Time { return now }
	svc.NewID = func() string {
		ids++
		return fmt.Sprintf("entry-%d", ids)
	}
	return store, unitofwork.New(store, foodlogapp.NewMemoryAtomicContext(store), bus, logger), svc
}

func breakfast() []foodlogapp.ItemInput {
	return []foodlogapp.ItemInput{
		{FoodID: "oats", ServingQty: 1},
		{FoodID: "milk", ServingQty: 200, ServingUnit: "g"},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCreateEntryComputesTotals(t *testing.T) {
	t.Parallel()
	_, uow, svc := setup(t)

	e, err := svc.CreateEntry(context.Background(), uow, "user-1", today, foodlog.Breakfast, breakfast())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Version != 1 {
		t.Fatalf("expected version 1, got %d", e.Version)
	}
	if len(e.Items) != 2 || e.Items[0].Grams != 40 || e.Items[1].Grams != 200 {
		t.Fatalf("unexpected items %+v", e.Items)
	}
	// 0.4*380 + 2*60
	if !almostEqual(e.Totals.Calories, 272) {
		t.Fatalf("expected 272 kcal, got %f", e.Totals.Calories)
	}
	if !almostEqual(e.Totals.Protein, 0.4*13+2*3.2) {
		t.Fatalf("unexpected protein %f", e.Totals.Protein)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	t.Parallel()
	_, uow, svc := setup(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		mealType foodlog.MealType
		inputs   []foodlogapp.ItemInput
		target   error
	}{
		{"no items", foodlog.Lunch, nil, domain.ErrValidation},
		{"unknown meal", "brunch", breakfast(), domain.ErrValidation},
		{"zero quantity", foodlog.Lunch, []foodlogapp.ItemInput{{FoodID: "oats"}}, domain.ErrValidation},
		{"unknown food", foodlog.Lunch, []foodlogapp.ItemInput{{FoodID: "pizza", ServingQty: 1}}, catalog.ErrFoodNotFound},
		{"milk without serving size", foodlog.Lunch, []foodlogapp.ItemInput{{FoodID: "milk", ServingQty: 1}}, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEntry(ctx, uow, "user-1", today, tt.mealType, tt.inputs)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
		})
	}

	entries, err := svc.ListByDate(ctx, uow, "user-1", today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestEntriesKeepCatalogSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, uow, svc := setup(t)

	e, err := svc.CreateEntry(ctx, uow, "user-1", today, foodlog.Breakfast, breakfast())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed := oats
	changed.Per100g.Calories = 1000
	store.AddFood(changed)

	stored, err := svc.GetEntry(ctx, uow, "user-1", e.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(stored.Totals.Calories, 272) || !almostEqual(stored.Items[0].Nutrients.Calories, 152) {
		t.Fatalf("catalog change leaked into a stored entry: %+v", stored.Totals)
	}
}

func TestUpdateItemsReplacesAndBumpsVersion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, uow, svc := setup(t)

	e, err := svc.CreateEntry(ctx, uow, "user-1", today, foodlog.Breakfast, breakfast())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	version := e.Version
	updated, err := svc.UpdateItems(ctx, uow, "user-1", e.ID, []foodlogapp.ItemInput{
		{FoodID: "oats", ServingQty: 2},
	}, &version)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Version != 2 || len(updated.Items) != 1 || !almostEqual(updated.Totals.Calories, 304) {
		t.Fatalf("unexpected update result %+v", updated)
	}

	_, err = svc.UpdateItems(ctx, uow, "user-1", e.ID, breakfast(), &version)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict with a stale version, got %v", err)
	}

	_, err = svc.UpdateItems(ctx, uow, "user-1", e.ID, nil, nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty items, got %v", err)
	}

	stored, err := svc.GetEntry(ctx, uow, "user-1", e.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Version != 2 || !almostEqual(stored.Totals.Calories, 304) {
		t.Fatalf("failed updates must not change the entry, got %+v", stored)
	}
}

func TestDeleteEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, uow, svc := setup(t)

	e, err := svc.CreateEntry(ctx, uow, "user-1", today, foodlog.Snack, breakfast())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteEntry(ctx, uow, "user-2", e.ID, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for another user, got %v", err)
	}

	stale := 5
	if err := svc.DeleteEntry(ctx, uow, "user-1", e.ID, &stale); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := svc.DeleteEntry(ctx, uow, "user-1", e.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetEntry(ctx, uow, "user-1", e.ID); !errors.Is(err, foodlog.ErrEntryNotFound) {
		t.Fatalf("expected entry to be gone, got %v", err)
	}
}

func TestListByDateIsolatesDaysAndUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, uow, svc := setup(t)

	for _, c := range []struct {
		user string
		date time.Time
	}{
		{"user-1", today},
		{"user-1", today},
		{"user-1", today.AddDate(0, 0, -1)},
		{"user-2", today},
	} {
		if _, err := svc.CreateEntry(ctx, uow, c.user, c.date, foodlog.Lunch, breakfast()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := svc.ListByDate(ctx, uow, "user-1", today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.UserID != "user-1" || !e.Date.Equal(today) {
			t.Fatalf("unexpected entry %s for %s on %v", e.ID, e.UserID, e.Date)
		}
	}
}
