package foodlog_test

import (
	"errors"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"math"
	"testing"
	"time"
)

var now = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

func oats() *catalog.Food {
	return &catalog.Food{
		FoodID:       "oats",
		Name:         "Rolled oats",
		ServingSizeG: 40,
		Per100g:      catalog.Nutrients{Calories: 380, Protein: 13, Fat: 7, Carbs: 60, Fiber: 10},
	}
}

func banana() *catalog.Food {
	return &catalog.Food{
		FoodID:       "banana",
		Name:         "Banana",
		ServingSizeG: 120,
		Per100g:      catalog.Nutrients{Calories: 89, Protein: 1.1, Fat: 0.3, Carbs: 23, Fiber: 2.6},
	}
}

func mustItem(t *testing.T, food *catalog.Food, qty float64, unit string, grams float64) foodlog.Item {
	t.Helper()
	item, err := foodlog.NewItem(food, qty, unit, grams)
	if err != nil {
		t.Fatalf("new item %s: %v", food.FoodID, err)
	}
	return item
}

func TestNewItemDerivesGrams(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name      string
		qty       float64
		unit      string
		grams     float64
		wantGrams float64
	}{
		{"servings", 2, "serving", 0, 80},
		{"empty unit means servings", 1.5, "", 0, 60},
		{"grams unit", 55, "g", 0, 55},
		{"explicit grams win", 1, "cup", 90, 90},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := mustItem(t, oats(), tc.qty, tc.unit, tc.grams)
			if item.Grams != tc.wantGrams {
				t.Fatalf("expected %.2f g, got %.2f", tc.wantGrams, item.Grams)
			}
			wantCalories := 380 * tc.wantGrams / 100
			if math.Abs(item.Nutrients.Calories-wantCalories) > 1e-9 {
				t.Fatalf("expected %.2f kcal, got %.2f", wantCalories, item.Nutrients.Calories)
			}
		})
	}
}

func TestNewItemRejectsBadQuantities(t *testing.T) {
	t.Parallel()
	if _, err := foodlog.NewItem(oats(), 0, "g", 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for zero qty, got %v", err)
	}
	if _, err := foodlog.NewItem(oats(), 1, "g", -5); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for negative grams, got %v", err)
	}
	noServing := &catalog.Food{FoodID: "soup"}
	if _, err := foodlog.NewItem(noServing, 1, "bowl", 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error without serving size, got %v", err)
	}
}

func TestEntryTotalsAreSumOfItems(t *testing.T) {
	t.Parallel()
	items := []foodlog.Item{
		mustItem(t, oats(), 1, "serving", 0),
		mustItem(t, banana(), 1, "serving", 0),
	}
	e, err := foodlog.NewEntry("entry-1", "user-1", now, foodlog.Breakfast, items, now)
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}

	var want catalog.Nutrients
	for _, item := range items {
		want = want.Add(item.Nutrients)
	}
	if e.Totals != want {
		t.Fatalf("expected totals %+v, got %+v", want, e.Totals)
	}
	if e.Version != 1 {
		t.Fatalf("expected version 1, got %d", e.Version)
	}
	if !e.Date.Equal(time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected date truncated to day, got %v", e.Date)
	}
}

func TestReplaceItemsRecomputesAndBumpsVersion(t *testing.T) {
	t.Parallel()
	e, err := foodlog.NewEntry("entry-1", "user-1", now, foodlog.Lunch, []foodlog.Item{
		mustItem(t, oats(), 1, "serving", 0),
	}, now)
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	e.PopEvents()

	replacement := mustItem(t, banana(), 2, "serving", 0)
	if err := e.ReplaceItems([]foodlog.Item{replacement}, now.Add(time.Hour)); err != nil {
		t.Fatalf("replace items: %v", err)
	}
	if e.Totals != replacement.Nutrients {
		t.Fatalf("expected totals %+v, got %+v", replacement.Nutrients, e.Totals)
	}
	if e.Version != 2 {
		t.Fatalf("expected version 2, got %d", e.Version)
	}
	events := e.PopEvents()
	if len(events) != 1 || events[0].Type() != foodlog.EventEntryUpdated {
		t.Fatalf("expected one update event, got %v", events)
	}

	if err := e.ReplaceItems(nil, now); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty items, got %v", err)
	}
	if e.Version != 2 {
		t.Fatalf("failed replace must not bump version")
	}
}

func TestItemSnapshotSurvivesCatalogChange(t *testing.T) {
	t.Parallel()
	food := oats()
	item := mustItem(t, food, 100, "g", 0)
	e, err := foodlog.NewEntry("entry-1", "user-1", now, foodlog.Snack, []foodlog.Item{item}, now)
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}

	food.Per100g.Calories = 9999
	e.RecomputeTotals()
	if e.Totals.Calories != 380 {
		t.Fatalf("expected snapshot calories 380, got %.2f", e.Totals.Calories)
	}
}

func TestNewEntryRejectsUnknownMealType(t *testing.T) {
	t.Parallel()
	item := mustItem(t, oats(), 1, "serving", 0)
	if _, err := foodlog.NewEntry("entry-1", "user-1", now, "brunch", []foodlog.Item{item}, now); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
