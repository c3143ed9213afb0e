package summary_test

import (
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/exerciselog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"github.com/burenotti/go_health_tracker/internal/domain/summary"
	"testing"
	"time"
)

var day = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

func foodEntry(t *testing.T, id string, date time.Time, calories float64) *foodlog.Entry {
	t.Helper()
	food := &catalog.Food{
		FoodID:  "food-" + id,
		Per100g: catalog.Nutrients{Calories: calories, Protein: 10, Carbs: 20, Fat: 5, Fiber: 1},
	}
	item, err := foodlog.NewItem(food, 100, "g", 0)
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	e, err := foodlog.NewEntry(id, "user-1", date, foodlog.Lunch, []foodlog.Item{item}, date)
	if err != nil {
		t.Fatalf("new food entry: %v", err)
	}
	return e
}

func exerciseEntry(t *testing.T, id string, date time.Time, calories float64) *exerciselog.Entry {
	t.Helper()
	set, err := exerciselog.NewSet(&catalog.Exercise{ExerciseID: "run", MET: 8}, exerciselog.SetInput{
		DurationMin:    30,
		CaloriesBurned: &calories,
	}, 0)
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	e, err := exerciselog.NewEntry(id, "user-1", date, []exerciselog.Set{set}, date)
	if err != nil {
		t.Fatalf("new exercise entry: %v", err)
	}
	return e
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	foods := []*foodlog.Entry{
		foodEntry(t, "f1", day, 500),
		foodEntry(t, "f2", day.Add(13*time.Hour), 700),
		foodEntry(t, "f3", day.AddDate(0, 0, 1), 900),
	}
	exercises := []*exerciselog.Entry{
		exerciseEntry(t, "e1", day, 300),
		exerciseEntry(t, "e2", day.AddDate(0, 0, -1), 400),
	}

	s := summary.Summarize(day, foods, exercises)
	if s.CaloriesConsumed != 1200 {
		t.Fatalf("expected 1200 consumed, got %.2f", s.CaloriesConsumed)
	}
	if s.CaloriesBurned != 300 {
		t.Fatalf("expected 300 burned, got %.2f", s.CaloriesBurned)
	}
	if s.NetCalories != 900 {
		t.Fatalf("expected net 900, got %.2f", s.NetCalories)
	}
	if s.FoodEntries != 2 || s.ExerciseEntries != 1 {
		t.Fatalf("unexpected entry counts: %d food, %d exercise", s.FoodEntries, s.ExerciseEntries)
	}
	if s.ProteinG != 20 || s.CarbsG != 40 || s.FatG != 10 || s.FiberG != 2 {
		t.Fatalf("unexpected macros: %+v", s)
	}

	if again := summary.Summarize(day, foods, exercises); again != s {
		t.Fatalf("summarize is not idempotent: %+v != %+v", again, s)
	}
}

func TestSummarizeEmptyDay(t *testing.T) {
	t.Parallel()
	s := summary.Summarize(day, nil, nil)
	if s != (summary.DailySummary{Date: day}) {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestSummarizeRange(t *testing.T) {
	t.Parallel()
	foods := []*foodlog.Entry{
		foodEntry(t, "f1", day, 500),
		foodEntry(t, "f2", day.AddDate(0, 0, 2), 700),
	}

	days := summary.SummarizeRange(day, day.AddDate(0, 0, 2), foods, nil)
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[0].CaloriesConsumed != 500 || days[1].FoodEntries != 0 || days[2].CaloriesConsumed != 700 {
		t.Fatalf("unexpected range: %+v", days)
	}

	if got := summary.SummarizeRange(day, day.AddDate(0, 0, -1), foods, nil); got != nil {
		t.Fatalf("expected nil for inverted range, got %+v", got)
	}
}
