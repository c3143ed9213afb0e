package memstorage_test

import (
	"context"
	"errors"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/memstorage"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"strings"
	"testing"
	"time"
)

var now = time.Date(2026, 7, 20, 9, 0, 0, 0, time.UTC)

var rice = &catalog.Food{
	FoodID:       "rice",
	Name:         "Rice",
	ServingSizeG: 150,
	Per100g:      catalog.Nutrients{Calories: 130, Protein: 2.7, Fat: 0.3, Carbs: 28.2},
}

func newFoodEntry(t *testing.T, id string) *foodlog.Entry {
	t.Helper()
	item, err := foodlog.NewItem(rice, 1, "serving", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, err := foodlog.NewEntry(id, "user-1", now, foodlog.Lunch, []foodlog.Item{item}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func TestRollbackDiscardsWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memstorage.New()
	records := memstorage.NewBiometricStorage(store)

	kept, err := biometric.New("rec-1", "user-1", 70, 175, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := records.Add(ctx, kept); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	discarded, err := biometric.New("rec-2", "user-1", 15, 165, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := records.Add(ctx, discarded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	latest, err := records.Latest(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.ID != "rec-1" {
		t.Fatalf("expected rolled back record to be gone, latest is %s", latest.ID)
	}
	if _, err := records.GetByID(ctx, "user-1", "rec-2"); !errors.Is(err, biometric.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCommitKeepsWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memstorage.New()
	entries := memstorage.NewFoodLogStorage(store)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := entries.Add(ctx, newFoodEntry(t, "entry-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback after commit: %v", err)
	}
	if err := tx.Commit(); !errors.Is(err, memstorage.ErrTxDone) {
		t.Fatalf("expected ErrTxDone, got %v", err)
	}

	if _, err := entries.GetByID(ctx, "user-1", "entry-1"); err != nil {
		t.Fatalf("committed entry is missing: %v", err)
	}

	// The next transaction must not block once the previous one finished.
	next, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := next.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
}

func TestListByDateKeepsInsertionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	entries := memstorage.NewFoodLogStorage(memstorage.New())

	// Same creation time, ids sorting against insertion order.
	for _, id := range []string{"c", "a", "b"} {
		if err := entries.Add(ctx, newFoodEntry(t, id)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	first, err := entries.GetByID(ctx, "user-1", "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item, err := foodlog.NewItem(rice, 2, "serving", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := first.ReplaceItems([]foodlog.Item{item}, now.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := entries.Persist(ctx, first, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := entries.ListByDate(ctx, "user-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	if got := strings.Join(ids, ","); got != "c,a,b" {
		t.Fatalf("expected insertion order c,a,b, got %s", got)
	}
}
