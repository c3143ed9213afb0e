package exerciselogapp_test

import (
	"context"
	"errors"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/memstorage"
	exerciselogapp "github.com/burenotti/go_health_tracker/internal/app/exerciselog"
	"github.com/burenotti/go_health_tracker/internal/app/messagebus"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/exerciselog"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"
)

var (
	now   = time.Date(2026, 7, 20, 9, 0, 0, 0, time.UTC)
	today = time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
)

func setup(t *testing.T) (*memstorage.Store, *unitofwork.UnitOfWork[*exerciselogapp.AtomicContext], *exerciselogapp.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstorage.New()
	store.AddExercise(catalog.Exercise{ExerciseID: "run", Name: "Running", MET: 8})
	store.AddExercise(catalog.Exercise{ExerciseID: "squat", Name: "Squat", MET: 5})
	bus := messagebus.New(logger)
	t.Cleanup(bus.Close)

	svc := exerciselogapp.New(logger)
	svc.Now = func() time.Time { return now }
	return store, unitofwork.New(store, exerciselogapp.NewMemoryAtomicContext(store), bus, logger), svc
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func addWeight(t *testing.T, store *memstorage.Store, userID string, weightKg float64) {
	t.Helper()
	r, err := biometric.New(userID+"-w", userID, weightKg, 180, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := memstorage.NewBiometricStorage(store).Add(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateEntryEstimatesCalories(t *testing.T) {
	t.Parallel()
	store, uow, svc := setup(t)
	addWeight(t, store, "user-1", 75)

	e, err := svc.CreateEntry(context.Background(), uow, "user-1", today, []exerciselogapp.SetInput{
		{ExerciseID: "run", SetInput: exerciselog.SetInput{DurationMin: 30}},
		{ExerciseID: "squat", SetInput: exerciselog.SetInput{Reps: intPtr(10), WeightKg: floatPtr(60), CaloriesBurned: floatPtr(25)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 8 MET * 75 kg * 0.5 h
	if math.Abs(e.Sets[0].CaloriesBurned-300) > 1e-9 {
		t.Fatalf("expected 300 kcal estimate, got %f", e.Sets[0].CaloriesBurned)
	}
	if e.Metrics.TotalCaloriesBurned != 325 {
		t.Fatalf("expected 325 kcal total, got %f", e.Metrics.TotalCaloriesBurned)
	}
	if e.Metrics.TotalVolume != 600 || e.Metrics.TotalDuration != 30 {
		t.Fatalf("unexpected metrics %+v", e.Metrics)
	}
}

func TestCreateEntryWithoutBodyWeight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, uow, svc := setup(t)

	_, err := svc.CreateEntry(ctx, uow, "user-1", today, []exerciselogapp.SetInput{
		{ExerciseID: "run", SetInput: exerciselog.SetInput{DurationMin: 20}},
	})
	if !errors.Is(err, domain.ErrComputation) {
		t.Fatalf("expected computation error, got %v", err)
	}

	e, err := svc.CreateEntry(ctx, uow, "user-1", today, []exerciselogapp.SetInput{
		{ExerciseID: "run", SetInput: exerciselog.SetInput{DurationMin: 20, CaloriesBurned: floatPtr(180)}},
	})
	if err != nil {
		t.Fatalf("explicit calories need no body weight, got %v", err)
	}
	if e.Metrics.TotalCaloriesBurned != 180 {
		t.Fatalf("expected 180 kcal, got %f", e.Metrics.TotalCaloriesBurned)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	t.Parallel()
	store, uow, svc := setup(t)
	addWeight(t, store, "user-1", 75)

	tests := []struct {
		name   string
		inputs []exerciselogapp.SetInput
		target error
	}{
		{"no sets", nil, domain.ErrValidation},
		{"unknown exercise", []exerciselogapp.SetInput{{ExerciseID: "swim", SetInput: exerciselog.SetInput{DurationMin: 10}}}, catalog.ErrExerciseNotFound},
		{"no quantity", []exerciselogapp.SetInput{{ExerciseID: "squat"}}, domain.ErrValidation},
		{"negative calories", []exerciselogapp.SetInput{{ExerciseID: "run", SetInput: exerciselog.SetInput{DurationMin: 10, CaloriesBurned: floatPtr(-1)}}}, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEntry(context.Background(), uow, "user-1", today, tt.inputs)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, uow, svc := setup(t)
	addWeight(t, store, "user-1", 80)

	e, err := svc.CreateEntry(ctx, uow, "user-1", today, []exerciselogapp.SetInput{
		{ExerciseID: "run", SetInput: exerciselog.SetInput{DurationMin: 60}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	version := e.Version
	updated, err := svc.UpdateSets(ctx, uow, "user-1", e.ID, []exerciselogapp.SetInput{
		{ExerciseID: "squat", SetInput: exerciselog.SetInput{DurationMin: 12}},
	}, &version)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5 MET * 80 kg * 0.2 h
	if updated.Version != 2 || math.Abs(updated.Metrics.TotalCaloriesBurned-80) > 1e-9 {
		t.Fatalf("unexpected update result %+v", updated.Metrics)
	}

	if _, err := svc.UpdateSets(ctx, uow, "user-1", e.ID, []exerciselogapp.SetInput{
		{ExerciseID: "run", SetInput: exerciselog.SetInput{DurationMin: 5}},
	}, &version); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := svc.DeleteEntry(ctx, uow, "user-1", e.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, err := svc.ListByDate(ctx, uow, "user-1", today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries after delete, got %d", len(entries))
	}
}
