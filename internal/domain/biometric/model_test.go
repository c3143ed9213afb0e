package biometric_test

import (
	"errors"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"math"
	"testing"
	"time"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestNewComputesBMIFromOwnPair(t *testing.T) {
	t.Parallel()
	loggedAt := time.Date(2026, 3, 1, 8, 30, 0, 0, time.FixedZone("UTC+3", 3*3600))

	r, err := biometric.New("rec-1", "user-1", 80, 180, loggedAt)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if math.Abs(r.BMI-24.691) > 0.001 {
		t.Fatalf("expected bmi ~24.691, got %.4f", r.BMI)
	}
	if r.LoggedAt.Location() != time.UTC || !r.LoggedAt.Equal(loggedAt) {
		t.Fatalf("expected logged_at normalized to UTC, got %v", r.LoggedAt)
	}

	events := r.PopEvents()
	if len(events) != 1 || events[0].Type() != biometric.EventRecorded {
		t.Fatalf("expected one recorded event, got %v", events)
	}
}

func TestNewRejectsNonPositiveValues(t *testing.T) {
	t.Parallel()
	if _, err := biometric.New("rec-1", "user-1", 0, 180, time.Now()); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for zero weight, got %v", err)
	}
	if _, err := biometric.New("rec-1", "user-1", 80, -1, time.Now()); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for negative height, got %v", err)
	}
}

func TestPatchRederivesBMI(t *testing.T) {
	t.Parallel()
	r, err := biometric.New("rec-1", "user-1", 80, 200, time.Now())
	if err != nil {
		t.Fatalf("new record: %v", err)
	}

	if err := r.Patch(floatPtr(100), nil); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if r.WeightKg != 100 || r.HeightCm != 200 || r.BMI != 25 {
		t.Fatalf("unexpected record after patch: %+v", r)
	}

	if err := r.Patch(nil, floatPtr(0)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if r.HeightCm != 200 {
		t.Fatalf("failed patch must not change the record, height is %.2f", r.HeightCm)
	}
}

func TestHistoryFilterNormalize(t *testing.T) {
	t.Parallel()
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := (biometric.HistoryFilter{From: &from, To: &to}).Normalize(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}

	f, err := biometric.HistoryFilter{}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if f.Limit != biometric.DefaultHistoryLimit {
		t.Fatalf("expected default limit, got %d", f.Limit)
	}

	f, err = biometric.HistoryFilter{Limit: 10_000}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if f.Limit != biometric.MaxHistoryLimit {
		t.Fatalf("expected limit capped at %d, got %d", biometric.MaxHistoryLimit, f.Limit)
	}
}
