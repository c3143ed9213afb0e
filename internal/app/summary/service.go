package summaryapp

import (
	"context"
	"errors"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/burenotti/go_health_tracker/internal/domain/energy"
	"github.com/burenotti/go_health_tracker/internal/domain/goal"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
	"github.com/burenotti/go_health_tracker/internal/domain/summary"
	"log/slog"
	"time"
)

// Report is a daily summary judged against the user's current target.
type Report struct {
	summary.DailySummary
	TargetCalories    float64
	RemainingCalories float64
	Status            summary.Status
}

type Service struct {
	logger   *slog.Logger
	Policy   summary.Policy
	Defaults goal.Defaults
	Location *time.Location
	Now      func() time.Time
}

func New(logger *slog.Logger, policy summary.Policy, defaults goal.Defaults, loc *time.Location) *Service {
	return &Service{
		logger:   logger,
		Policy:   policy,
		Defaults: defaults,
		Location: loc,
		Now:      time.Now,
	}
}

// Summarize reads the logs of one day and folds them. It never writes.
func (s *Service) Summarize(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	date time.Time,
) (r Report, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		day := domain.Date(date)

		foods, err := ctx.FoodLogStorage.ListByDate(ctx.Context(), userID, day)
		if err != nil {
			return err
		}
		exercises, err := ctx.ExerciseStorage.ListByDate(ctx.Context(), userID, day)
		if err != nil {
			return err
		}

		target, err := TargetCalories(ctx.Context(), s.logger, ctx.ProfileStorage, ctx.GoalStorage, ctx.BiometricStorage, userID, s.Defaults, s.Now())
		if err != nil {
			return err
		}

		daily := summary.Summarize(day, foods, exercises)
		r = Report{
			DailySummary:      daily,
			TargetCalories:    target,
			RemainingCalories: target - daily.NetCalories,
			Status:            s.Policy.Classify(daily, target, domain.Today(s.Now(), s.Location)),
		}
		return ctx.Commit()
	})
	return
}

type profileGetter interface {
	GetByID(ctx context.Context, userID string) (*profile.Profile, error)
}

type goalGetter interface {
	GetByUser(ctx context.Context, userID string) (*goal.Goal, error)
}

type latestGetter interface {
	Latest(ctx context.Context, userID string) (*biometric.Record, error)
}

// TargetCalories resolves the calorie target used to classify days. Users
// without a profile or goal get the defaults; only storage failures are
// returned. A profile the calculator rejects is logged and takes the same
// fallback.
func TargetCalories(
	ctx context.Context,
	logger *slog.Logger,
	profiles profileGetter,
	goals goalGetter,
	biometrics latestGetter,
	userID string,
	defaults goal.Defaults,
	now time.Time,
) (float64, error) {
	p, err := profiles.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, profile.ErrProfileNotFound) {
		return 0, err
	}

	var latestWeight *float64
	r, err := biometrics.Latest(ctx, userID)
	switch {
	case err == nil:
		latestWeight = &r.WeightKg
	case !errors.Is(err, biometric.ErrRecordNotFound):
		return 0, err
	}

	g, err := goals.GetByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	target, err := energy.DailyCalories(p, latestWeight, g, defaults, now)
	if err != nil {
		logger.Warn("calorie target fell back to goal or defaults",
			slog.String("user_id", userID),
			slog.Float64("target_calories", target),
			slog.String("error", err.Error()),
		)
	}
	return target, nil
}
