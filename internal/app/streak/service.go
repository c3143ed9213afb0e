package streakapp

import (
	"context"
	summaryapp "github.com/burenotti/go_health_tracker/internal/app/summary"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/goal"
	"github.com/burenotti/go_health_tracker/internal/domain/streak"
	"github.com/burenotti/go_health_tracker/internal/domain/summary"
	"log/slog"
	"time"
)

// Report is the streak view returned to clients. Longest is the stored
// value, which may exceed what the current history proves.
type Report struct {
	Current            int
	Longest            int
	LastQualifyingDate *time.Time
	Week               []streak.Day
}

type Service struct {
	logger   *slog.Logger
	Policy   summary.Policy
	Defaults goal.Defaults
	Location *time.Location
	WeekDays int
	Now      func() time.Time
}

func New(logger *slog.Logger, policy summary.Policy, defaults goal.Defaults, loc *time.Location, weekDays int) *Service {
	return &Service{
		logger:   logger,
		Policy:   policy,
		Defaults: defaults,
		Location: loc,
		WeekDays: weekDays,
		Now:      time.Now,
	}
}

// GetStreak recomputes the streak of userID from the full log history and
// stores the result when it differs from the stored state.
func (s *Service) GetStreak(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
) (r Report, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		now := s.Now()
		today := domain.Today(now, s.Location)

		from, err := s.earliest(ctx, userID)
		if err != nil {
			return err
		}
		if from == nil {
			from = &today
		}

		weekDays := s.WeekDays
		if weekDays <= 0 {
			weekDays = streak.DefaultWeekDays
		}
		rangeStart := today.AddDate(0, 0, -(weekDays - 1))
		if from.Before(rangeStart) {
			rangeStart = *from
		}

		foods, err := ctx.FoodLogStorage.ListByRange(ctx.Context(), userID, rangeStart, today)
		if err != nil {
			return err
		}
		exercises, err := ctx.ExerciseStorage.ListByRange(ctx.Context(), userID, rangeStart, today)
		if err != nil {
			return err
		}

		target, err := summaryapp.TargetCalories(ctx.Context(), s.logger, ctx.ProfileStorage, ctx.GoalStorage, ctx.BiometricStorage, userID, s.Defaults, now)
		if err != nil {
			return err
		}

		days := make(map[time.Time]summary.Status)
		for _, d := range summary.SummarizeRange(rangeStart, today, foods, exercises) {
			days[d.Date] = s.Policy.Classify(d, target, today)
		}
		status := func(day time.Time) summary.Status {
			if st, ok := days[day]; ok {
				return st
			}
			return summary.Gray
		}

		result := streak.Evaluate(*from, today, weekDays, status)

		state, err := ctx.StreakStorage.Get(ctx.Context(), userID)
		if err != nil {
			return err
		}
		if state.Apply(result, now.UTC()) {
			if err := ctx.StreakStorage.Save(ctx.Context(), state); err != nil {
				return err
			}
			s.logger.Debug("streak updated",
				slog.String("user_id", userID),
				slog.Int("current", state.CurrentStreak),
				slog.Int("longest", state.LongestStreak),
			)
		}

		r = Report{
			Current:            state.CurrentStreak,
			Longest:            state.LongestStreak,
			LastQualifyingDate: state.LastQualifyingDate,
			Week:               result.Week,
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) earliest(ctx *AtomicContext, userID string) (*time.Time, error) {
	food, err := ctx.FoodLogStorage.EarliestDate(ctx.Context(), userID)
	if err != nil {
		return nil, err
	}
	exercise, err := ctx.ExerciseStorage.EarliestDate(ctx.Context(), userID)
	if err != nil {
		return nil, err
	}
	switch {
	case food == nil:
		return exercise, nil
	case exercise == nil:
		return food, nil
	case exercise.Before(*food):
		return exercise, nil
	}
	return food, nil
}
