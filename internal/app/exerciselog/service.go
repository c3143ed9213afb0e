package exerciselogapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/exerciselog"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
	"github.com/google/uuid"
	"log/slog"
	"time"
)

type SetInput struct {
	ExerciseID string
	exerciselog.SetInput
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

func (s *Service) CreateEntry(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	date time.Time,
	inputs []SetInput,
) (e *exerciselog.Entry, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		sets, err := s.snapshotSets(ctx, userID, inputs)
		if err != nil {
			return err
		}

		if e, err = exerciselog.NewEntry(s.NewID(), userID, date, sets, s.Now().UTC()); err != nil {
			return err
		}
		if err := ctx.ExerciseLogStorage.Add(ctx.Context(), e); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

// UpdateSets replaces the set list of an entry and recomputes its metrics.
func (s *Service) UpdateSets(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID, entryID string,
	inputs []SetInput,
	expectedVersion *int,
) (e *exerciselog.Entry, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if e, err = ctx.ExerciseLogStorage.GetByID(ctx.Context(), userID, entryID); err != nil {
			return err
		}
		loaded := e.Version
		if expectedVersion != nil && *expectedVersion != loaded {
			return exerciselog.ErrEntryConflict
		}

		sets, err := s.snapshotSets(ctx, userID, inputs)
		if err != nil {
			return err
		}
		if err := e.ReplaceSets(sets, s.Now().UTC()); err != nil {
			return err
		}

		if err := ctx.ExerciseLogStorage.Persist(ctx.Context(), e, loaded); err != nil {
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
		e, err := ctx.ExerciseLogStorage.GetByID(ctx.Context(), userID, entryID)
		if err != nil {
			return err
		}
		if expectedVersion != nil && *expectedVersion != e.Version {
			return exerciselog.ErrEntryConflict
		}

		e.MarkDeleted(s.Now().UTC())
		if err := ctx.ExerciseLogStorage.Delete(ctx.Context(), e, e.Version); err != nil {
			return err
		}
		return ctx.Commit()
	})
}

func (s *Service) GetEntry(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID, entryID string,
) (e *exerciselog.Entry, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if e, err = ctx.ExerciseLogStorage.GetByID(ctx.Context(), userID, entryID); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) ListByDate(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	date time.Time,
) (entries []*exerciselog.Entry, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if entries, err = ctx.ExerciseLogStorage.ListByDate(ctx.Context(), userID, domain.Date(date)); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

// snapshotSets reads every referenced exercise once. The body weight used
// for calorie estimates is looked up only when a set needs it.
func (s *Service) snapshotSets(ctx *AtomicContext, userID string, inputs []SetInput) ([]exerciselog.Set, error) {
	if len(inputs) == 0 {
		return nil, domain.ValidationError("entry must contain at least one set")
	}

	exercises := make(map[string]*catalog.Exercise)
	var bodyWeight *float64

	sets := make([]exerciselog.Set, 0, len(inputs))
	for i, in := range inputs {
		ex, ok := exercises[in.ExerciseID]
		if !ok {
			var err error
			if ex, err = ctx.Catalog.GetExercise(ctx.Context(), in.ExerciseID); err != nil {
				return nil, fmt.Errorf("set %d: %w", i, err)
			}
			exercises[in.ExerciseID] = ex
		}

		if in.CaloriesBurned == nil && bodyWeight == nil {
			w, err := s.bodyWeight(ctx, userID)
			if err != nil {
				return nil, err
			}
			bodyWeight = &w
		}

		var weight float64
		if bodyWeight != nil {
			weight = *bodyWeight
		}
		set, err := exerciselog.NewSet(ex, in.SetInput, weight)
		if err != nil {
			return nil, fmt.Errorf("set %d: %w", i, err)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// bodyWeight is the latest biometric weight, falling back to the profile.
// Zero means unknown.
func (s *Service) bodyWeight(ctx *AtomicContext, userID string) (float64, error) {
	r, err := ctx.BiometricStorage.Latest(ctx.Context(), userID)
	if err == nil {
		return r.WeightKg, nil
	}
	if !errors.Is(err, biometric.ErrRecordNotFound) {
		return 0, err
	}

	p, err := ctx.ProfileStorage.GetByID(ctx.Context(), userID)
	if errors.Is(err, profile.ErrProfileNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return p.WeightKg, nil
}
