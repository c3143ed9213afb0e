package profileapp

import (
	"context"
	"errors"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/burenotti/go_health_tracker/internal/domain/energy"
	"github.com/burenotti/go_health_tracker/internal/domain/goal"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
	"log/slog"
	"time"
)

type Service struct {
	logger   *slog.Logger
	Defaults goal.Defaults
	Now      func() time.Time
}

func New(logger *slog.Logger, defaults goal.Defaults) *Service {
	return &Service{
		logger:   logger,
		Defaults: defaults,
		Now:      time.Now,
	}
}

// SaveProfile creates or replaces the profile of userID. Derived metrics are
// recomputed from the saved attributes on every call.
func (s *Service) SaveProfile(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	attrs profile.Attributes,
) (p *profile.Profile, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		now := s.Now().UTC()

		existing, err := ctx.ProfileStorage.GetByID(ctx.Context(), userID)
		switch {
		case errors.Is(err, profile.ErrProfileNotFound):
			if p, err = profile.New(userID, attrs, now); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			p = existing
			if err := p.Update(attrs, now); err != nil {
				return err
			}
		}

		derived, err := energy.Derive(p, now)
		if err != nil {
			return err
		}
		p.SetDerived(derived)

		if existing == nil {
			err = ctx.ProfileStorage.Add(ctx.Context(), p)
		} else {
			err = ctx.ProfileStorage.Persist(ctx.Context(), p)
		}
		if err != nil {
			return err
		}

		return ctx.Commit()
	})
	return
}

func (s *Service) GetProfile(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
) (p *profile.Profile, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if p, err = ctx.ProfileStorage.GetByID(ctx.Context(), userID); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) SetGoal(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	calories, proteinG, carbsG, fatG float64,
) (g *goal.Goal, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if g, err = goal.New(userID, calories, proteinG, carbsG, fatG, s.Now().UTC()); err != nil {
			return err
		}
		if err := ctx.GoalStorage.Upsert(ctx.Context(), g); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

// GetGoal returns the explicit goal of userID or the configured defaults.
// isDefault reports which one it is.
func (s *Service) GetGoal(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
) (g *goal.Goal, isDefault bool, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		stored, err := ctx.GoalStorage.GetByUser(ctx.Context(), userID)
		if err != nil {
			return err
		}
		g, isDefault = goal.OrDefault(stored, userID, s.Defaults)
		return ctx.Commit()
	})
	return
}

// CurrentTarget computes the target of userID from the profile, the latest
// biometric weight and the goal. Nothing is cached.
func (s *Service) CurrentTarget(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
) (t energy.Target, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		p, err := ctx.ProfileStorage.GetByID(ctx.Context(), userID)
		if err != nil {
			return err
		}

		latestWeight, err := latestWeight(ctx, userID)
		if err != nil {
			return err
		}

		g, err := ctx.GoalStorage.GetByUser(ctx.Context(), userID)
		if err != nil {
			return err
		}

		if t, err = energy.Resolve(p, latestWeight, g, s.Defaults, s.Now()); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func latestWeight(ctx *AtomicContext, userID string) (*float64, error) {
	r, err := ctx.BiometricStorage.Latest(ctx.Context(), userID)
	if errors.Is(err, biometric.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r.WeightKg, nil
}
