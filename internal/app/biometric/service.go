package biometricapp

import (
	"context"
	"errors"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/burenotti/go_health_tracker/internal/domain/energy"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
	"github.com/google/uuid"
	"log/slog"
	"time"
)

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

// Record appends an observation. A zero loggedAt means now. When the record
// is the newest one of the user, the profile weight and height follow it.
func (s *Service) Record(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	weightKg, heightCm float64,
	loggedAt time.Time,
) (r *biometric.Record, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		if loggedAt.IsZero() {
			loggedAt = s.Now()
		}

		var err error
		if r, err = biometric.New(s.NewID(), userID, weightKg, heightCm, loggedAt); err != nil {
			return err
		}

		prev, err := ctx.BiometricStorage.Latest(ctx.Context(), userID)
		if err != nil && !errors.Is(err, biometric.ErrRecordNotFound) {
			return err
		}

		if err := ctx.BiometricStorage.Add(ctx.Context(), r); err != nil {
			return err
		}

		if prev == nil || !r.LoggedAt.Before(prev.LoggedAt) {
			if err := s.syncProfile(ctx, r); err != nil {
				return err
			}
		}

		return ctx.Commit()
	})
	return
}

func (s *Service) Latest(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
) (r *biometric.Record, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if r, err = ctx.BiometricStorage.Latest(ctx.Context(), userID); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

// History lists records newest first.
func (s *Service) History(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	filter biometric.HistoryFilter,
) (records []*biometric.Record, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		f, err := filter.Normalize()
		if err != nil {
			return err
		}
		if records, err = ctx.BiometricStorage.History(ctx.Context(), userID, f); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

// Patch corrects an observation and re-derives its BMI from the patched
// pair. Patching the newest record also updates the profile.
func (s *Service) Patch(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID, recordID string,
	weightKg, heightCm *float64,
) (r *biometric.Record, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if r, err = ctx.BiometricStorage.GetByID(ctx.Context(), userID, recordID); err != nil {
			return err
		}
		if err := r.Patch(weightKg, heightCm); err != nil {
			return err
		}
		if err := ctx.BiometricStorage.Persist(ctx.Context(), r); err != nil {
			return err
		}

		latest, err := ctx.BiometricStorage.Latest(ctx.Context(), userID)
		if err != nil {
			return err
		}
		if latest.ID == r.ID {
			if err := s.syncProfile(ctx, r); err != nil {
				return err
			}
		}

		return ctx.Commit()
	})
	return
}

// syncProfile copies r onto the profile and recomputes the derived fields.
// Users without a profile are skipped, as are observations outside the
// profile ranges.
func (s *Service) syncProfile(ctx *AtomicContext, r *biometric.Record) error {
	p, err := ctx.ProfileStorage.GetByID(ctx.Context(), r.UserID)
	if errors.Is(err, profile.ErrProfileNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !profile.BodyInRange(r.WeightKg, r.HeightCm) {
		s.logger.Debug("profile not synced, observation outside profile range",
			slog.String("user_id", r.UserID),
			slog.String("record_id", r.ID),
			slog.Float64("weight_kg", r.WeightKg),
			slog.Float64("height_cm", r.HeightCm),
		)
		return nil
	}

	now := s.Now().UTC()
	if err := p.SyncBody(r.WeightKg, r.HeightCm, now); err != nil {
		return err
	}
	derived, err := energy.Derive(p, now)
	if err != nil {
		return err
	}
	p.SetDerived(derived)

	return ctx.ProfileStorage.Persist(ctx.Context(), p)
}
