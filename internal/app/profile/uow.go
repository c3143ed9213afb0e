package profileapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	biometricstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/biometrics"
	goalstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/goals"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/memstorage"
	profilestorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/profiles"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/burenotti/go_health_tracker/internal/domain/goal"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
)

type ProfileStorage interface {
	Add(ctx context.Context, p *profile.Profile) error
	GetByID(ctx context.Context, userID string) (*profile.Profile, error)
	Persist(ctx context.Context, p *profile.Profile) error
	CollectEvents() []domain.Event
	Close() error
}

type GoalStorage interface {
	Upsert(ctx context.Context, g *goal.Goal) error
	GetByUser(ctx context.Context, userID string) (*goal.Goal, error)
	CollectEvents() []domain.Event
	Close() error
}

type BiometricStorage interface {
	Latest(ctx context.Context, userID string) (*biometric.Record, error)
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx              context.Context
	dbContext        storage.DBContext
	ProfileStorage   ProfileStorage
	GoalStorage      GoalStorage
	BiometricStorage BiometricStorage
}

func NewAtomicContext(
	ctx context.Context,
	dbContext storage.DBContext,
) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:              ctx,
		dbContext:        dbContext,
		ProfileStorage:   profilestorage.NewPostgresStorage(dbContext),
		GoalStorage:      goalstorage.NewPostgresStorage(dbContext),
		BiometricStorage: biometricstorage.NewPostgresStorage(dbContext),
	}, nil
}

func NewMemoryAtomicContext(store *memstorage.Store) func(context.Context, storage.DBContext) (*AtomicContext, error) {
	return func(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
		return &AtomicContext{
			ctx:              ctx,
			dbContext:        dbContext,
			ProfileStorage:   memstorage.NewProfileStorage(store),
			GoalStorage:      memstorage.NewGoalStorage(store),
			BiometricStorage: memstorage.NewBiometricStorage(store),
		}, nil
	}
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.dbContext.Commit()
}

func (a *AtomicContext) Close() (err error) {
	err = errors.Join(
		a.ProfileStorage.Close(),
		a.GoalStorage.Close(),
		a.BiometricStorage.Close(),
	)
	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}
	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	events := a.ProfileStorage.CollectEvents()
	events = append(events, a.GoalStorage.CollectEvents()...)
	return append(events, a.BiometricStorage.CollectEvents()...)
}
