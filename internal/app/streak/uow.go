package streakapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	biometricstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/biometrics"
	exerciselogstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/exerciselogs"
	foodlogstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/foodlogs"
	goalstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/goals"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/memstorage"
	profilestorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/profiles"
	streakstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/streaks"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/burenotti/go_health_tracker/internal/domain/exerciselog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"github.com/burenotti/go_health_tracker/internal/domain/goal"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
	"github.com/burenotti/go_health_tracker/internal/domain/streak"
	"time"
)

type StreakStorage interface {
	Get(ctx context.Context, userID string) (*streak.State, error)
	Save(ctx context.Context, st *streak.State) error
	CollectEvents() []domain.Event
	Close() error
}

type FoodLogReader interface {
	ListByRange(ctx context.Context, userID string, from, to time.Time) ([]*foodlog.Entry, error)
	EarliestDate(ctx context.Context, userID string) (*time.Time, error)
	CollectEvents() []domain.Event
	Close() error
}

type ExerciseLogReader interface {
	ListByRange(ctx context.Context, userID string, from, to time.Time) ([]*exerciselog.Entry, error)
	EarliestDate(ctx context.Context, userID string) (*time.Time, error)
	CollectEvents() []domain.Event
	Close() error
}

type ProfileReader interface {
	GetByID(ctx context.Context, userID string) (*profile.Profile, error)
	CollectEvents() []domain.Event
	Close() error
}

type GoalReader interface {
	GetByUser(ctx context.Context, userID string) (*goal.Goal, error)
	CollectEvents() []domain.Event
	Close() error
}

type BiometricReader interface {
	Latest(ctx context.Context, userID string) (*biometric.Record, error)
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx              context.Context
	dbContext        storage.DBContext
	StreakStorage    StreakStorage
	FoodLogStorage   FoodLogReader
	ExerciseStorage  ExerciseLogReader
	ProfileStorage   ProfileReader
	GoalStorage      GoalReader
	BiometricStorage BiometricReader
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:              ctx,
		dbContext:        dbContext,
		StreakStorage:    streakstorage.NewPostgresStorage(dbContext),
		FoodLogStorage:   foodlogstorage.NewPostgresStorage(dbContext),
		ExerciseStorage:  exerciselogstorage.NewPostgresStorage(dbContext),
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
			StreakStorage:    memstorage.NewStreakStorage(store),
			FoodLogStorage:   memstorage.NewFoodLogStorage(store),
			ExerciseStorage:  memstorage.NewExerciseLogStorage(store),
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
		a.StreakStorage.Close(),
		a.FoodLogStorage.Close(),
		a.ExerciseStorage.Close(),
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
	events := a.StreakStorage.CollectEvents()
	events = append(events, a.FoodLogStorage.CollectEvents()...)
	events = append(events, a.ExerciseStorage.CollectEvents()...)
	events = append(events, a.ProfileStorage.CollectEvents()...)
	events = append(events, a.GoalStorage.CollectEvents()...)
	return append(events, a.BiometricStorage.CollectEvents()...)
}
