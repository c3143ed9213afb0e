package exerciselogapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	biometricstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/biometrics"
	catalogstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/catalog"
	exerciselogstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/exerciselogs"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/memstorage"
	profilestorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/profiles"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/exerciselog"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
	"time"
)

type ExerciseLogStorage interface {
	Add(ctx context.Context, e *exerciselog.Entry) error
	GetByID(ctx context.Context, userID, entryID string) (*exerciselog.Entry, error)
	ListByDate(ctx context.Context, userID string, date time.Time) ([]*exerciselog.Entry, error)
	Persist(ctx context.Context, e *exerciselog.Entry, loadedVersion int) error
	Delete(ctx context.Context, e *exerciselog.Entry, loadedVersion int) error
	CollectEvents() []domain.Event
	Close() error
}

type ExerciseCatalog interface {
	GetExercise(ctx context.Context, exerciseID string) (*catalog.Exercise, error)
	CollectEvents() []domain.Event
	Close() error
}

type BiometricStorage interface {
	Latest(ctx context.Context, userID string) (*biometric.Record, error)
	CollectEvents() []domain.Event
	Close() error
}

type ProfileStorage interface {
	GetByID(ctx context.Context, userID string) (*profile.Profile, error)
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx                context.Context
	dbContext          storage.DBContext
	ExerciseLogStorage ExerciseLogStorage
	Catalog            ExerciseCatalog
	BiometricStorage   BiometricStorage
	ProfileStorage     ProfileStorage
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:                ctx,
		dbContext:          dbContext,
		ExerciseLogStorage: exerciselogstorage.NewPostgresStorage(dbContext),
		Catalog:            catalogstorage.NewPostgresStorage(dbContext),
		BiometricStorage:   biometricstorage.NewPostgresStorage(dbContext),
		ProfileStorage:     profilestorage.NewPostgresStorage(dbContext),
	}, nil
}

func NewMemoryAtomicContext(store *memstorage.Store) func(context.Context, storage.DBContext) (*AtomicContext, error) {
	return func(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
		return &AtomicContext{
			ctx:                ctx,
			dbContext:          dbContext,
			ExerciseLogStorage: memstorage.NewExerciseLogStorage(store),
			Catalog:            memstorage.NewCatalogStorage(store),
			BiometricStorage:   memstorage.NewBiometricStorage(store),
			ProfileStorage:     memstorage.NewProfileStorage(store),
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
		a.ExerciseLogStorage.Close(),
		a.Catalog.Close(),
		a.BiometricStorage.Close(),
		a.ProfileStorage.Close(),
	)
	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}
	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	events := a.ExerciseLogStorage.CollectEvents()
	events = append(events, a.Catalog.CollectEvents()...)
	events = append(events, a.BiometricStorage.CollectEvents()...)
	return append(events, a.ProfileStorage.CollectEvents()...)
}
