package biometricapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	biometricstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/biometrics"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/memstorage"
	profilestorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/profiles"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
)

type BiometricStorage interface {
	Add(ctx context.Context, r *biometric.Record) error
	GetByID(ctx context.Context, userID, recordID string) (*biometric.Record, error)
	Latest(ctx context.Context, userID string) (*biometric.Record, error)
	History(ctx context.Context, userID string, f biometric.HistoryFilter) ([]*biometric.Record, error)
	Persist(ctx context.Context, r *biometric.Record) error
	CollectEvents() []domain.Event
	Close() error
}

type ProfileStorage interface {
	GetByID(ctx context.Context, userID string) (*profile.Profile, error)
	Persist(ctx context.Context, p *profile.Profile) error
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx              context.Context
	dbContext        storage.DBContext
	BiometricStorage BiometricStorage
	ProfileStorage   ProfileStorage
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:              ctx,
		dbContext:        dbContext,
		BiometricStorage: biometricstorage.NewPostgresStorage(dbContext),
		ProfileStorage:   profilestorage.NewPostgresStorage(dbContext),
	}, nil
}

func NewMemoryAtomicContext(store *memstorage.Store) func(context.Context, storage.DBContext) (*AtomicContext, error) {
	return func(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
		return &AtomicContext{
			ctx:              ctx,
			dbContext:        dbContext,
			BiometricStorage: memstorage.NewBiometricStorage(store),
			ProfileStorage:   memstorage.NewProfileStorage(store),
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
	if err = errors.Join(a.BiometricStorage.Close(), a.ProfileStorage.Close()); err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}
	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return append(a.BiometricStorage.CollectEvents(), a.ProfileStorage.CollectEvents()...)
}
