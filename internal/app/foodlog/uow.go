package foodlogapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	catalogstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/catalog"
	foodlogstorage "github.com/burenotti/go_health_tracker/internal/adapter/storage/foodlogs"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/memstorage"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"time"
)

type FoodLogStorage interface {
	Add(ctx context.Context, e *foodlog.Entry) error
	GetByID(ctx context.Context, userID, entryID string) (*foodlog.Entry, error)
	ListByDate(ctx context.Context, userID string, date time.Time) ([]*foodlog.Entry, error)
	Persist(ctx context.Context, e *foodlog.Entry, loadedVersion int) error
	Delete(ctx context.Context, e *foodlog.Entry, loadedVersion int) error
	CollectEvents() []domain.Event
	Close() error
}

type FoodCatalog interface {
	GetFood(ctx context.Context, foodID string) (*catalog.Food, error)
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx            context.Context
	dbContext      storage.DBContext
	FoodLogStorage FoodLogStorage
	Catalog        FoodCatalog
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:            ctx,
		dbContext:      dbContext,
		FoodLogStorage: foodlogstorage.NewPostgresStorage(dbContext),
		Catalog:        catalogstorage.NewPostgresStorage(dbContext),
	}, nil
}

func NewMemoryAtomicContext(store *memstorage.Store) func(context.Context, storage.DBContext) (*AtomicContext, error) {
	return func(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
		return &AtomicContext{
			ctx:            ctx,
			dbContext:      dbContext,
			FoodLogStorage: memstorage.NewFoodLogStorage(store),
			Catalog:        memstorage.NewCatalogStorage(store),
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
	if err = errors.Join(a.FoodLogStorage.Close(), a.Catalog.Close()); err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}
	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return append(a.FoodLogStorage.CollectEvents(), a.Catalog.CollectEvents()...)
}
