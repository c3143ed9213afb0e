package memstorage

import (
	"context"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
)

// AddFood and AddExercise seed the reference catalog.
func (s *Store) AddFood(f catalog.Food) {
	s.mu.Lock()
	s.foods[f.FoodID] = f
	s.mu.Unlock()
}

func (s *Store) AddExercise(e catalog.Exercise) {
	s.mu.Lock()
	s.exercises[e.ExerciseID] = e
	s.mu.Unlock()
}

type CatalogStorage struct {
	store *Store
}

func NewCatalogStorage(store *Store) *CatalogStorage {
	return &CatalogStorage{store: store}
}

func (s *CatalogStorage) GetFood(ctx context.Context, foodID string) (*catalog.Food, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	f, ok := s.store.foods[foodID]
	if !ok {
		return nil, catalog.ErrFoodNotFound
	}
	return &f, nil
}

func (s *CatalogStorage) GetExercise(ctx context.Context, exerciseID string) (*catalog.Exercise, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	e, ok := s.store.exercises[exerciseID]
	if !ok {
		return nil, catalog.ErrExerciseNotFound
	}
	return &e, nil
}

func (s *CatalogStorage) CollectEvents() []domain.Event {
	return nil
}

func (s *CatalogStorage) Close() error {
	return nil
}
