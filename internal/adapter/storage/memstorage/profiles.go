package memstorage

import (
	"context"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/goal"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
	"time"
)

var (
	ErrProfileExists = fmt.Errorf("%w: profile already exists", domain.ErrConflict)
)

type profileRow struct {
	UserID         string
	DateOfBirth    time.Time
	Gender         profile.Gender
	HeightCm       float64
	WeightKg       float64
	ActivityLevel  profile.ActivityLevel
	GoalType       profile.GoalType
	TargetWeightKg *float64
	Derived        profile.Derived
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func profileToRow(p *profile.Profile) profileRow {
	return profileRow{
		UserID:         p.UserID,
		DateOfBirth:    p.DateOfBirth,
		Gender:         p.Gender,
		HeightCm:       p.HeightCm,
		WeightKg:       p.WeightKg,
		ActivityLevel:  p.ActivityLevel,
		GoalType:       p.GoalType,
		TargetWeightKg: copyFloat(p.TargetWeightKg),
		Derived:        p.Derived(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (r profileRow) toDomain() *profile.Profile {
	return &profile.Profile{
		UserID:         r.UserID,
		DateOfBirth:    r.DateOfBirth,
		Gender:         r.Gender,
		HeightCm:       r.HeightCm,
		WeightKg:       r.WeightKg,
		ActivityLevel:  r.ActivityLevel,
		GoalType:       r.GoalType,
		TargetWeightKg: copyFloat(r.TargetWeightKg),
		BMI:            r.Derived.BMI,
		BMR:            r.Derived.BMR,
		TDEE:           r.Derived.TDEE,
		TargetCalories: r.Derived.TargetCalories,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type ProfileStorage struct {
	store *Store
	seen  *tracker
}

func NewProfileStorage(store *Store) *ProfileStorage {
	return &ProfileStorage{store: store, seen: newTracker()}
}

func (s *ProfileStorage) Add(ctx context.Context, p *profile.Profile) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.profiles[p.UserID]; ok {
		return ErrProfileExists
	}
	s.store.profiles[p.UserID] = profileToRow(p)
	s.seen.markSeen(p.UserID, p)
	return nil
}

func (s *ProfileStorage) GetByID(ctx context.Context, userID string) (*profile.Profile, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	row, ok := s.store.profiles[userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	p := row.toDomain()
	s.seen.markSeen(p.UserID, p)
	return p, nil
}

func (s *ProfileStorage) Persist(ctx context.Context, p *profile.Profile) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.profiles[p.UserID]; !ok {
		return profile.ErrProfileNotFound
	}
	s.store.profiles[p.UserID] = profileToRow(p)
	s.seen.markSeen(p.UserID, p)
	return nil
}

func (s *ProfileStorage) CollectEvents() []domain.Event {
	return s.seen.collectEvents()
}

func (s *ProfileStorage) Close() error {
	s.seen.close()
	return nil
}

type goalRow goal.Goal

type GoalStorage struct {
	store *Store
	seen  *tracker
}

func NewGoalStorage(store *Store) *GoalStorage {
	return &GoalStorage{store: store, seen: newTracker()}
}

func (s *GoalStorage) Upsert(ctx context.Context, g *goal.Goal) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	s.store.goals[g.UserID] = goalRow(*g)
	return nil
}

func (s *GoalStorage) GetByUser(ctx context.Context, userID string) (*goal.Goal, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	row, ok := s.store.goals[userID]
	if !ok {
		return nil, nil
	}
	g := goal.Goal(row)
	return &g, nil
}

func (s *GoalStorage) CollectEvents() []domain.Event {
	return s.seen.collectEvents()
}

func (s *GoalStorage) Close() error {
	s.seen.close()
	return nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
