package memstorage

import (
	"context"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/samber/lo"
	"sort"
	"time"
)

var (
	ErrRecordExists = fmt.Errorf("%w: biometric record already exists", domain.ErrConflict)
)

type biometricRow struct {
	ID       string
	UserID   string
	LoggedAt time.Time
	WeightKg float64
	HeightCm float64
	BMI      float64
}

func (r biometricRow) toDomain() *biometric.Record {
	return &biometric.Record{
		ID:       r.ID,
		UserID:   r.UserID,
		LoggedAt: r.LoggedAt,
		WeightKg: r.WeightKg,
		HeightCm: r.HeightCm,
		BMI:      r.BMI,
	}
}

func biometricToRow(r *biometric.Record) biometricRow {
	return biometricRow{
		ID:       r.ID,
		UserID:   r.UserID,
		LoggedAt: r.LoggedAt,
		WeightKg: r.WeightKg,
		HeightCm: r.HeightCm,
		BMI:      r.BMI,
	}
}

type BiometricStorage struct {
	store *Store
	seen  *tracker
}

func NewBiometricStorage(store *Store) *BiometricStorage {
	return &BiometricStorage{store: store, seen: newTracker()}
}

func (s *BiometricStorage) Add(ctx context.Context, r *biometric.Record) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.biometrics[r.ID]; ok {
		return ErrRecordExists
	}
	s.store.biometrics[r.ID] = biometricToRow(r)
	s.seen.markSeen(r.ID, r)
	return nil
}

func (s *BiometricStorage) GetByID(ctx context.Context, userID, recordID string) (*biometric.Record, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	row, ok := s.store.biometrics[recordID]
	if !ok || row.UserID != userID {
		return nil, biometric.ErrRecordNotFound
	}
	r := row.toDomain()
	s.seen.markSeen(r.ID, r)
	return r, nil
}

func (s *BiometricStorage) Latest(ctx context.Context, userID string) (*biometric.Record, error) {
	rows := s.byUser(userID)
	if len(rows) == 0 {
		return nil, biometric.ErrRecordNotFound
	}
	return rows[0].toDomain(), nil
}

func (s *BiometricStorage) History(ctx context.Context, userID string, f biometric.HistoryFilter) ([]*biometric.Record, error) {
	rows := lo.Filter(s.byUser(userID), func(r biometricRow, _ int) bool {
		if f.From != nil && r.LoggedAt.Before(*f.From) {
			return false
		}
		return f.To == nil || !r.LoggedAt.After(*f.To)
	})
	if f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}
	return lo.Map(rows, func(r biometricRow, _ int) *biometric.Record {
		return r.toDomain()
	}), nil
}

func (s *BiometricStorage) Persist(ctx context.Context, r *biometric.Record) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.biometrics[r.ID]; !ok {
		return biometric.ErrRecordNotFound
	}
	s.store.biometrics[r.ID] = biometricToRow(r)
	s.seen.markSeen(r.ID, r)
	return nil
}

// byUser returns the records of a user newest first.
func (s *BiometricStorage) byUser(userID string) []biometricRow {
	s.store.mu.RLock()
	rows := lo.Filter(lo.Values(s.store.biometrics), func(r biometricRow, _ int) bool {
		return r.UserID == userID
	})
	s.store.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].LoggedAt.Equal(rows[j].LoggedAt) {
			return rows[i].LoggedAt.After(rows[j].LoggedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	return rows
}

func (s *BiometricStorage) CollectEvents() []domain.Event {
	return s.seen.collectEvents()
}

func (s *BiometricStorage) Close() error {
	s.seen.close()
	return nil
}
