// Package memstorage keeps every aggregate in process memory. It backs the
// "memory" database driver and the application service tests.
package memstorage

import (
	"context"
	"errors"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/samber/lo"
	"sync"
)

var ErrTxDone = errors.New("transaction has already been committed or rolled back")

type eventSource interface {
	PopEvents() []domain.Event
}

// Store is the shared state behind all in-memory storages. Transactions are
// serialized: Begin blocks until the previous one commits or rolls back, and
// Rollback restores the rows seen at Begin.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	seq  int64

	profiles        map[string]profileRow
	goals           map[string]goalRow
	biometrics      map[string]biometricRow
	foods           map[string]catalog.Food
	exercises       map[string]catalog.Exercise
	foodEntries     map[string]foodEntryRow
	exerciseEntries map[string]exerciseEntryRow
	streaks         map[string]streakRow
}

func New() *Store {
	return &Store{
		profiles:        make(map[string]profileRow),
		goals:           make(map[string]goalRow),
		biometrics:      make(map[string]biometricRow),
		foods:           make(map[string]catalog.Food),
		exercises:       make(map[string]catalog.Exercise),
		foodEntries:     make(map[string]foodEntryRow),
		exerciseEntries: make(map[string]exerciseEntryRow),
		streaks:         make(map[string]streakRow),
	}
}

func (s *Store) Begin(ctx context.Context) (storage.DBContext, error) {
	s.txMu.Lock()
	return &Tx{store: s, snapshot: s.snapshot()}, nil
}

// nextSeq numbers rows in insertion order. The caller holds mu.
func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// Rows are replaced as whole values on every write, so copying the maps is
// enough to restore them later.
type snapshot struct {
	profiles        map[string]profileRow
	goals           map[string]goalRow
	biometrics      map[string]biometricRow
	foodEntries     map[string]foodEntryRow
	exerciseEntries map[string]exerciseEntryRow
	streaks         map[string]streakRow
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		profiles:        lo.Assign(s.profiles),
		goals:           lo.Assign(s.goals),
		biometrics:      lo.Assign(s.biometrics),
		foodEntries:     lo.Assign(s.foodEntries),
		exerciseEntries: lo.Assign(s.exerciseEntries),
		streaks:         lo.Assign(s.streaks),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = snap.profiles
	s.goals = snap.goals
	s.biometrics = snap.biometrics
	s.foodEntries = snap.foodEntries
	s.exerciseEntries = snap.exerciseEntries
	s.streaks = snap.streaks
}

// Tx satisfies storage.DBContext for the unit of work. In-memory storages
// never run SQL, so only Begin, Commit and Rollback are implemented.
type Tx struct {
	storage.DBContext
	store    *Store
	snapshot snapshot
	done     bool
}

func (t *Tx) Begin(ctx context.Context) (storage.DBContext, error) {
	return t, nil
}

func (t *Tx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

// Rollback discards every write made since Begin. Rolling back a finished
// transaction is a no-op.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.restore(t.snapshot)
	t.store.txMu.Unlock()
	return nil
}

type tracker struct {
	mu   sync.Mutex
	seen map[string]eventSource
}

func newTracker() *tracker {
	return &tracker{seen: make(map[string]eventSource)}
}

func (t *tracker) markSeen(id string, src eventSource) {
	t.mu.Lock()
	t.seen[id] = src
	t.mu.Unlock()
}

func (t *tracker) collectEvents() []domain.Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	var events []domain.Event
	for _, src := range t.seen {
		events = append(events, src.PopEvents()...)
	}
	t.seen = make(map[string]eventSource)
	return events
}

func (t *tracker) close() {
	t.mu.Lock()
	t.seen = make(map[string]eventSource)
	t.mu.Unlock()
}
