package exerciselog

import (
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"time"
)

var (
	ErrEntryNotFound = fmt.Errorf("%w: exercise log entry not found", domain.ErrNotFound)
	ErrEntryConflict = fmt.Errorf("%w: exercise log entry was changed by another request", domain.ErrConflict)
)

const (
	EventEntryCreated = "exerciselog.entry_created"
	EventEntryUpdated = "exerciselog.entry_updated"
	EventEntryDeleted = "exerciselog.entry_deleted"
)

type Set struct {
	ExerciseID     string
	Reps           *int
	WeightKg       *float64
	DurationMin    float64
	CaloriesBurned float64
}

type SetInput struct {
	Reps           *int
	WeightKg       *float64
	DurationMin    float64
	CaloriesBurned *float64
}

// NewSet snapshots the burn of one set. An explicit CaloriesBurned wins,
// otherwise it is estimated as MET x body weight x hours.
func NewSet(ex *catalog.Exercise, in SetInput, bodyWeightKg float64) (Set, error) {
	set := Set{
		ExerciseID:  ex.ExerciseID,
		Reps:        in.Reps,
		WeightKg:    in.WeightKg,
		DurationMin: in.DurationMin,
	}
	if err := validateSet(set); err != nil {
		return Set{}, err
	}
	switch {
	case in.CaloriesBurned != nil:
		if *in.CaloriesBurned < 0 {
			return Set{}, domain.ValidationError("calories_burned must not be negative")
		}
		set.CaloriesBurned = *in.CaloriesBurned
	case in.DurationMin > 0:
		if bodyWeightKg <= 0 {
			return Set{}, domain.ComputationError("body weight is unknown, calories_burned cannot be estimated")
		}
		set.CaloriesBurned = ex.MET * bodyWeightKg * in.DurationMin / 60
	}
	return set, nil
}

type Metrics struct {
	TotalVolume         float64
	TotalDuration       float64
	TotalCaloriesBurned float64
}

type Entry struct {
	domain.Aggregate
	ID        string
	UserID    string
	Date      time.Time
	Sets      []Set
	Metrics   Metrics
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewEntry(id, userID string, date time.Time, sets []Set, now time.Time) (*Entry, error) {
	if err := ValidateSets(sets); err != nil {
		return nil, err
	}
	e := &Entry{
		ID:        id,
		UserID:    userID,
		Date:      domain.Date(date),
		Sets:      append([]Set(nil), sets...),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.RecomputeMetrics()
	e.PushEvent(&EntryEvent{
		EventType:      EventEntryCreated,
		At:             now,
		EntryID:        e.ID,
		UserID:         e.UserID,
		Date:           e.Date,
		CaloriesBurned: e.Metrics.TotalCaloriesBurned,
	})
	return e, nil
}

func (e *Entry) ReplaceSets(sets []Set, now time.Time) error {
	if err := ValidateSets(sets); err != nil {
		return err
	}
	e.Sets = append([]Set(nil), sets...)
	e.RecomputeMetrics()
	e.Version++
	e.UpdatedAt = now
	e.PushEvent(&EntryEvent{
		EventType:      EventEntryUpdated,
		At:             now,
		EntryID:        e.ID,
		UserID:         e.UserID,
		Date:           e.Date,
		CaloriesBurned: e.Metrics.TotalCaloriesBurned,
	})
	return nil
}

// RecomputeMetrics rebuilds Metrics from the full set list.
func (e *Entry) RecomputeMetrics() {
	var m Metrics
	for _, s := range e.Sets {
		if s.Reps != nil && s.WeightKg != nil {
			m.TotalVolume += float64(*s.Reps) * *s.WeightKg
		}
		m.TotalDuration += s.DurationMin
		m.TotalCaloriesBurned += s.CaloriesBurned
	}
	e.Metrics = m
}

func (e *Entry) MarkDeleted(now time.Time) {
	e.PushEvent(&EntryEvent{
		EventType: EventEntryDeleted,
		At:        now,
		EntryID:   e.ID,
		UserID:    e.UserID,
		Date:      e.Date,
	})
}

func ValidateSets(sets []Set) error {
	if len(sets) == 0 {
		return domain.ValidationError("entry must contain at least one set")
	}
	for i, s := range sets {
		if err := validateSet(s); err != nil {
			return fmt.Errorf("set %d: %w", i, err)
		}
		if s.CaloriesBurned < 0 {
			return domain.ValidationError("set %d: calories_burned must not be negative", i)
		}
	}
	return nil
}

// validateSet requires a positive quantity: either repetitions or minutes.
func validateSet(s Set) error {
	if s.DurationMin < 0 {
		return domain.ValidationError("duration_min must not be negative")
	}
	if s.Reps != nil && *s.Reps < 0 {
		return domain.ValidationError("reps must not be negative")
	}
	if s.WeightKg != nil && *s.WeightKg < 0 {
		return domain.ValidationError("weight must not be negative")
	}
	hasReps := s.Reps != nil && *s.Reps > 0
	if !hasReps && s.DurationMin <= 0 {
		return domain.ValidationError("set for exercise %s needs reps or duration_min above zero", s.ExerciseID)
	}
	return nil
}

type EntryEvent struct {
	EventType      string
	At             time.Time
	EntryID        string
	UserID         string
	Date           time.Time
	CaloriesBurned float64
}

func (e *EntryEvent) Type() string {
	return e.EventType
}

func (e *EntryEvent) PublishedAt() time.Time {
	return e.At
}
