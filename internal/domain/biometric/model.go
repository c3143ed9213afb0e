package biometric

import (
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/energy"
	"time"
)

var (
	ErrRecordNotFound = fmt.Errorf("%w: biometric record not found", domain.ErrNotFound)
)

const (
	EventRecorded = "biometric.recorded"
)

type Record struct {
	domain.Aggregate `diff:"-"`
	ID               string    `diff:"-"`
	UserID           string    `diff:"-"`
	LoggedAt         time.Time `diff:"-"`
	WeightKg         float64   `diff:"weight_kg"`
	HeightCm         float64   `diff:"height_cm"`
	BMI              float64   `diff:"bmi"`
}

// New validates the observation and computes its BMI from the same
// weight/height pair.
func New(id, userID string, weightKg, heightCm float64, loggedAt time.Time) (*Record, error) {
	if err := validate(weightKg, heightCm); err != nil {
		return nil, err
	}
	bmi, err := energy.BMI(weightKg, heightCm)
	if err != nil {
		return nil, err
	}
	r := &Record{
		ID:       id,
		UserID:   userID,
		LoggedAt: loggedAt.UTC(),
		WeightKg: weightKg,
		HeightCm: heightCm,
		BMI:      bmi,
	}
	r.PushEvent(&RecordedEvent{
		At:       r.LoggedAt,
		RecordID: r.ID,
		UserID:   r.UserID,
		WeightKg: r.WeightKg,
		BMI:      r.BMI,
	})
	return r, nil
}

// Patch changes the observation and re-derives BMI from the resulting pair.
func (r *Record) Patch(weightKg, heightCm *float64) error {
	weight, height := r.WeightKg, r.HeightCm
	if weightKg != nil {
		weight = *weightKg
	}
	if heightCm != nil {
		height = *heightCm
	}
	if err := validate(weight, height); err != nil {
		return err
	}
	bmi, err := energy.BMI(weight, height)
	if err != nil {
		return err
	}
	r.WeightKg = weight
	r.HeightCm = height
	r.BMI = bmi
	return nil
}

func validate(weightKg, heightCm float64) error {
	if weightKg <= 0 {
		return domain.ValidationError("weight_kg must be positive")
	}
	if heightCm <= 0 {
		return domain.ValidationError("height_cm must be positive")
	}
	return nil
}

type HistoryFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

func (f HistoryFilter) Normalize() (HistoryFilter, error) {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, domain.ValidationError("from must not be after to")
	}
	if f.Limit < 0 {
		return f, domain.ValidationError("limit must not be negative")
	}
	if f.Limit == 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Limit > MaxHistoryLimit {
		f.Limit = MaxHistoryLimit
	}
	return f, nil
}

type RecordedEvent struct {
	At       time.Time
	RecordID string
	UserID   string
	WeightKg float64
	BMI      float64
}

func (e *RecordedEvent) Type() string {
	return EventRecorded
}

func (e *RecordedEvent) PublishedAt() time.Time {
	return e.At
}
