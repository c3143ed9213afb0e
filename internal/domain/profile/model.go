package profile

import (
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"time"
)

var (
	ErrProfileNotFound = fmt.Errorf("%w: profile not found", domain.ErrNotFound)
)

const (
	EventSaved = "profile.saved"
)

const (
	MinHeightCm = 50
	MaxHeightCm = 300
	MinWeightKg = 20
	MaxWeightKg = 500
)

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

func (g Gender) Valid() bool {
	return g == Male || g == Female || g == Other
}

type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

func (l ActivityLevel) Valid() bool {
	switch l {
	case Sedentary, Light, Moderate, Active, VeryActive:
		return true
	}
	return false
}

type GoalType string

const (
	LoseWeight  GoalType = "lose_weight"
	Maintain    GoalType = "maintain"
	GainWeight  GoalType = "gain_weight"
	BuildMuscle GoalType = "build_muscle"
)

func (g GoalType) Valid() bool {
	switch g {
	case LoseWeight, Maintain, GainWeight, BuildMuscle:
		return true
	}
	return false
}

// Derived holds the values recomputed on every profile write. They are never
// accepted from callers.
type Derived struct {
	BMI            float64
	BMR            float64
	TDEE           float64
	TargetCalories float64
}

type Profile struct {
	domain.Aggregate `diff:"-"`
	UserID           string        `diff:"-"`
	DateOfBirth      time.Time     `diff:"-"`
	Gender           Gender        `diff:"gender"`
	HeightCm         float64       `diff:"height_cm"`
	WeightKg         float64       `diff:"weight_kg"`
	ActivityLevel    ActivityLevel `diff:"activity_level"`
	GoalType         GoalType      `diff:"goal_type"`
	TargetWeightKg   *float64      `diff:"-"`
	BMI              float64       `diff:"bmi"`
	BMR              float64       `diff:"bmr"`
	TDEE             float64       `diff:"tdee"`
	TargetCalories   float64       `diff:"target_calories"`
	CreatedAt        time.Time     `diff:"-"`
	UpdatedAt        time.Time     `diff:"-"`
}

type Attributes struct {
	DateOfBirth    time.Time
	Gender         Gender
	HeightCm       float64
	WeightKg       float64
	ActivityLevel  ActivityLevel
	GoalType       GoalType
	TargetWeightKg *float64
}

func (a Attributes) Validate() error {
	if a.DateOfBirth.IsZero() {
		return domain.ValidationError("date_of_birth is required")
	}
	if !a.Gender.Valid() {
		return domain.ValidationError("unknown gender %q", a.Gender)
	}
	if a.HeightCm < MinHeightCm || a.HeightCm > MaxHeightCm {
		return domain.ValidationError("height_cm must be within [%d, %d]", MinHeightCm, MaxHeightCm)
	}
	if a.WeightKg < MinWeightKg || a.WeightKg > MaxWeightKg {
		return domain.ValidationError("weight_kg must be within [%d, %d]", MinWeightKg, MaxWeightKg)
	}
	if !a.ActivityLevel.Valid() {
		return domain.ValidationError("unknown activity_level %q", a.ActivityLevel)
	}
	if !a.GoalType.Valid() {
		return domain.ValidationError("unknown goal_type %q", a.GoalType)
	}
	if a.TargetWeightKg != nil && (*a.TargetWeightKg < MinWeightKg || *a.TargetWeightKg > MaxWeightKg) {
		return domain.ValidationError("target_weight_kg must be within [%d, %d]", MinWeightKg, MaxWeightKg)
	}
	return nil
}

func New(userID string, attrs Attributes, now time.Time) (*Profile, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	p := &Profile{
		UserID:    userID,
		CreatedAt: now,
	}
	p.apply(attrs, now)
	return p, nil
}

// Update replaces the user-owned attributes. Derived values become stale
// until SetDerived is called.
func (p *Profile) Update(attrs Attributes, now time.Time) error {
	if err := attrs.Validate(); err != nil {
		return err
	}
	p.apply(attrs, now)
	return nil
}

// BodyInRange reports whether a weight and height pair can be stored on a
// profile.
func BodyInRange(weightKg, heightCm float64) bool {
	return weightKg >= MinWeightKg && weightKg <= MaxWeightKg &&
		heightCm >= MinHeightCm && heightCm <= MaxHeightCm
}

// SyncBody copies the newest biometric observation onto the profile.
func (p *Profile) SyncBody(weightKg, heightCm float64, now time.Time) error {
	attrs := p.Attributes()
	attrs.WeightKg = weightKg
	attrs.HeightCm = heightCm
	return p.Update(attrs, now)
}

func (p *Profile) Attributes() Attributes {
	return Attributes{
		DateOfBirth:    p.DateOfBirth,
		Gender:         p.Gender,
		HeightCm:       p.HeightCm,
		WeightKg:       p.WeightKg,
		ActivityLevel:  p.ActivityLevel,
		GoalType:       p.GoalType,
		TargetWeightKg: p.TargetWeightKg,
	}
}

func (p *Profile) SetDerived(d Derived) {
	p.BMI = d.BMI
	p.BMR = d.BMR
	p.TDEE = d.TDEE
	p.TargetCalories = d.TargetCalories
	p.PushEvent(&SavedEvent{
		At:             p.UpdatedAt,
		UserID:         p.UserID,
		TargetCalories: d.TargetCalories,
	})
}

func (p *Profile) Derived() Derived {
	return Derived{
		BMI:            p.BMI,
		BMR:            p.BMR,
		TDEE:           p.TDEE,
		TargetCalories: p.TargetCalories,
	}
}

func (p *Profile) ID() string {
	return p.UserID
}

func (p *Profile) apply(attrs Attributes, now time.Time) {
	p.DateOfBirth = domain.Date(attrs.DateOfBirth)
	p.Gender = attrs.Gender
	p.HeightCm = attrs.HeightCm
	p.WeightKg = attrs.WeightKg
	p.ActivityLevel = attrs.ActivityLevel
	p.GoalType = attrs.GoalType
	p.TargetWeightKg = attrs.TargetWeightKg
	p.UpdatedAt = now
}

type SavedEvent struct {
	At             time.Time
	UserID         string
	TargetCalories float64
}

func (e *SavedEvent) Type() string {
	return EventSaved
}

func (e *SavedEvent) PublishedAt() time.Time {
	return e.At
}
