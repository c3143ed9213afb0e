package energy

import (
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/goal"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
	"math"
	"time"
)

const daysPerYear = 365.25

// activityFactors is the single source of truth for valid activity levels.
var activityFactors = map[profile.ActivityLevel]float64{
	profile.Sedentary:  1.2,
	profile.Light:      1.375,
	profile.Moderate:   1.55,
	profile.Active:     1.725,
	profile.VeryActive: 1.9,
}

var goalAdjustments = map[profile.GoalType]float64{
	profile.LoseWeight:  -500,
	profile.Maintain:    0,
	profile.GainWeight:  300,
	profile.BuildMuscle: 500,
}

// Target is the energy target of a user. TargetCalories is always TDEE plus
// the goal type adjustment. GoalCalories is the calorie value of an explicit
// goal, zero when the user has none.
type Target struct {
	BMR            float64
	TDEE           float64
	TargetCalories float64
	GoalCalories   float64
	ProteinG       float64
	CarbsG         float64
	FatG           float64
	// DefaultGoal is set when macros came from the configured defaults.
	DefaultGoal bool
}

// DailyCalories is the budget a day is judged against: the explicit goal
// calories when set, the computed target otherwise.
func (t Target) DailyCalories() float64 {
	if t.GoalCalories > 0 {
		return t.GoalCalories
	}
	return t.TargetCalories
}

// Age is the number of whole years between dob and now, counting a year as
// 365.25 days.
func Age(dob, now time.Time) (int, error) {
	if dob.IsZero() {
		return 0, domain.ValidationError("date_of_birth is required")
	}
	days := domain.Date(now).Sub(domain.Date(dob)).Hours() / 24
	age := int(math.Floor(days / daysPerYear))
	if age <= 0 {
		return 0, domain.ComputationError("age must be positive, got %d", age)
	}
	return age, nil
}

// BMR uses Mifflin-St Jeor. Female and other share the -161 constant.
func BMR(gender profile.Gender, weightKg, heightCm float64, age int) (float64, error) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, domain.ComputationError("weight and height must be positive")
	}
	if age <= 0 {
		return 0, domain.ComputationError("age must be positive, got %d", age)
	}
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch gender {
	case profile.Male:
		bmr += 5
	case profile.Female, profile.Other:
		bmr -= 161
	default:
		return 0, domain.ValidationError("unknown gender %q", gender)
	}
	return bmr, nil
}

func TDEE(bmr float64, level profile.ActivityLevel) (float64, error) {
	factor, ok := activityFactors[level]
	if !ok {
		return 0, domain.ValidationError("unknown activity_level %q", level)
	}
	return bmr * factor, nil
}

func TargetCalories(tdee float64, goalType profile.GoalType) (float64, error) {
	adj, ok := goalAdjustments[goalType]
	if !ok {
		return 0, domain.ValidationError("unknown goal_type %q", goalType)
	}
	return tdee + adj, nil
}

func BMI(weightKg, heightCm float64) (float64, error) {
	if heightCm <= 0 {
		return 0, domain.ComputationError("bmi is undefined for height %.2f", heightCm)
	}
	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) {
		return 0, domain.ComputationError("bmi is undefined for weight %.2f", weightKg)
	}
	return bmi, nil
}

// Calculate derives BMR, TDEE and target calories for p at the given body
// weight. Macros are left zero; see Resolve.
func Calculate(p *profile.Profile, weightKg float64, now time.Time) (Target, error) {
	age, err := Age(p.DateOfBirth, now)
	if err != nil {
		return Target{}, err
	}
	bmr, err := BMR(p.Gender, weightKg, p.HeightCm, age)
	if err != nil {
		return Target{}, err
	}
	tdee, err := TDEE(bmr, p.ActivityLevel)
	if err != nil {
		return Target{}, err
	}
	target, err := TargetCalories(tdee, p.GoalType)
	if err != nil {
		return Target{}, err
	}
	return Target{
		BMR:            bmr,
		TDEE:           tdee,
		TargetCalories: target,
	}, nil
}

// Derive recomputes the profile-level derived fields from the profile's own
// weight and height.
func Derive(p *profile.Profile, now time.Time) (profile.Derived, error) {
	t, err := Calculate(p, p.WeightKg, now)
	if err != nil {
		return profile.Derived{}, err
	}
	bmi, err := BMI(p.WeightKg, p.HeightCm)
	if err != nil {
		return profile.Derived{}, err
	}
	return profile.Derived{
		BMI:            bmi,
		BMR:            t.BMR,
		TDEE:           t.TDEE,
		TargetCalories: t.TargetCalories,
	}, nil
}

// Resolve builds the current target of a user. latestWeightKg, when known,
// overrides the profile weight. Macros and GoalCalories come from g or, when
// g is nil, macros come from the defaults.
func Resolve(p *profile.Profile, latestWeightKg *float64, g *goal.Goal, defaults goal.Defaults, now time.Time) (Target, error) {
	weight := p.WeightKg
	if latestWeightKg != nil {
		weight = *latestWeightKg
	}
	t, err := Calculate(p, weight, now)
	if err != nil {
		return Target{}, err
	}
	g, t.DefaultGoal = goal.OrDefault(g, p.UserID, defaults)
	if !t.DefaultGoal {
		t.GoalCalories = g.Calories
	}
	t.ProteinG = g.ProteinG
	t.CarbsG = g.CarbsG
	t.FatG = g.FatG
	return t, nil
}

// DailyCalories is the calorie budget used to judge a day. Users without a
// profile fall back to their goal or the defaults. A profile the calculator
// rejects takes the same fallback; that error is returned alongside the
// fallback value so callers can report it.
func DailyCalories(p *profile.Profile, latestWeightKg *float64, g *goal.Goal, defaults goal.Defaults, now time.Time) (float64, error) {
	var err error
	if p != nil {
		var t Target
		if t, err = Resolve(p, latestWeightKg, g, defaults, now); err == nil {
			return t.DailyCalories(), nil
		}
	}
	if g != nil && g.Calories > 0 {
		return g.Calories, err
	}
	return defaults.Calories, err
}
