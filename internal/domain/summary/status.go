package summary

import (
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"time"
)

type Status string

const (
	Green  Status = "green"
	Yellow Status = "yellow"
	Gray   Status = "gray"
)

// Logged reports whether the day continues a streak.
func (s Status) Logged() bool {
	return s == Green || s == Yellow
}

// Policy is the adherence table shared by the daily summary and the streak
// engine. A day is green when food was logged, at least MinFoodEntries food
// entries exist and consumption is within [MinTargetRatio, MaxTargetRatio]
// of the calorie target. Any other day with a log is yellow.
type Policy struct {
	MinFoodEntries int
	MinTargetRatio float64
	MaxTargetRatio float64
}

var DefaultPolicy = Policy{
	MinFoodEntries: 2,
	MinTargetRatio: 0.5,
	MaxTargetRatio: 1.5,
}

func (p Policy) Validate() error {
	if p.MinFoodEntries < 1 {
		return fmt.Errorf("min food entries must be at least 1, got %d", p.MinFoodEntries)
	}
	if p.MinTargetRatio < 0 || p.MaxTargetRatio < p.MinTargetRatio {
		return fmt.Errorf("invalid target ratio range [%.2f, %.2f]", p.MinTargetRatio, p.MaxTargetRatio)
	}
	return nil
}

// Classify returns the status of s. Days after today are always gray.
// A non-positive targetCalories disables the ratio check.
func (p Policy) Classify(s DailySummary, targetCalories float64, today time.Time) Status {
	if s.Date.After(domain.Date(today)) {
		return Gray
	}
	if s.FoodEntries == 0 && s.ExerciseEntries == 0 {
		return Gray
	}
	if s.CaloriesConsumed <= 0 || s.FoodEntries < p.MinFoodEntries {
		return Yellow
	}
	if targetCalories > 0 {
		ratio := s.CaloriesConsumed / targetCalories
		if ratio < p.MinTargetRatio || ratio > p.MaxTargetRatio {
			return Yellow
		}
	}
	return Green
}
