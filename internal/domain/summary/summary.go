package summary

import (
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/exerciselog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"time"
)

type DailySummary struct {
	Date             time.Time
	CaloriesConsumed float64
	CaloriesBurned   float64
	NetCalories      float64
	ProteinG         float64
	CarbsG           float64
	FatG             float64
	FiberG           float64
	FoodEntries      int
	ExerciseEntries  int
}

// Summarize folds the entries logged on date into one summary. Entries for
// other dates are ignored. The result depends only on its arguments.
func Summarize(date time.Time, foods []*foodlog.Entry, exercises []*exerciselog.Entry) DailySummary {
	day := domain.Date(date)
	s := DailySummary{Date: day}

	for _, e := range foods {
		if !e.Date.Equal(day) {
			continue
		}
		s.FoodEntries++
		s.CaloriesConsumed += e.Totals.Calories
		s.ProteinG += e.Totals.Protein
		s.CarbsG += e.Totals.Carbs
		s.FatG += e.Totals.Fat
		s.FiberG += e.Totals.Fiber
	}

	for _, e := range exercises {
		if !e.Date.Equal(day) {
			continue
		}
		s.ExerciseEntries++
		s.CaloriesBurned += e.Metrics.TotalCaloriesBurned
	}

	s.NetCalories = s.CaloriesConsumed - s.CaloriesBurned
	return s
}

// SummarizeRange returns one summary per calendar day in [from, to].
func SummarizeRange(from, to time.Time, foods []*foodlog.Entry, exercises []*exerciselog.Entry) []DailySummary {
	from, to = domain.Date(from), domain.Date(to)
	if to.Before(from) {
		return nil
	}

	foodsByDay := make(map[time.Time][]*foodlog.Entry)
	for _, e := range foods {
		foodsByDay[e.Date] = append(foodsByDay[e.Date], e)
	}
	exercisesByDay := make(map[time.Time][]*exerciselog.Entry)
	for _, e := range exercises {
		exercisesByDay[e.Date] = append(exercisesByDay[e.Date], e)
	}

	var days []DailySummary
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, Summarize(d, foodsByDay[d], exercisesByDay[d]))
	}
	return days
}
