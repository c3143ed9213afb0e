package summary_test

import (
	"github.com/burenotti/go_health_tracker/internal/domain/summary"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	policy := summary.DefaultPolicy
	today := day

	cases := []struct {
		name   string
		s      summary.DailySummary
		target float64
		want   summary.Status
	}{
		{
			name: "nothing logged",
			s:    summary.DailySummary{Date: day},
			want: summary.Gray,
		},
		{
			name:   "future day",
			s:      summary.DailySummary{Date: day.AddDate(0, 0, 1), CaloriesConsumed: 2000, FoodEntries: 3},
			target: 2000,
			want:   summary.Gray,
		},
		{
			name: "exercise only",
			s:    summary.DailySummary{Date: day, CaloriesBurned: 300, ExerciseEntries: 1},
			want: summary.Yellow,
		},
		{
			name:   "too few food entries",
			s:      summary.DailySummary{Date: day, CaloriesConsumed: 2000, FoodEntries: 1},
			target: 2000,
			want:   summary.Yellow,
		},
		{
			name:   "far below target",
			s:      summary.DailySummary{Date: day, CaloriesConsumed: 900, FoodEntries: 3},
			target: 2000,
			want:   summary.Yellow,
		},
		{
			name:   "far above target",
			s:      summary.DailySummary{Date: day, CaloriesConsumed: 3100, FoodEntries: 3},
			target: 2000,
			want:   summary.Yellow,
		},
		{
			name:   "within target",
			s:      summary.DailySummary{Date: day, CaloriesConsumed: 1800, FoodEntries: 3},
			target: 2000,
			want:   summary.Green,
		},
		{
			name:   "ratio boundary is inclusive",
			s:      summary.DailySummary{Date: day, CaloriesConsumed: 1000, FoodEntries: 2},
			target: 2000,
			want:   summary.Green,
		},
		{
			name: "no target skips ratio check",
			s:    summary.DailySummary{Date: day, CaloriesConsumed: 5000, FoodEntries: 2},
			want: summary.Green,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.Classify(tc.s, tc.target, today); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()
	if err := summary.DefaultPolicy.Validate(); err != nil {
		t.Fatalf("default policy rejected: %v", err)
	}
	if err := (summary.Policy{MinFoodEntries: 0, MaxTargetRatio: 1}).Validate(); err == nil {
		t.Fatalf("expected error for zero min food entries")
	}
	if err := (summary.Policy{MinFoodEntries: 1, MinTargetRatio: 2, MaxTargetRatio: 1}).Validate(); err == nil {
		t.Fatalf("expected error for inverted ratio range")
	}
}
