package streak_test

import (
	"github.com/burenotti/go_health_tracker/internal/domain/streak"
	"github.com/burenotti/go_health_tracker/internal/domain/summary"
	"testing"
	"time"
)

var today = time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)

// history maps day offsets from today (0 = today, -1 = yesterday) to a status.
// Missing offsets are gray.
func history(statuses map[int]summary.Status) streak.StatusFunc {
	return func(d time.Time) summary.Status {
		offset := int(d.Sub(today).Hours() / 24)
		if s, ok := statuses[offset]; ok {
			return s
		}
		return summary.Gray
	}
}

func TestEvaluateConsecutiveDays(t *testing.T) {
	t.Parallel()
	status := history(map[int]summary.Status{
		0:  summary.Green,
		-1: summary.Yellow,
		-2: summary.Green,
		-4: summary.Green,
		-5: summary.Green,
		-6: summary.Green,
		-7: summary.Green,
	})

	r := streak.Evaluate(today.AddDate(0, 0, -10), today, 7, status)
	if r.Current != 3 {
		t.Fatalf("expected current streak 3, got %d", r.Current)
	}
	if r.Longest != 4 {
		t.Fatalf("expected longest streak 4, got %d", r.Longest)
	}
	if r.LastQualifyingDate == nil || !r.LastQualifyingDate.Equal(today) {
		t.Fatalf("expected last qualifying date today, got %v", r.LastQualifyingDate)
	}

	if len(r.Week) != 7 {
		t.Fatalf("expected 7 week days, got %d", len(r.Week))
	}
	if !r.Week[0].Date.Equal(today.AddDate(0, 0, -6)) || !r.Week[6].Date.Equal(today) {
		t.Fatalf("week must run oldest to newest, got %v .. %v", r.Week[0].Date, r.Week[6].Date)
	}
	if r.Week[3].Status != summary.Gray || r.Week[5].Status != summary.Yellow {
		t.Fatalf("unexpected week statuses: %+v", r.Week)
	}
}

func TestEvaluateTodayNotLoggedYet(t *testing.T) {
	t.Parallel()
	status := history(map[int]summary.Status{
		-1: summary.Green,
		-2: summary.Green,
	})
	r := streak.Evaluate(today.AddDate(0, 0, -5), today, 7, status)
	if r.Current != 2 {
		t.Fatalf("expected streak to continue from yesterday, got %d", r.Current)
	}
}

func TestEvaluateBrokenStreak(t *testing.T) {
	t.Parallel()
	status := history(map[int]summary.Status{
		-2: summary.Green,
		-3: summary.Green,
	})
	r := streak.Evaluate(today.AddDate(0, 0, -5), today, 7, status)
	if r.Current != 0 {
		t.Fatalf("expected broken streak, got %d", r.Current)
	}
	if r.Longest != 2 {
		t.Fatalf("expected longest 2, got %d", r.Longest)
	}
}

func TestEvaluateStopsAtHistoryStart(t *testing.T) {
	t.Parallel()
	allGreen := func(time.Time) summary.Status { return summary.Green }
	r := streak.Evaluate(today.AddDate(0, 0, -2), today, 0, allGreen)
	if r.Current != 3 || r.Longest != 3 {
		t.Fatalf("expected 3/3, got %d/%d", r.Current, r.Longest)
	}
	if len(r.Week) != streak.DefaultWeekDays {
		t.Fatalf("expected default week length, got %d", len(r.Week))
	}
}

func TestStateApplyKeepsLongestMonotonic(t *testing.T) {
	t.Parallel()
	now := today.Add(10 * time.Hour)
	s := streak.NewState("user-1")

	if !s.Apply(streak.Result{Current: 5, Longest: 5}, now) {
		t.Fatalf("expected first apply to change state")
	}
	if s.LongestStreak != 5 {
		t.Fatalf("expected longest 5, got %d", s.LongestStreak)
	}
	events := s.PopEvents()
	if len(events) != 1 || events[0].Type() != streak.EventLongestRaised {
		t.Fatalf("expected longest raised event, got %v", events)
	}

	// Entries were deleted, history is now shorter.
	s.Apply(streak.Result{Current: 1, Longest: 2}, now)
	if s.LongestStreak != 5 {
		t.Fatalf("longest streak decreased to %d", s.LongestStreak)
	}
	if s.CurrentStreak != 1 {
		t.Fatalf("expected current 1, got %d", s.CurrentStreak)
	}
	if len(s.PopEvents()) != 0 {
		t.Fatalf("no event expected when longest is unchanged")
	}

	if s.Apply(streak.Result{Current: 1, Longest: 2}, now.Add(time.Hour)) {
		t.Fatalf("identical result must not change state")
	}
}
