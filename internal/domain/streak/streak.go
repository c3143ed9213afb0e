package streak

import (
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/summary"
	"time"
)

const (
	EventLongestRaised = "streak.longest_raised"

	DefaultWeekDays = 7
)

type Day struct {
	Date   time.Time
	Status summary.Status
}

type Result struct {
	Current            int
	Longest            int
	LastQualifyingDate *time.Time
	Week               []Day
}

// StatusFunc classifies one calendar day.
type StatusFunc func(day time.Time) summary.Status

// Evaluate recomputes the streak from scratch for history starting at from.
// The current run ends today, or yesterday when today has no log yet, and
// stops at the first gray day. The week is the trailing weekDays days,
// oldest first, classified by the same status function.
func Evaluate(from, today time.Time, weekDays int, status StatusFunc) Result {
	from, today = domain.Date(from), domain.Date(today)
	if weekDays <= 0 {
		weekDays = DefaultWeekDays
	}

	var r Result
	run := 0
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		if !status(d).Logged() {
			run = 0
			continue
		}
		run++
		if run > r.Longest {
			r.Longest = run
		}
		last := d
		r.LastQualifyingDate = &last
	}

	start := today
	if !status(today).Logged() {
		start = today.AddDate(0, 0, -1)
	}
	for d := start; !d.Before(from) && status(d).Logged(); d = d.AddDate(0, 0, -1) {
		r.Current++
	}

	r.Week = make([]Day, 0, weekDays)
	for i := weekDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		r.Week = append(r.Week, Day{Date: d, Status: status(d)})
	}
	return r
}

// State is the stored streak of a user. It only changes through Apply.
type State struct {
	domain.Aggregate
	UserID             string
	CurrentStreak      int
	LongestStreak      int
	LastQualifyingDate *time.Time
	UpdatedAt          time.Time
}

func NewState(userID string) *State {
	return &State{UserID: userID}
}

// Apply stores a fresh evaluation. LongestStreak never decreases, even when
// the evaluated history is shorter than what was seen before. It reports
// whether the stored state changed.
func (s *State) Apply(r Result, now time.Time) bool {
	changed := s.CurrentStreak != r.Current || !sameDate(s.LastQualifyingDate, r.LastQualifyingDate)
	s.CurrentStreak = r.Current
	s.LastQualifyingDate = r.LastQualifyingDate

	longest := max(r.Longest, r.Current)
	if longest > s.LongestStreak {
		s.LongestStreak = longest
		changed = true
		s.PushEvent(&LongestRaisedEvent{
			At:      now,
			UserID:  s.UserID,
			Longest: longest,
		})
	}
	if changed {
		s.UpdatedAt = now
	}
	return changed
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

type LongestRaisedEvent struct {
	At      time.Time
	UserID  string
	Longest int
}

func (e *LongestRaisedEvent) Type() string {
	return EventLongestRaised
}

func (e *LongestRaisedEvent) PublishedAt() time.Time {
	return e.At
}
