package goal

import (
	"github.com/burenotti/go_health_tracker/internal/domain"
	"time"
)

// Goal is an explicit daily intake goal chosen by the user. When a user has
// none, Default applies.
type Goal struct {
	UserID    string
	Calories  float64
	ProteinG  float64
	CarbsG    float64
	FatG      float64
	UpdatedAt time.Time
}

type Defaults struct {
	Calories float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

var DefaultValues = Defaults{
	Calories: 2000,
	ProteinG: 150,
	CarbsG:   200,
	FatG:     65,
}

func New(userID string, calories, proteinG, carbsG, fatG float64, now time.Time) (*Goal, error) {
	if calories < 0 || proteinG < 0 || carbsG < 0 || fatG < 0 {
		return nil, domain.ValidationError("goal values must be non-negative")
	}
	return &Goal{
		UserID:    userID,
		Calories:  calories,
		ProteinG:  proteinG,
		CarbsG:    carbsG,
		FatG:      fatG,
		UpdatedAt: now,
	}, nil
}

// Default returns the goal applied to users that never set one.
func Default(userID string, d Defaults) *Goal {
	return &Goal{
		UserID:   userID,
		Calories: d.Calories,
		ProteinG: d.ProteinG,
		CarbsG:   d.CarbsG,
		FatG:     d.FatG,
	}
}

// OrDefault is the MissingGoalDefault recovery: a nil goal is replaced by
// the configured defaults instead of failing.
func OrDefault(g *Goal, userID string, d Defaults) (*Goal, bool) {
	if g != nil {
		return g, false
	}
	return Default(userID, d), true
}
