// Package catalog holds the read-only view of the food and exercise
// reference data. Values are copied onto log items when they are written.
package catalog

import (
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain"
)

var (
	ErrFoodNotFound     = fmt.Errorf("%w: food not found", domain.ErrNotFound)
	ErrExerciseNotFound = fmt.Errorf("%w: exercise not found", domain.ErrNotFound)
)

type Nutrients struct {
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
	Fiber    float64
}

func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Fat:      n.Fat + o.Fat,
		Carbs:    n.Carbs + o.Carbs,
		Fiber:    n.Fiber + o.Fiber,
	}
}

func (n Nutrients) Scale(f float64) Nutrients {
	return Nutrients{
		Calories: n.Calories * f,
		Protein:  n.Protein * f,
		Fat:      n.Fat * f,
		Carbs:    n.Carbs * f,
		Fiber:    n.Fiber * f,
	}
}

type Food struct {
	FoodID       string
	Name         string
	ServingSizeG float64
	Per100g      Nutrients
}

type Exercise struct {
	ExerciseID string
	Name       string
	MET        float64
}
