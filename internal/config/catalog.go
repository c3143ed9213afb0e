package config

import (
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/samber/lo"
)

type FoodSeed struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	ServingSizeG float64 `yaml:"serving_size_g"`
	Calories     float64 `yaml:"calories"`
	Protein      float64 `yaml:"protein"`
	Fat          float64 `yaml:"fat"`
	Carbs        float64 `yaml:"carbs"`
	Fiber        float64 `yaml:"fiber"`
}

type ExerciseSeed struct {
	ID   string  `yaml:"id"`
	Name string  `yaml:"name"`
	MET  float64 `yaml:"met"`
}

// Catalog is the reference data loaded into the memory driver. Nutrients
// are per 100 g.
type Catalog struct {
	Foods     []FoodSeed     `yaml:"foods"`
	Exercises []ExerciseSeed `yaml:"exercises"`
}

func LoadCatalog(filePath string) (*Catalog, error) {
	c := &Catalog{}
	if err := cleanenv.ReadConfig(filePath, c); err != nil {
		return nil, configNotLoadedErr("catalog not loaded: %w", err)
	}
	return c, nil
}

func (c *Catalog) FoodList() []catalog.Food {
	return lo.Map(c.Foods, func(f FoodSeed, _ int) catalog.Food {
		return catalog.Food{
			FoodID:       f.ID,
			Name:         f.Name,
			ServingSizeG: f.ServingSizeG,
			Per100g: catalog.Nutrients{
				Calories: f.Calories,
				Protein:  f.Protein,
				Fat:      f.Fat,
				Carbs:    f.Carbs,
				Fiber:    f.Fiber,
			},
		}
	})
}

func (c *Catalog) ExerciseList() []catalog.Exercise {
	return lo.Map(c.Exercises, func(e ExerciseSeed, _ int) catalog.Exercise {
		return catalog.Exercise{
			ExerciseID: e.ID,
			Name:       e.Name,
			MET:        e.MET,
		}
	})
}
