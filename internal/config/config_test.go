package config_test

import (
	"errors"
	"github.com/burenotti/go_health_tracker/internal/config"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
app:
  env: dev
  timezone: Europe/Moscow
db:
  driver: memory
jwt:
  secret: test-secret
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Env != config.Development || cfg.DB.Driver != config.Memory {
		t.Fatalf("unexpected app/db config %+v %+v", cfg.App, cfg.DB)
	}
	if cfg.Server.Port != 8080 || cfg.Server.ReadTimeout != 10*time.Second {
		t.Fatalf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.JWT.AccessTokenTTL != 2*time.Hour {
		t.Fatalf("unexpected token ttl %v", cfg.JWT.AccessTokenTTL)
	}

	p := cfg.DayPolicy()
	if p.MinFoodEntries != 2 || p.MinTargetRatio != 0.5 || p.MaxTargetRatio != 1.5 {
		t.Fatalf("unexpected policy %+v", p)
	}
	if d := cfg.GoalDefaults(); d.Calories != 2000 || d.ProteinG != 150 || d.CarbsG != 200 || d.FatG != 65 {
		t.Fatalf("unexpected goal defaults %+v", d)
	}
	if cfg.WeekDays() != 7 {
		t.Fatalf("expected 7 week days, got %d", cfg.WeekDays())
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.String() != "Europe/Moscow" {
		t.Fatalf("unexpected location %s", loc)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("POLICY_MIN_FOOD_ENTRIES", "3")
	t.Setenv("SERVER_PORT", "9090")

	path := writeFile(t, "config.yaml", `
app:
  env: prod
db:
  driver: postgres
  dsn: postgres://localhost/health
jwt:
  secret: test-secret
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Policy.MinFoodEntries != 3 || cfg.Server.Port != 9090 {
		t.Fatalf("environment was not applied: %+v %+v", cfg.Policy, cfg.Server)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown env", "app: {env: staging}\ndb: {driver: memory}\njwt: {secret: s}\n"},
		{"unknown driver", "app: {env: dev}\ndb: {driver: mysql}\njwt: {secret: s}\n"},
		{"postgres without dsn", "app: {env: dev}\ndb: {driver: postgres}\njwt: {secret: s}\n"},
		{"unknown timezone", "app: {env: dev, timezone: Mars/Olympus}\ndb: {driver: memory}\njwt: {secret: s}\n"},
		{"inverted ratios", "app: {env: dev}\ndb: {driver: memory}\njwt: {secret: s}\npolicy: {min_target_ratio: 2, max_target_ratio: 1}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, "config.yaml", tt.content))
			if !errors.Is(err, config.ErrConfigNotLoaded) {
				t.Fatalf("expected ErrConfigNotLoaded, got %v", err)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "catalog.yaml", `
foods:
  - id: oats
    name: Oats
    serving_size_g: 40
    calories: 380
    protein: 13
exercises:
  - id: run
    name: Running
    met: 8
`)

	c, err := config.LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	foods := c.FoodList()
	if len(foods) != 1 || foods[0].FoodID != "oats" || foods[0].Per100g.Calories != 380 || foods[0].ServingSizeG != 40 {
		t.Fatalf("unexpected foods %+v", foods)
	}
	exercises := c.ExerciseList()
	if len(exercises) != 1 || exercises[0].MET != 8 {
		t.Fatalf("unexpected exercises %+v", exercises)
	}
}

func TestShippedConfigUsesPostgres(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "config", "config.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DB.Driver != config.Postgres || cfg.DB.DSN == "" {
		t.Fatalf("expected the postgres driver with a dsn, got %+v", cfg.DB)
	}

	c, err := config.LoadCatalog(filepath.Join("..", "..", cfg.DB.CatalogFile))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.FoodList()) == 0 || len(c.ExerciseList()) == 0 {
		t.Fatalf("expected a seeded catalog, got %+v", c)
	}
}
