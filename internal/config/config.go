package config

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain/goal"
	"github.com/burenotti/go_health_tracker/internal/domain/streak"
	"github.com/burenotti/go_health_tracker/internal/domain/summary"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"io/fs"
	"time"
	_ "time/tzdata"
)

var (
	ErrConfigNotLoaded = errors.New("config not loaded")
)

type Environment string

const (
	Production  Environment = "prod"
	Development Environment = "dev"
)

func (e *Environment) SetValue(s string) error {
	*e = Environment(s)
	if *e != Production && *e != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed`)
	}
	return nil
}

type Driver string

const (
	Postgres Driver = "postgres"
	Memory   Driver = "memory"
)

func (d *Driver) SetValue(s string) error {
	*d = Driver(s)
	if *d != Postgres && *d != Memory {
		return configNotLoadedErr(`only "postgres" and "memory" drivers are allowed`)
	}
	return nil
}

type Config struct {
	App struct {
		Env      Environment `yaml:"env" env:"ENV" env-required:""`
		Timezone string      `yaml:"timezone" env:"TIMEZONE" env-default:"UTC"`
	} `yaml:"app" env-prefix:"APP_" env-required:""`

	Server struct {
		Host            string        `yaml:"host" env:"HOST" env-default:"localhost"`
		Port            int           `yaml:"port" env:"PORT" env-default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" env-default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" env-default:"10s"`
		IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" env-default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	} `yaml:"server" env-prefix:"SERVER_"`

	DB struct {
		Driver      Driver `yaml:"driver" env:"DRIVER" env-default:"postgres"`
		DSN         string `yaml:"dsn" env:"DSN"`
		CatalogFile string `yaml:"catalog_file" env:"CATALOG_FILE"`
	} `yaml:"db" env-prefix:"DB_"`

	JWT struct {
		AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"2h"`
		Secret         string        `yaml:"secret" env:"SECRET" env-required:""`
	} `yaml:"jwt" env-prefix:"JWT_" env-required:""`

	Policy struct {
		MinFoodEntries int     `yaml:"min_food_entries" env:"MIN_FOOD_ENTRIES" env-default:"2"`
		MinTargetRatio float64 `yaml:"min_target_ratio" env:"MIN_TARGET_RATIO" env-default:"0.5"`
		MaxTargetRatio float64 `yaml:"max_target_ratio" env:"MAX_TARGET_RATIO" env-default:"1.5"`
	} `yaml:"policy" env-prefix:"POLICY_"`

	Defaults struct {
		Calories float64 `yaml:"calories" env:"CALORIES" env-default:"2000"`
		ProteinG float64 `yaml:"protein_g" env:"PROTEIN_G" env-default:"150"`
		CarbsG   float64 `yaml:"carbs_g" env:"CARBS_G" env-default:"200"`
		FatG     float64 `yaml:"fat_g" env:"FAT_G" env-default:"65"`
	} `yaml:"defaults" env-prefix:"DEFAULTS_"`

	Streak struct {
		WeekDays int `yaml:"week_days" env:"WEEK_DAYS" env-default:"7"`
	} `yaml:"streak" env-prefix:"STREAK_"`
}

// Load reads filePath and overlays the environment. Variables from a .env
// file in the working directory take part in the overlay when it exists.
func Load(filePath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, configNotLoadedErr("failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := cleanenv.ReadConfig(filePath, cfg); err != nil {
		return nil, configNotLoadedErr("config not loaded: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, configNotLoadedErr("invalid config: %w", err)
	}

	return cfg, nil
}

func MustLoad(filePath string) *Config {
	cfg, err := Load(filePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.App.Env != Production && c.App.Env != Development {
		return fmt.Errorf("unknown app.env %q", c.App.Env)
	}
	if c.DB.Driver != Postgres && c.DB.Driver != Memory {
		return fmt.Errorf("unknown db.driver %q", c.DB.Driver)
	}
	if c.DB.Driver == Postgres && c.DB.DSN == "" {
		return errors.New("db.dsn is required for the postgres driver")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if err := c.DayPolicy().Validate(); err != nil {
		return err
	}
	if d := c.Defaults; d.Calories < 0 || d.ProteinG < 0 || d.CarbsG < 0 || d.FatG < 0 {
		return errors.New("goal defaults must be non-negative")
	}
	if c.Streak.WeekDays < 1 {
		return fmt.Errorf("streak.week_days must be positive, got %d", c.Streak.WeekDays)
	}
	return nil
}

// Location is the calendar used to decide what "today" is.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}

func (c *Config) DayPolicy() summary.Policy {
	return summary.Policy{
		MinFoodEntries: c.Policy.MinFoodEntries,
		MinTargetRatio: c.Policy.MinTargetRatio,
		MaxTargetRatio: c.Policy.MaxTargetRatio,
	}
}

func (c *Config) GoalDefaults() goal.Defaults {
	return goal.Defaults{
		Calories: c.Defaults.Calories,
		ProteinG: c.Defaults.ProteinG,
		CarbsG:   c.Defaults.CarbsG,
		FatG:     c.Defaults.FatG,
	}
}

func (c *Config) WeekDays() int {
	if c.Streak.WeekDays <= 0 {
		return streak.DefaultWeekDays
	}
	return c.Streak.WeekDays
}

func configNotLoadedErr(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrConfigNotLoaded)
}
