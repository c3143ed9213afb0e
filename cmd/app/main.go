package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"github.com/burenotti/go_health_tracker/internal/adapter/api"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/memstorage"
	"github.com/burenotti/go_health_tracker/internal/app/authapp"
	biometricapp "github.com/burenotti/go_health_tracker/internal/app/biometric"
	exerciselogapp "github.com/burenotti/go_health_tracker/internal/app/exerciselog"
	foodlogapp "github.com/burenotti/go_health_tracker/internal/app/foodlog"
	"github.com/burenotti/go_health_tracker/internal/app/messagebus"
	profileapp "github.com/burenotti/go_health_tracker/internal/app/profile"
	streakapp "github.com/burenotti/go_health_tracker/internal/app/streak"
	summaryapp "github.com/burenotti/go_health_tracker/internal/app/summary"
	"github.com/burenotti/go_health_tracker/internal/config"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/burenotti/go_health_tracker/internal/domain/exerciselog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
	"github.com/burenotti/go_health_tracker/internal/domain/streak"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/leporo/sqlf"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	logger := initLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		panic(err)
	}

	bus := messagebus.New(logger)
	registerEventLogging(bus, logger)
	defer bus.Close()

	dbOption, closeDB := initStorage(cfg, logger)
	defer closeDB()

	policy := cfg.DayPolicy()
	defaults := cfg.GoalDefaults()

	server := api.NewServer(
		api.Addr(cfg.Server.Host, cfg.Server.Port),
		api.Timeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout),
		api.Logger(logger),
		api.Location(loc),
		dbOption,
		api.Authorizer(authapp.NewAuthorizer(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)),
		api.MessageBus(bus),
		api.ProfileService(profileapp.New(logger, defaults)),
		api.BiometricService(biometricapp.New(logger)),
		api.FoodLogService(foodlogapp.New(logger)),
		api.ExerciseLogService(exerciselogapp.New(logger)),
		api.SummaryService(summaryapp.New(logger, policy, defaults, loc)),
		api.StreakService(streakapp.New(logger, policy, defaults, loc, cfg.WeekDays())),
	)

	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error)

	go func() {
		defer close(errCh)
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server was not shutdown gracefully", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server closed with unexpected error", "error", err)
			}
		}
	}
	logger.Info("server shutdown")
}

func initLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	switch cfg.App.Env {
	case config.Development:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		})
	case config.Production:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelInfo,
		})
	default:
		panic("invalid env")
	}

	return slog.New(handler)
}

// initStorage opens the configured driver and returns the matching server
// option with its cleanup.
func initStorage(cfg *config.Config, logger *slog.Logger) (api.Option, func()) {
	switch cfg.DB.Driver {
	case config.Memory:
		store := memstorage.New()
		if cfg.DB.CatalogFile != "" {
			c, err := config.LoadCatalog(cfg.DB.CatalogFile)
			if err != nil {
				panic(err)
			}
			for _, f := range c.FoodList() {
				store.AddFood(f)
			}
			for _, e := range c.ExerciseList() {
				store.AddExercise(e)
			}
			logger.Info("catalog loaded",
				slog.Int("foods", len(c.Foods)),
				slog.Int("exercises", len(c.Exercises)),
			)
		}
		logger.Warn("using in-memory storage, data is lost on shutdown")
		return api.MemoryStore(store), func() {}
	default:
		sqlf.SetDialect(sqlf.PostgreSQL)

		db, err := sql.Open("pgx", cfg.DB.DSN)
		if err != nil {
			panic("failed to connect database: " + err.Error())
		}
		return api.DBContext(&storage.DB{DB: db}), func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}
	}
}

func registerEventLogging(bus *messagebus.MessageBus, logger *slog.Logger) {
	logEvent := func(event domain.Event) error {
		logger.Info("domain event",
			slog.String("type", event.Type()),
			slog.Time("at", event.PublishedAt()),
		)
		return nil
	}
	for _, eventType := range []string{
		profile.EventSaved,
		biometric.EventRecorded,
		foodlog.EventEntryCreated,
		foodlog.EventEntryUpdated,
		foodlog.EventEntryDeleted,
		exerciselog.EventEntryCreated,
		exerciselog.EventEntryUpdated,
		exerciselog.EventEntryDeleted,
	} {
		bus.Register(eventType, logEvent)
	}

	bus.Register(streak.EventLongestRaised, func(event domain.Event) error {
		e, ok := event.(*streak.LongestRaisedEvent)
		if !ok {
			return nil
		}
		logger.Info("longest streak raised",
			slog.String("user_id", e.UserID),
			slog.Int("longest", e.Longest),
		)
		return nil
	})
}
