package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/memstorage"
	"github.com/burenotti/go_health_tracker/internal/app/authapp"
	biometricapp "github.com/burenotti/go_health_tracker/internal/app/biometric"
	exerciselogapp "github.com/burenotti/go_health_tracker/internal/app/exerciselog"
	foodlogapp "github.com/burenotti/go_health_tracker/internal/app/foodlog"
	profileapp "github.com/burenotti/go_health_tracker/internal/app/profile"
	streakapp "github.com/burenotti/go_health_tracker/internal/app/streak"
	summaryapp "github.com/burenotti/go_health_tracker/internal/app/summary"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"log/slog"
	"net/http"
	"time"
)

type Server struct {
	handler            *echo.Echo
	logger             *slog.Logger
	addr               string
	db                 storage.Beginner
	memStore           *memstorage.Store
	location           *time.Location
	authorizer         *authapp.Authorizer
	profileService     *profileapp.Service
	biometricService   *biometricapp.Service
	foodLogService     *foodlogapp.Service
	exerciseLogService *exerciselogapp.Service
	summaryService     *summaryapp.Service
	streakService      *streakapp.Service
	msgBus             unitofwork.MessageBus
	validator          *validator.Validate
}

func NewServer(opt ...Option) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Server.WriteTimeout = 10 * time.Second
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.IdleTimeout = 60 * time.Second
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.MaxHeaderBytes = 4096

	v := validator.New(validator.WithRequiredStructEnabled())

	s := &Server{
		handler:   e,
		logger:    slog.Default(),
		location:  time.UTC,
		validator: v,
	}

	for _, opt := range opt {
		opt(s)
	}

	e.Use(middleware.RequestID())
	e.Use(slogecho.NewWithConfig(s.logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelInfo,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	e.Use(middleware.Recover())
	s.Mount()
	return s
}

func (s *Server) Mount() {
	s.handler.GET("/health", s.Health)

	s.MountProfile()
	s.MountBiometrics()
	s.MountFoodLog()
	s.MountExerciseLog()
	s.MountSummary()
	s.MountStreak()
}

func (s *Server) Start() error {
	return s.handler.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.handler.Shutdown(ctx)
}

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) bind(ctx echo.Context, i interface{}) error {
	if err := ctx.Bind(i); err != nil {
		return fmt.Errorf("bad request")
	}
	if err := s.validator.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("bad request")
		}
		return fmt.Errorf("%s: %s", errs[0].Field(), errs[0].Error())

	}
	return nil
}

// newUoW picks the storage flavour of an application service: the memory
// factory when the server runs on an in-memory store, postgres otherwise.
func newUoW[T unitofwork.AtomicContext](
	s *Server,
	postgres func(context.Context, storage.DBContext) (T, error),
	memory func(*memstorage.Store) func(context.Context, storage.DBContext) (T, error),
) *unitofwork.UnitOfWork[T] {
	newCtx := postgres
	if s.memStore != nil {
		newCtx = memory(s.memStore)
	}
	return unitofwork.New[T](s.db, newCtx, s.msgBus, s.logger)
}

// dateOrToday parses a YYYY-MM-DD request date. An empty value is today in
// the server calendar.
func (s *Server) dateOrToday(raw string) (time.Time, error) {
	if raw == "" {
		return domain.Today(time.Now(), s.location), nil
	}
	return domain.ParseDate(raw)
}
