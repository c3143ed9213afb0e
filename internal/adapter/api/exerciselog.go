package api

import (
	exerciselogapp "github.com/burenotti/go_health_tracker/internal/app/exerciselog"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/exerciselog"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"time"
)

func (s *Server) MountExerciseLog() {
	loginRequired := LoginRequired(s.authorizer)

	routes := s.handler.Group("/exercise-log", loginRequired)
	routes.POST("", s.CreateExerciseEntry)
	routes.GET("", s.ListExerciseEntries)
	routes.GET("/:entry_id", s.GetExerciseEntry)
	routes.PUT("/:entry_id/sets", s.UpdateExerciseSets)
	routes.DELETE("/:entry_id", s.DeleteExerciseEntry)
}

func (s *Server) getExerciseLogUoW() *unitofwork.UnitOfWork[*exerciselogapp.AtomicContext] {
	return newUoW(s, exerciselogapp.NewAtomicContext, exerciselogapp.NewMemoryAtomicContext)
}

type ExerciseSetModel struct {
	ExerciseID     string   `json:"exercise_id"`
	Reps           *int     `json:"reps,omitempty"`
	WeightKg       *float64 `json:"weight_kg,omitempty"`
	DurationMin    float64  `json:"duration_min"`
	CaloriesBurned float64  `json:"calories_burned"`
}

type ExerciseMetricsModel struct {
	TotalVolume         float64 `json:"total_volume"`
	TotalDuration       float64 `json:"total_duration"`
	TotalCaloriesBurned float64 `json:"total_calories_burned"`
}

type ExerciseEntryResponse struct {
	EntryID   string               `json:"entry_id"`
	Date      string               `json:"date"`
	Sets      []ExerciseSetModel   `json:"sets"`
	Metrics   ExerciseMetricsModel `json:"metrics"`
	Version   int                  `json:"version"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func exerciseEntryResponse(e *exerciselog.Entry) ExerciseEntryResponse {
	return ExerciseEntryResponse{
		EntryID: e.ID,
		Date:    domain.FormatDate(e.Date),
		Sets: lo.Map(e.Sets, func(set exerciselog.Set, _ int) ExerciseSetModel {
			return ExerciseSetModel{
				ExerciseID:     set.ExerciseID,
				Reps:           set.Reps,
				WeightKg:       set.WeightKg,
				DurationMin:    set.DurationMin,
				CaloriesBurned: set.CaloriesBurned,
			}
		}),
		Metrics: ExerciseMetricsModel{
			TotalVolume:         e.Metrics.TotalVolume,
			TotalDuration:       e.Metrics.TotalDuration,
			TotalCaloriesBurned: e.Metrics.TotalCaloriesBurned,
		},
		Version:   e.Version,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

type ExerciseSetRequest struct {
	ExerciseID     string   `json:"exercise_id" validate:"required"`
	Reps           *int     `json:"reps,omitempty" validate:"omitempty,gte=0"`
	WeightKg       *float64 `json:"weight_kg,omitempty" validate:"omitempty,gte=0"`
	DurationMin    float64  `json:"duration_min" validate:"gte=0"`
	CaloriesBurned *float64 `json:"calories_burned,omitempty" validate:"omitempty,gte=0"`
}

func exerciseSetInputs(sets []ExerciseSetRequest) []exerciselogapp.SetInput {
	return lo.Map(sets, func(set ExerciseSetRequest, _ int) exerciselogapp.SetInput {
		return exerciselogapp.SetInput{
			ExerciseID: set.ExerciseID,
			SetInput: exerciselog.SetInput{
				Reps:           set.Reps,
				WeightKg:       set.WeightKg,
				DurationMin:    set.DurationMin,
				CaloriesBurned: set.CaloriesBurned,
			},
		}
	})
}

type CreateExerciseEntryRequest struct {
	Date string               `json:"date"`
	Sets []ExerciseSetRequest `json:"sets" validate:"required,min=1,dive"`
}

func (s *Server) CreateExerciseEntry(c echo.Context) error {
	var req CreateExerciseEntryRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	date, err := s.dateOrToday(req.Date)
	if err != nil {
		return s.fail(c, err)
	}

	e, err := s.exerciseLogService.CreateEntry(c.Request().Context(), s.getExerciseLogUoW(), currentUserID(c), date, exerciseSetInputs(req.Sets))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, exerciseEntryResponse(e))
}

func (s *Server) ListExerciseEntries(c echo.Context) error {
	var req ListEntriesRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	date, err := s.dateOrToday(req.Date)
	if err != nil {
		return s.fail(c, err)
	}

	entries, err := s.exerciseLogService.ListByDate(c.Request().Context(), s.getExerciseLogUoW(), currentUserID(c), date)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, lo.Map(entries, func(e *exerciselog.Entry, _ int) ExerciseEntryResponse {
		return exerciseEntryResponse(e)
	}))
}

func (s *Server) GetExerciseEntry(c echo.Context) error {
	var req EntryRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	e, err := s.exerciseLogService.GetEntry(c.Request().Context(), s.getExerciseLogUoW(), currentUserID(c), req.EntryID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, exerciseEntryResponse(e))
}

type UpdateExerciseSetsRequest struct {
	EntryID string               `param:"entry_id" validate:"required"`
	Sets    []ExerciseSetRequest `json:"sets" validate:"required,min=1,dive"`
	Version *int                 `json:"version,omitempty"`
}

func (s *Server) UpdateExerciseSets(c echo.Context) error {
	var req UpdateExerciseSetsRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	e, err := s.exerciseLogService.UpdateSets(
		c.Request().Context(),
		s.getExerciseLogUoW(),
		currentUserID(c),
		req.EntryID,
		exerciseSetInputs(req.Sets),
		req.Version,
	)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, exerciseEntryResponse(e))
}

func (s *Server) DeleteExerciseEntry(c echo.Context) error {
	var req DeleteEntryRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	version, err := req.expectedVersion()
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.exerciseLogService.DeleteEntry(c.Request().Context(), s.getExerciseLogUoW(), currentUserID(c), req.EntryID, version); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
