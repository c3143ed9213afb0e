package api

import (
	streakapp "github.com/burenotti/go_health_tracker/internal/app/streak"
	summaryapp "github.com/burenotti/go_health_tracker/internal/app/summary"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/streak"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
)

func (s *Server) MountSummary() {
	s.handler.GET("/summary/daily", s.GetDailySummary, LoginRequired(s.authorizer))
}

func (s *Server) MountStreak() {
	s.handler.GET("/streak", s.GetStreak, LoginRequired(s.authorizer))
}

func (s *Server) getSummaryUoW() *unitofwork.UnitOfWork[*summaryapp.AtomicContext] {
	return newUoW(s, summaryapp.NewAtomicContext, summaryapp.NewMemoryAtomicContext)
}

func (s *Server) getStreakUoW() *unitofwork.UnitOfWork[*streakapp.AtomicContext] {
	return newUoW(s, streakapp.NewAtomicContext, streakapp.NewMemoryAtomicContext)
}

type DailySummaryRequest struct {
	Date string `query:"date"`
}

type DailySummaryResponse struct {
	Date              string  `json:"date"`
	CaloriesConsumed  float64 `json:"calories_consumed"`
	CaloriesBurned    float64 `json:"calories_burned"`
	NetCalories       float64 `json:"net_calories"`
	ProteinG          float64 `json:"protein_g"`
	CarbsG            float64 `json:"carbs_g"`
	FatG              float64 `json:"fat_g"`
	FiberG            float64 `json:"fiber_g"`
	FoodEntries       int     `json:"food_entries"`
	ExerciseEntries   int     `json:"exercise_entries"`
	TargetCalories    float64 `json:"target_calories"`
	RemainingCalories float64 `json:"remaining_calories"`
	Status            string  `json:"status"`
}

func (s *Server) GetDailySummary(c echo.Context) error {
	var req DailySummaryRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	date, err := s.dateOrToday(req.Date)
	if err != nil {
		return s.fail(c, err)
	}

	r, err := s.summaryService.Summarize(c.Request().Context(), s.getSummaryUoW(), currentUserID(c), date)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, DailySummaryResponse{
		Date:              domain.FormatDate(r.Date),
		CaloriesConsumed:  r.CaloriesConsumed,
		CaloriesBurned:    r.CaloriesBurned,
		NetCalories:       r.NetCalories,
		ProteinG:          r.ProteinG,
		CarbsG:            r.CarbsG,
		FatG:              r.FatG,
		FiberG:            r.FiberG,
		FoodEntries:       r.FoodEntries,
		ExerciseEntries:   r.ExerciseEntries,
		TargetCalories:    r.TargetCalories,
		RemainingCalories: r.RemainingCalories,
		Status:            string(r.Status),
	})
}

type StreakDayModel struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

type StreakResponse struct {
	CurrentStreak      int              `json:"current_streak"`
	LongestStreak      int              `json:"longest_streak"`
	LastQualifyingDate *string          `json:"last_qualifying_date,omitempty"`
	Week               []StreakDayModel `json:"week"`
}

func (s *Server) GetStreak(c echo.Context) error {
	r, err := s.streakService.GetStreak(c.Request().Context(), s.getStreakUoW(), currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}

	resp := StreakResponse{
		CurrentStreak: r.Current,
		LongestStreak: r.Longest,
		Week: lo.Map(r.Week, func(d streak.Day, _ int) StreakDayModel {
			return StreakDayModel{
				Date:   domain.FormatDate(d.Date),
				Status: string(d.Status),
			}
		}),
	}
	if r.LastQualifyingDate != nil {
		resp.LastQualifyingDate = lo.ToPtr(domain.FormatDate(*r.LastQualifyingDate))
	}
	return c.JSON(http.StatusOK, resp)
}
