package api

import (
	profileapp "github.com/burenotti/go_health_tracker/internal/app/profile"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/energy"
	"github.com/burenotti/go_health_tracker/internal/domain/goal"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
	"github.com/labstack/echo/v4"
	"net/http"
	"time"
)

func (s *Server) MountProfile() {
	loginRequired := LoginRequired(s.authorizer)

	s.handler.PUT("/profile", s.SaveProfile, loginRequired)
	s.handler.GET("/profile", s.GetProfile, loginRequired)

	s.handler.PUT("/goal", s.SetGoal, loginRequired)
	s.handler.GET("/goal", s.GetGoal, loginRequired)

	s.handler.GET("/targets/current", s.GetCurrentTarget, loginRequired)
}

func (s *Server) getProfileUoW() *unitofwork.UnitOfWork[*profileapp.AtomicContext] {
	return newUoW(s, profileapp.NewAtomicContext, profileapp.NewMemoryAtomicContext)
}

type SaveProfileRequest struct {
	DateOfBirth    string   `json:"date_of_birth" validate:"required"`
	Gender         string   `json:"gender" validate:"required,oneof=male female other"`
	HeightCm       float64  `json:"height_cm" validate:"required,gt=0"`
	WeightKg       float64  `json:"weight_kg" validate:"required,gt=0"`
	ActivityLevel  string   `json:"activity_level" validate:"required"`
	GoalType       string   `json:"goal_type" validate:"required"`
	TargetWeightKg *float64 `json:"target_weight_kg,omitempty" validate:"omitempty,gt=0"`
}

type ProfileResponse struct {
	UserID         string    `json:"user_id"`
	DateOfBirth    string    `json:"date_of_birth"`
	Gender         string    `json:"gender"`
	HeightCm       float64   `json:"height_cm"`
	WeightKg       float64   `json:"weight_kg"`
	ActivityLevel  string    `json:"activity_level"`
	GoalType       string    `json:"goal_type"`
	TargetWeightKg *float64  `json:"target_weight_kg,omitempty"`
	BMI            float64   `json:"bmi"`
	BMR            float64   `json:"bmr"`
	TDEE           float64   `json:"tdee"`
	TargetCalories float64   `json:"target_calories"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func profileResponse(p *profile.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:         p.UserID,
		DateOfBirth:    domain.FormatDate(p.DateOfBirth),
		Gender:         string(p.Gender),
		HeightCm:       p.HeightCm,
		WeightKg:       p.WeightKg,
		ActivityLevel:  string(p.ActivityLevel),
		GoalType:       string(p.GoalType),
		TargetWeightKg: p.TargetWeightKg,
		BMI:            p.BMI,
		BMR:            p.BMR,
		TDEE:           p.TDEE,
		TargetCalories: p.TargetCalories,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (s *Server) SaveProfile(c echo.Context) error {
	var req SaveProfileRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	dob, err := domain.ParseDate(req.DateOfBirth)
	if err != nil {
		return s.fail(c, err)
	}

	p, err := s.profileService.SaveProfile(c.Request().Context(), s.getProfileUoW(), currentUserID(c), profile.Attributes{
		DateOfBirth:    dob,
		Gender:         profile.Gender(req.Gender),
		HeightCm:       req.HeightCm,
		WeightKg:       req.WeightKg,
		ActivityLevel:  profile.ActivityLevel(req.ActivityLevel),
		GoalType:       profile.GoalType(req.GoalType),
		TargetWeightKg: req.TargetWeightKg,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, profileResponse(p))
}

func (s *Server) GetProfile(c echo.Context) error {
	p, err := s.profileService.GetProfile(c.Request().Context(), s.getProfileUoW(), currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, profileResponse(p))
}

type SetGoalRequest struct {
	Calories float64 `json:"calories" validate:"gte=0"`
	ProteinG float64 `json:"protein_g" validate:"gte=0"`
	CarbsG   float64 `json:"carbs_g" validate:"gte=0"`
	FatG     float64 `json:"fat_g" validate:"gte=0"`
}

type GoalResponse struct {
	Calories  float64    `json:"calories"`
	ProteinG  float64    `json:"protein_g"`
	CarbsG    float64    `json:"carbs_g"`
	FatG      float64    `json:"fat_g"`
	IsDefault bool       `json:"is_default"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func goalResponse(g *goal.Goal, isDefault bool) GoalResponse {
	resp := GoalResponse{
		Calories:  g.Calories,
		ProteinG:  g.ProteinG,
		CarbsG:    g.CarbsG,
		FatG:      g.FatG,
		IsDefault: isDefault,
	}
	if !g.UpdatedAt.IsZero() {
		resp.UpdatedAt = &g.UpdatedAt
	}
	return resp
}

func (s *Server) SetGoal(c echo.Context) error {
	var req SetGoalRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	g, err := s.profileService.SetGoal(
		c.Request().Context(),
		s.getProfileUoW(),
		currentUserID(c),
		req.Calories,
		req.ProteinG,
		req.CarbsG,
		req.FatG,
	)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, goalResponse(g, false))
}

func (s *Server) GetGoal(c echo.Context) error {
	g, isDefault, err := s.profileService.GetGoal(c.Request().Context(), s.getProfileUoW(), currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, goalResponse(g, isDefault))
}

type TargetResponse struct {
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
	TargetCalories float64 `json:"target_calories"`
	GoalCalories   float64 `json:"goal_calories"`
	DailyCalories  float64 `json:"daily_calories"`
	ProteinG       float64 `json:"protein_g"`
	CarbsG         float64 `json:"carbs_g"`
	FatG           float64 `json:"fat_g"`
	DefaultGoal    bool    `json:"default_goal"`
}

func targetResponse(t energy.Target) TargetResponse {
	return TargetResponse{
		BMR:            t.BMR,
		TDEE:           t.TDEE,
		TargetCalories: t.TargetCalories,
		GoalCalories:   t.GoalCalories,
		DailyCalories:  t.DailyCalories(),
		ProteinG:       t.ProteinG,
		CarbsG:         t.CarbsG,
		FatG:           t.FatG,
		DefaultGoal:    t.DefaultGoal,
	}
}

func (s *Server) GetCurrentTarget(c echo.Context) error {
	t, err := s.profileService.CurrentTarget(c.Request().Context(), s.getProfileUoW(), currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, targetResponse(t))
}
