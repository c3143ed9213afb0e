package api

import (
	biometricapp "github.com/burenotti/go_health_tracker/internal/app/biometric"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"time"
)

func (s *Server) MountBiometrics() {
	loginRequired := LoginRequired(s.authorizer)

	routes := s.handler.Group("/biometrics", loginRequired)
	routes.POST("", s.RecordBiometric)
	routes.GET("", s.BiometricHistory)
	routes.GET("/latest", s.LatestBiometric)
	routes.PATCH("/:record_id", s.PatchBiometric)
}

func (s *Server) getBiometricUoW() *unitofwork.UnitOfWork[*biometricapp.AtomicContext] {
	return newUoW(s, biometricapp.NewAtomicContext, biometricapp.NewMemoryAtomicContext)
}

type BiometricResponse struct {
	RecordID string    `json:"record_id"`
	WeightKg float64   `json:"weight_kg"`
	HeightCm float64   `json:"height_cm"`
	BMI      float64   `json:"bmi"`
	LoggedAt time.Time `json:"logged_at"`
}

func biometricResponse(r *biometric.Record) BiometricResponse {
	return BiometricResponse{
		RecordID: r.ID,
		WeightKg: r.WeightKg,
		HeightCm: r.HeightCm,
		BMI:      r.BMI,
		LoggedAt: r.LoggedAt,
	}
}

type RecordBiometricRequest struct {
	WeightKg float64    `json:"weight_kg" validate:"required,gt=0"`
	HeightCm float64    `json:"height_cm" validate:"required,gt=0"`
	LoggedAt *time.Time `json:"logged_at,omitempty"`
}

func (s *Server) RecordBiometric(c echo.Context) error {
	var req RecordBiometricRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	var loggedAt time.Time
	if req.LoggedAt != nil {
		loggedAt = *req.LoggedAt
	}

	r, err := s.biometricService.Record(c.Request().Context(), s.getBiometricUoW(), currentUserID(c), req.WeightKg, req.HeightCm, loggedAt)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, biometricResponse(r))
}

type BiometricHistoryRequest struct {
	From  string `query:"from"`
	To    string `query:"to"`
	Limit int    `query:"limit" validate:"gte=0"`
}

func (s *Server) BiometricHistory(c echo.Context) error {
	var req BiometricHistoryRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	filter := biometric.HistoryFilter{Limit: req.Limit}
	var err error
	if filter.From, err = parseTimeParam("from", req.From); err != nil {
		return s.fail(c, err)
	}
	if filter.To, err = parseTimeParam("to", req.To); err != nil {
		return s.fail(c, err)
	}

	records, err := s.biometricService.History(c.Request().Context(), s.getBiometricUoW(), currentUserID(c), filter)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, lo.Map(records, func(r *biometric.Record, _ int) BiometricResponse {
		return biometricResponse(r)
	}))
}

func (s *Server) LatestBiometric(c echo.Context) error {
	r, err := s.biometricService.Latest(c.Request().Context(), s.getBiometricUoW(), currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, biometricResponse(r))
}

type PatchBiometricRequest struct {
	RecordID string   `param:"record_id" validate:"required"`
	WeightKg *float64 `json:"weight_kg,omitempty" validate:"omitempty,gt=0"`
	HeightCm *float64 `json:"height_cm,omitempty" validate:"omitempty,gt=0"`
}

func (s *Server) PatchBiometric(c echo.Context) error {
	var req PatchBiometricRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	r, err := s.biometricService.Patch(c.Request().Context(), s.getBiometricUoW(), currentUserID(c), req.RecordID, req.WeightKg, req.HeightCm)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, biometricResponse(r))
}

// parseTimeParam accepts RFC 3339 timestamps and plain dates.
func parseTimeParam(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := domain.ParseDate(raw)
	if err != nil {
		return nil, domain.ValidationError("%s must be an RFC 3339 timestamp or a date", name)
	}
	return &t, nil
}
