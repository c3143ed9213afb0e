package api

import (
	foodlogapp "github.com/burenotti/go_health_tracker/internal/app/foodlog"
	"github.com/burenotti/go_health_tracker/internal/app/unitofwork"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"github.com/burenotti/go_health_tracker/internal/domain/foodlog"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"strconv"
	"time"
)

func (s *Server) MountFoodLog() {
	loginRequired := LoginRequired(s.authorizer)

	routes := s.handler.Group("/food-log", loginRequired)
	routes.POST("", s.CreateFoodEntry)
	routes.GET("", s.ListFoodEntries)
	routes.GET("/:entry_id", s.GetFoodEntry)
	routes.PUT("/:entry_id/items", s.UpdateFoodItems)
	routes.DELETE("/:entry_id", s.DeleteFoodEntry)
}

func (s *Server) getFoodLogUoW() *unitofwork.UnitOfWork[*foodlogapp.AtomicContext] {
	return newUoW(s, foodlogapp.NewAtomicContext, foodlogapp.NewMemoryAtomicContext)
}

type NutrientsModel struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Fiber    float64 `json:"fiber"`
}

func nutrientsModel(n catalog.Nutrients) NutrientsModel {
	return NutrientsModel{
		Calories: n.Calories,
		Protein:  n.Protein,
		Fat:      n.Fat,
		Carbs:    n.Carbs,
		Fiber:    n.Fiber,
	}
}

type FoodItemModel struct {
	FoodID      string         `json:"food_id"`
	ServingQty  float64        `json:"serving_qty"`
	ServingUnit string         `json:"serving_unit"`
	Grams       float64        `json:"grams"`
	Nutrients   NutrientsModel `json:"nutrients"`
}

type FoodEntryResponse struct {
	EntryID   string          `json:"entry_id"`
	Date      string          `json:"date"`
	MealType  string          `json:"meal_type"`
	Items     []FoodItemModel `json:"items"`
	Totals    NutrientsModel  `json:"totals"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func foodEntryResponse(e *foodlog.Entry) FoodEntryResponse {
	return FoodEntryResponse{
		EntryID:  e.ID,
		Date:     domain.FormatDate(e.Date),
		MealType: string(e.MealType),
		Items: lo.Map(e.Items, func(item foodlog.Item, _ int) FoodItemModel {
			return FoodItemModel{
				FoodID:      item.FoodID,
				ServingQty:  item.ServingQty,
				ServingUnit: item.ServingUnit,
				Grams:       item.Grams,
				Nutrients:   nutrientsModel(item.Nutrients),
			}
		}),
		Totals:    nutrientsModel(e.Totals),
		Version:   e.Version,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

type FoodItemRequest struct {
	FoodID      string  `json:"food_id" validate:"required"`
	ServingQty  float64 `json:"serving_qty" validate:"gt=0"`
	ServingUnit string  `json:"serving_unit"`
	Grams       float64 `json:"grams" validate:"gte=0"`
}

func foodItemInputs(items []FoodItemRequest) []foodlogapp.ItemInput {
	return lo.Map(items, func(item FoodItemRequest, _ int) foodlogapp.ItemInput {
		return foodlogapp.ItemInput{
			FoodID:      item.FoodID,
			ServingQty:  item.ServingQty,
			ServingUnit: item.ServingUnit,
			Grams:       item.Grams,
		}
	})
}

type CreateFoodEntryRequest struct {
	Date     string            `json:"date"`
	MealType string            `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	Items    []FoodItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (s *Server) CreateFoodEntry(c echo.Context) error {
	var req CreateFoodEntryRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	date, err := s.dateOrToday(req.Date)
	if err != nil {
		return s.fail(c, err)
	}

	e, err := s.foodLogService.CreateEntry(
		c.Request().Context(),
		s.getFoodLogUoW(),
		currentUserID(c),
		date,
		foodlog.MealType(req.MealType),
		foodItemInputs(req.Items),
	)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, foodEntryResponse(e))
}

type ListEntriesRequest struct {
	Date string `query:"date"`
}

func (s *Server) ListFoodEntries(c echo.Context) error {
	var req ListEntriesRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	date, err := s.dateOrToday(req.Date)
	if err != nil {
		return s.fail(c, err)
	}

	entries, err := s.foodLogService.ListByDate(c.Request().Context(), s.getFoodLogUoW(), currentUserID(c), date)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, lo.Map(entries, func(e *foodlog.Entry, _ int) FoodEntryResponse {
		return foodEntryResponse(e)
	}))
}

type EntryRequest struct {
	EntryID string `param:"entry_id" validate:"required"`
}

func (s *Server) GetFoodEntry(c echo.Context) error {
	var req EntryRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	e, err := s.foodLogService.GetEntry(c.Request().Context(), s.getFoodLogUoW(), currentUserID(c), req.EntryID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, foodEntryResponse(e))
}

type UpdateFoodItemsRequest struct {
	EntryID string            `param:"entry_id" validate:"required"`
	Items   []FoodItemRequest `json:"items" validate:"required,min=1,dive"`
	Version *int              `json:"version,omitempty"`
}

func (s *Server) UpdateFoodItems(c echo.Context) error {
	var req UpdateFoodItemsRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	e, err := s.foodLogService.UpdateItems(
		c.Request().Context(),
		s.getFoodLogUoW(),
		currentUserID(c),
		req.EntryID,
		foodItemInputs(req.Items),
		req.Version,
	)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, foodEntryResponse(e))
}

type DeleteEntryRequest struct {
	EntryID string `param:"entry_id" validate:"required"`
	Version string `query:"version"`
}

// expectedVersion parses the optional version a client last saw.
func (r DeleteEntryRequest) expectedVersion() (*int, error) {
	if r.Version == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(r.Version)
	if err != nil || v < 1 {
		return nil, domain.ValidationError("version must be a positive integer")
	}
	return &v, nil
}

func (s *Server) DeleteFoodEntry(c echo.Context) error {
	var req DeleteEntryRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	version, err := req.expectedVersion()
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.foodLogService.DeleteEntry(c.Request().Context(), s.getFoodLogUoW(), currentUserID(c), req.EntryID, version); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
