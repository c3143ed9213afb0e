package foodlog

import (
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/catalog"
	"strings"
	"time"
)

var (
	ErrEntryNotFound = fmt.Errorf("%w: food log entry not found", domain.ErrNotFound)
	ErrEntryConflict = fmt.Errorf("%w: food log entry was changed by another request", domain.ErrConflict)
)

const (
	EventEntryCreated = "foodlog.entry_created"
	EventEntryUpdated = "foodlog.entry_updated"
	EventEntryDeleted = "foodlog.entry_deleted"
)

type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

func (m MealType) Valid() bool {
	switch m {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

// Item is one logged food. Nutrients is a copy of the catalog values scaled
// to Grams at the time the item was written.
type Item struct {
	FoodID      string
	ServingQty  float64
	ServingUnit string
	Grams       float64
	Nutrients   catalog.Nutrients
}

// NewItem snapshots food for the given quantity. When grams is zero it is
// derived from the serving quantity: grams directly for unit "g", serving
// size multiples otherwise.
func NewItem(food *catalog.Food, servingQty float64, servingUnit string, grams float64) (Item, error) {
	if servingQty <= 0 {
		return Item{}, domain.ValidationError("serving_qty must be positive for food %s", food.FoodID)
	}
	if grams < 0 {
		return Item{}, domain.ValidationError("grams must not be negative for food %s", food.FoodID)
	}
	unit := strings.ToLower(strings.TrimSpace(servingUnit))
	if unit == "" {
		unit = "serving"
	}
	if grams == 0 {
		if unit == "g" {
			grams = servingQty
		} else {
			if food.ServingSizeG <= 0 {
				return Item{}, domain.ValidationError("grams are required for food %s without a serving size", food.FoodID)
			}
			grams = servingQty * food.ServingSizeG
		}
	}
	return Item{
		FoodID:      food.FoodID,
		ServingQty:  servingQty,
		ServingUnit: unit,
		Grams:       grams,
		Nutrients:   food.Per100g.Scale(grams / 100),
	}, nil
}

type Entry struct {
	domain.Aggregate
	ID        string
	UserID    string
	Date      time.Time
	MealType  MealType
	Items     []Item
	Totals    catalog.Nutrients
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewEntry(id, userID string, date time.Time, mealType MealType, items []Item, now time.Time) (*Entry, error) {
	if !mealType.Valid() {
		return nil, domain.ValidationError("unknown meal_type %q", mealType)
	}
	if err := ValidateItems(items); err != nil {
		return nil, err
	}
	e := &Entry{
		ID:        id,
		UserID:    userID,
		Date:      domain.Date(date),
		MealType:  mealType,
		Items:     append([]Item(nil), items...),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.RecomputeTotals()
	e.PushEvent(&EntryEvent{
		EventType: EventEntryCreated,
		At:        now,
		EntryID:   e.ID,
		UserID:    e.UserID,
		Date:      e.Date,
		Calories:  e.Totals.Calories,
	})
	return e, nil
}

// ReplaceItems swaps the whole item list and recomputes totals from scratch.
func (e *Entry) ReplaceItems(items []Item, now time.Time) error {
	if err := ValidateItems(items); err != nil {
		return err
	}
	e.Items = append([]Item(nil), items...)
	e.RecomputeTotals()
	e.Version++
	e.UpdatedAt = now
	e.PushEvent(&EntryEvent{
		EventType: EventEntryUpdated,
		At:        now,
		EntryID:   e.ID,
		UserID:    e.UserID,
		Date:      e.Date,
		Calories:  e.Totals.Calories,
	})
	return nil
}

// RecomputeTotals sets Totals to the pointwise sum of the item snapshots.
// Every write path calls it before the entry is persisted.
func (e *Entry) RecomputeTotals() {
	var totals catalog.Nutrients
	for _, item := range e.Items {
		totals = totals.Add(item.Nutrients)
	}
	e.Totals = totals
}

func (e *Entry) MarkDeleted(now time.Time) {
	e.PushEvent(&EntryEvent{
		EventType: EventEntryDeleted,
		At:        now,
		EntryID:   e.ID,
		UserID:    e.UserID,
		Date:      e.Date,
	})
}

func ValidateItems(items []Item) error {
	if len(items) == 0 {
		return domain.ValidationError("entry must contain at least one item")
	}
	for i, item := range items {
		if item.ServingQty <= 0 {
			return domain.ValidationError("item %d: serving_qty must be positive", i)
		}
		if item.Grams <= 0 {
			return domain.ValidationError("item %d: grams must be positive", i)
		}
	}
	return nil
}

type EntryEvent struct {
	EventType string
	At        time.Time
	EntryID   string
	UserID    string
	Date      time.Time
	Calories  float64
}

func (e *EntryEvent) Type() string {
	return e.EventType
}

func (e *EntryEvent) PublishedAt() time.Time {
	return e.At
}
