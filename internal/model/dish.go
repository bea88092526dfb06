package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DishStatus is the sellability status of a dish.
type DishStatus int

const (
	// StatusOffSale hides the dish from ordering.
	StatusOffSale DishStatus = 0
	// StatusOnSale makes the dish orderable.
	StatusOnSale DishStatus = 1
)

// String returns the canonical name of the status.
func (s DishStatus) String() string {
	switch s {
	case StatusOnSale:
		return "ON_SALE"
	case StatusOffSale:
		return "OFF_SALE"
	default:
		return "UNKNOWN(" + strconv.Itoa(int(s)) + ")"
	}
}

// Valid reports whether s is one of the two known statuses.
func (s DishStatus) Valid() bool {
	switch s {
	case StatusOnSale, StatusOffSale:
		return true
	default:
		return false
	}
}

// ParseDishStatus parses either the numeric form ("0", "1") or the name form.
func ParseDishStatus(raw string) (DishStatus, error) {
	switch raw {
	case "1", "ON_SALE":
		return StatusOnSale, nil
	case "0", "OFF_SALE":
		return StatusOffSale, nil
	default:
		return StatusOffSale, fmt.Errorf("unknown dish status %q", raw)
	}
}

// UnmarshalJSON rejects numbers outside the closed set.
func (s *DishStatus) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("dish status must be 0 or 1: %w", err)
	}
	status := DishStatus(n)
	if !status.Valid() {
		return fmt.Errorf("dish status must be 0 or 1, got %d", n)
	}
	*s = status
	return nil
}

// Dish is a sellable menu item as persisted in the catalog store.
type Dish struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	CategoryID  int64           `json:"categoryId" db:"category_id"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Image       string          `json:"image" db:"image"`
	Description string          `json:"description" db:"description"`
	Status      DishStatus      `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"createTime" db:"create_time"`
	UpdatedAt   time.Time       `json:"updateTime" db:"update_time"`
	CreatedBy   int64           `json:"createUser" db:"create_user"`
	UpdatedBy   int64           `json:"updateUser" db:"update_user"`
}

// DishFlavor is a named customisation axis of a dish with its selectable values.
type DishFlavor struct {
	ID     int64    `json:"id" db:"id"`
	DishID int64    `json:"dishId" db:"dish_id"`
	Name   string   `json:"name" db:"name"`
	Values []string `json:"value" db:"value"`
}

// DishView is a dish hydrated with its flavors, as returned to callers and cached.
type DishView struct {
	Dish
	CategoryName string       `json:"categoryName,omitempty"`
	Flavors      []DishFlavor `json:"flavors"`
}

// NewDishView assembles a view from a dish and its flavors.
func NewDishView(d Dish, flavors []DishFlavor) DishView {
	if flavors == nil {
		flavors = []DishFlavor{}
	}
	return DishView{Dish: d, Flavors: flavors}
}

// CategoryIDs returns the distinct category ids of the given dishes, in first-seen order.
func CategoryIDs(dishes []Dish) []int64 {
	seen := make(map[int64]struct{}, len(dishes))
	ids := make([]int64, 0, len(dishes))
	for _, d := range dishes {
		if _, ok := seen[d.CategoryID]; ok {
			continue
		}
		seen[d.CategoryID] = struct{}{}
		ids = append(ids, d.CategoryID)
	}
	return ids
}
