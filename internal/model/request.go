package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// DishRequest is the payload for creating or updating a dish with its flavors.
type DishRequest struct {
	ID          int64           `json:"id,omitempty"`
	Name        string          `json:"name"`
	CategoryID  int64           `json:"categoryId"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Status      DishStatus      `json:"status"`
	Flavors     []FlavorRequest `json:"flavors"`
}

// FlavorRequest is one flavor of a DishRequest.
type FlavorRequest struct {
	Name   string   `json:"name"`
	Values []string `json:"value"`
}

// Validate checks the fields shared by create and update.
func (r DishRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 32)),
		validation.Field(&r.CategoryID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Price, validation.By(nonNegativePrice)),
		validation.Field(&r.Image, validation.Length(0, 255)),
		validation.Field(&r.Description, validation.Length(0, 255)),
		validation.Field(&r.Status, validation.By(knownStatus)),
		validation.Field(&r.Flavors),
	)
}

// Validate checks a single flavor.
func (f FlavorRequest) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 32)),
		validation.Field(&f.Values, validation.Required, validation.Each(validation.Required)),
	)
}

func nonNegativePrice(value interface{}) error {
	price, _ := value.(decimal.Decimal)
	if price.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func knownStatus(value interface{}) error {
	status, _ := value.(DishStatus)
	if !status.Valid() {
		return errors.New("must be 0 or 1")
	}
	return nil
}

// DishFromRequest maps a request to a dish entity, stamping audit fields.
// On update, CreatedAt and CreatedBy are left zero and are not written.
func DishFromRequest(r *DishRequest, actor int64, now time.Time) Dish {
	return Dish{
		ID:          r.ID,
		Name:        r.Name,
		CategoryID:  r.CategoryID,
		Price:       r.Price,
		Image:       r.Image,
		Description: r.Description,
		Status:      r.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actor,
		UpdatedBy:   actor,
	}
}

// FlavorsFromRequest maps request flavors to entities owned by dishID.
func FlavorsFromRequest(flavors []FlavorRequest, dishID int64) []DishFlavor {
	out := make([]DishFlavor, len(flavors))
	for i, f := range flavors {
		values := make([]string, len(f.Values))
		copy(values, f.Values)
		out[i] = DishFlavor{
			DishID: dishID,
			Name:   f.Name,
			Values: values,
		}
	}
	return out
}
