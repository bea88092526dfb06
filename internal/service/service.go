package service

import (
	"context"

	"sky-catalog/internal/model"
)

// DishService defines the administrative catalog operations.
type DishService interface {
	// CreateWithFlavors stores a new dish and its flavors atomically and returns its id.
	CreateWithFlavors(ctx context.Context, req *model.DishRequest) (int64, error)

	// UpdateWithFlavors replaces the mutable fields and the whole flavor list of a dish.
	UpdateWithFlavors(ctx context.Context, req *model.DishRequest) error

	// DeleteBatch deletes the dishes and their flavors, all or nothing.
	DeleteBatch(ctx context.Context, ids []int64) error

	// SetStatus starts or stops selling a dish.
	SetStatus(ctx context.Context, id int64, status model.DishStatus) error

	// GetByID retrieves a dish with its flavors.
	GetByID(ctx context.Context, id int64) (*model.DishView, error)

	// PageQuery returns one filtered page of dishes. Never cached.
	PageQuery(ctx context.Context, query model.DishPageQuery) (model.PageResult[model.DishPageItem], error)

	// ListByCategory returns the on-sale dishes of a category without flavors.
	ListByCategory(ctx context.Context, categoryID int64) ([]model.Dish, error)
}

// MenuService serves the customer-facing catalog.
type MenuService interface {
	// ListForCustomer returns the on-sale dishes of a category with their
	// flavors, reading through the cache.
	ListForCustomer(ctx context.Context, categoryID int64) ([]model.DishView, error)
}

// ShopService manages the shop open flag.
type ShopService interface {
	GetStatus(ctx context.Context) (model.ShopStatus, error)
	SetStatus(ctx context.Context, status model.ShopStatus) error
}
