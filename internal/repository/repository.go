package repository

import (
	"context"

	"sky-catalog/internal/model"

	"github.com/jackc/pgx/v5"
)

// TxBeginner starts store transactions.
type TxBeginner interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// DishRepository defines the data access operations for dishes.
//
// Point reads return (nil, nil) when the dish does not exist. Batch operations
// given an empty id list are no-ops returning empty results.
type DishRepository interface {
	TxBeginner

	// Insert stores a new dish within the transaction and returns its store-assigned id.
	Insert(ctx context.Context, tx pgx.Tx, dish *model.Dish) (int64, error)

	// Update overwrites the mutable fields of an existing dish. It reports
	// whether a row was changed.
	Update(ctx context.Context, tx pgx.Tx, dish *model.Dish) (bool, error)

	// UpdateStatus changes only the sellability of a dish. It reports whether a
	// row was changed.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.DishStatus, actor int64) (bool, error)

	// GetForUpdate reads and row-locks a single dish inside the transaction.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Dish, error)

	// GetByIDsForUpdate reads and row-locks every existing dish among ids.
	GetByIDsForUpdate(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.Dish, error)

	// DeleteByIDs removes the dishes and returns the number of rows deleted.
	DeleteByIDs(ctx context.Context, tx pgx.Tx, ids []int64) (int64, error)

	// GetByID retrieves a single dish outside of any transaction.
	GetByID(ctx context.Context, id int64) (*model.Dish, error)

	// ListByCategory returns the dishes of a category having the given status.
	ListByCategory(ctx context.Context, categoryID int64, status model.DishStatus) ([]model.Dish, error)

	// PageQuery returns one page of dishes matching the filter plus the total match count.
	PageQuery(ctx context.Context, query model.DishPageQuery) (model.PageResult[model.DishPageItem], error)
}

// FlavorRepository defines the data access operations for dish flavors.
type FlavorRepository interface {
	// InsertBatch stores the flavors within the transaction and fills in their ids.
	InsertBatch(ctx context.Context, tx pgx.Tx, flavors []model.DishFlavor) error

	// DeleteByDishIDs removes every flavor owned by the given dishes.
	DeleteByDishIDs(ctx context.Context, tx pgx.Tx, dishIDs []int64) (int64, error)

	// ListByDishID returns the flavors of one dish in insertion order.
	ListByDishID(ctx context.Context, dishID int64) ([]model.DishFlavor, error)

	// ListByDishIDs returns the flavors of many dishes grouped by dish id.
	ListByDishIDs(ctx context.Context, dishIDs []int64) (map[int64][]model.DishFlavor, error)
}

// ComboRepository is the read-only view of combo-meal membership.
type ComboRepository interface {
	// ComboIDsByDishIDs returns the distinct combo ids referencing any of the dishes.
	ComboIDsByDishIDs(ctx context.Context, tx pgx.Tx, dishIDs []int64) ([]int64, error)
}
