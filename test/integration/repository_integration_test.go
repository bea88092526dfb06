package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"sky-catalog/internal/model"
	"sky-catalog/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertDish(t *testing.T, repo repository.DishRepository, dish model.Dish) int64 {
	t.Helper()

	var id int64
	err := repository.RunInTx(context.Background(), repo, zerolog.Nop(), func(tx pgx.Tx) error {
		var err error
		id, err = repo.Insert(context.Background(), tx, &dish)
		return err
	})
	require.NoError(t, err)
	return id
}

func newDish(name string, categoryID int64, price string, status model.DishStatus) model.Dish {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return model.Dish{
		Name:       name,
		CategoryID: categoryID,
		Price:      decimal.RequireFromString(price),
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  1,
		UpdatedBy:  1,
	}
}

func TestDishRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewDishRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("Insert then GetByID round trips the dish", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		id := insertDish(t, repo, newDish("Kung Pao Chicken", CategorySichuan, "38.50", model.StatusOnSale))

		dish, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, dish)
		assert.Equal(t, "Kung Pao Chicken", dish.Name)
		assert.Equal(t, CategorySichuan, dish.CategoryID)
		assert.True(t, decimal.RequireFromString("38.5").Equal(dish.Price))
		assert.Equal(t, model.StatusOnSale, dish.Status)
		assert.Equal(t, int64(1), dish.CreatedBy)
	})

	t.Run("GetByID returns nil for non-existent dish", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		dish, err := repo.GetByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, dish)
	})

	t.Run("Update reports whether a row changed", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		id := insertDish(t, repo, newDish("Mapo Tofu", CategorySichuan, "18", model.StatusOnSale))

		err := repository.RunInTx(ctx, repo, logger, func(tx pgx.Tx) error {
			dish := newDish("Mapo Tofu", CategoryStaples, "20", model.StatusOffSale)
			dish.ID = id
			updated, err := repo.Update(ctx, tx, &dish)
			require.NoError(t, err)
			assert.True(t, updated)

			dish.ID = 999
			updated, err = repo.Update(ctx, tx, &dish)
			require.NoError(t, err)
			assert.False(t, updated)
			return nil
		})
		require.NoError(t, err)

		dish, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, CategoryStaples, dish.CategoryID)
		assert.Equal(t, model.StatusOffSale, dish.Status)
	})

	t.Run("UpdateStatus stamps the actor", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		id := insertDish(t, repo, newDish("Mapo Tofu", CategorySichuan, "18", model.StatusOnSale))

		err := repository.RunInTx(ctx, repo, logger, func(tx pgx.Tx) error {
			_, err := repo.UpdateStatus(ctx, tx, id, model.StatusOffSale, 42)
			return err
		})
		require.NoError(t, err)

		dish, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusOffSale, dish.Status)
		assert.Equal(t, int64(42), dish.UpdatedBy)
	})

	t.Run("ListByCategory filters by category and status", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		insertDish(t, repo, newDish("Kung Pao Chicken", CategorySichuan, "38", model.StatusOnSale))
		insertDish(t, repo, newDish("Mapo Tofu", CategorySichuan, "18", model.StatusOnSale))
		insertDish(t, repo, newDish("Twice Cooked Pork", CategorySichuan, "42", model.StatusOffSale))
		insertDish(t, repo, newDish("Steamed Rice", CategoryStaples, "2", model.StatusOnSale))

		onSale, err := repo.ListByCategory(ctx, CategorySichuan, model.StatusOnSale)
		require.NoError(t, err)
		assert.Len(t, onSale, 2)

		offSale, err := repo.ListByCategory(ctx, CategorySichuan, model.StatusOffSale)
		require.NoError(t, err)
		require.Len(t, offSale, 1)
		assert.Equal(t, "Twice Cooked Pork", offSale[0].Name)

		none, err := repo.ListByCategory(ctx, CategoryDrinks, model.StatusOnSale)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("PageQuery filters and pages", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCategories(t, testDB.Pool)

		insertDish(t, repo, newDish("Kung Pao Chicken", CategorySichuan, "38", model.StatusOnSale))
		insertDish(t, repo, newDish("Kung Pao Shrimp", CategorySichuan, "48", model.StatusOffSale))
		insertDish(t, repo, newDish("Mapo Tofu", CategorySichuan, "18", model.StatusOnSale))
		insertDish(t, repo, newDish("Steamed Rice", CategoryStaples, "2", model.StatusOnSale))

		all, err := repo.PageQuery(ctx, model.DishPageQuery{Page: 1, PageSize: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(4), all.Total)
		assert.Len(t, all.Records, 3)

		last, err := repo.PageQuery(ctx, model.DishPageQuery{Page: 2, PageSize: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(4), last.Total)
		assert.Len(t, last.Records, 1)

		sichuan := CategorySichuan
		onSale := model.StatusOnSale
		filtered, err := repo.PageQuery(ctx, model.DishPageQuery{
			Page:       1,
			PageSize:   10,
			Name:       "kung pao",
			CategoryID: &sichuan,
			Status:     &onSale,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), filtered.Total)
		require.Len(t, filtered.Records, 1)
		assert.Equal(t, "Kung Pao Chicken", filtered.Records[0].Name)
		assert.Equal(t, "Sichuan", filtered.Records[0].CategoryName)

		empty, err := repo.PageQuery(ctx, model.DishPageQuery{Page: 1, PageSize: 10, Name: "burger"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), empty.Total)
		assert.NotNil(t, empty.Records)
	})

	t.Run("GetByIDsForUpdate and DeleteByIDs", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		first := insertDish(t, repo, newDish("Mapo Tofu", CategorySichuan, "18", model.StatusOffSale))
		second := insertDish(t, repo, newDish("Steamed Rice", CategoryStaples, "2", model.StatusOffSale))

		err := repository.RunInTx(ctx, repo, logger, func(tx pgx.Tx) error {
			dishes, err := repo.GetByIDsForUpdate(ctx, tx, []int64{second, first, 999})
			require.NoError(t, err)
			require.Len(t, dishes, 2)
			assert.Equal(t, first, dishes[0].ID)

			deleted, err := repo.DeleteByIDs(ctx, tx, []int64{first, second, 999})
			require.NoError(t, err)
			assert.Equal(t, int64(2), deleted)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), CountRows(t, testDB.Pool, "dish", ""))
	})

	t.Run("RunInTx rolls back when fn fails", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		errBoom := errors.New("boom")
		err := repository.RunInTx(ctx, repo, logger, func(tx pgx.Tx) error {
			dish := newDish("Mapo Tofu", CategorySichuan, "18", model.StatusOnSale)
			_, err := repo.Insert(ctx, tx, &dish)
			require.NoError(t, err)
			return errBoom
		})
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, int64(0), CountRows(t, testDB.Pool, "dish", ""))
	})

	t.Run("Insert rejects a duplicate name", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		insertDish(t, repo, newDish("Mapo Tofu", CategorySichuan, "18", model.StatusOnSale))

		err := repository.RunInTx(ctx, repo, logger, func(tx pgx.Tx) error {
			dish := newDish("Mapo Tofu", CategoryStaples, "20", model.StatusOnSale)
			_, err := repo.Insert(ctx, tx, &dish)
			return err
		})
		assert.Error(t, err)
		assert.Equal(t, int64(1), CountRows(t, testDB.Pool, "dish", ""))
	})
}

func TestFlavorRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	dishRepo := repository.NewDishRepository(testDB.Pool, logger)
	repo := repository.NewFlavorRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("InsertBatch fills ids and ListByDishIDs groups in order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		kungPao := insertDish(t, dishRepo, newDish("Kung Pao Chicken", CategorySichuan, "38", model.StatusOnSale))
		drink := insertDish(t, dishRepo, newDish("Sour Plum Drink", CategoryDrinks, "6", model.StatusOnSale))

		flavors := []model.DishFlavor{
			{DishID: kungPao, Name: "spice", Values: []string{"mild", "hot"}},
			{DishID: kungPao, Name: "peanuts", Values: []string{"yes", "no"}},
			{DishID: drink, Name: "ice", Values: []string{"none", "less", "normal"}},
		}
		err := repository.RunInTx(ctx, dishRepo, logger, func(tx pgx.Tx) error {
			return repo.InsertBatch(ctx, tx, flavors)
		})
		require.NoError(t, err)
		for _, f := range flavors {
			assert.Positive(t, f.ID)
		}

		grouped, err := repo.ListByDishIDs(ctx, []int64{kungPao, drink, 999})
		require.NoError(t, err)
		require.Len(t, grouped[kungPao], 2)
		assert.Equal(t, "spice", grouped[kungPao][0].Name)
		assert.Equal(t, []string{"mild", "hot"}, grouped[kungPao][0].Values)
		assert.Equal(t, "peanuts", grouped[kungPao][1].Name)
		require.Len(t, grouped[drink], 1)
		assert.Equal(t, []string{"none", "less", "normal"}, grouped[drink][0].Values)
		assert.NotContains(t, grouped, int64(999))
	})

	t.Run("ListByDishID returns an empty list for a dish without flavors", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		id := insertDish(t, dishRepo, newDish("Steamed Rice", CategoryStaples, "2", model.StatusOnSale))

		flavors, err := repo.ListByDishID(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, flavors)
		assert.Empty(t, flavors)
	})

	t.Run("DeleteByDishIDs removes only the named dishes' flavors", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		first := insertDish(t, dishRepo, newDish("Kung Pao Chicken", CategorySichuan, "38", model.StatusOnSale))
		second := insertDish(t, dishRepo, newDish("Mapo Tofu", CategorySichuan, "18", model.StatusOnSale))

		err := repository.RunInTx(ctx, dishRepo, logger, func(tx pgx.Tx) error {
			if err := repo.InsertBatch(ctx, tx, []model.DishFlavor{
				{DishID: first, Name: "spice", Values: []string{"hot"}},
				{DishID: second, Name: "spice", Values: []string{"numbing"}},
			}); err != nil {
				return err
			}
			deleted, err := repo.DeleteByDishIDs(ctx, tx, []int64{first})
			assert.Equal(t, int64(1), deleted)
			return err
		})
		require.NoError(t, err)

		assert.Equal(t, int64(0), CountRows(t, testDB.Pool, "dish_flavor", "dish_id = $1", first))
		assert.Equal(t, int64(1), CountRows(t, testDB.Pool, "dish_flavor", "dish_id = $1", second))
	})
}

func TestComboRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	dishRepo := repository.NewDishRepository(testDB.Pool, logger)
	repo := repository.NewComboRepository(logger)

	ctx := context.Background()

	CleanupDB(t, testDB.Pool)
	SeedCombo(t, testDB.Pool, 301, 1, 2)
	SeedCombo(t, testDB.Pool, 302, 2)
	SeedCombo(t, testDB.Pool, 303, 5)

	tests := []struct {
		name     string
		dishIDs  []int64
		expected []int64
	}{
		{name: "One dish in one combo", dishIDs: []int64{1}, expected: []int64{301}},
		{name: "Shared dish reported once per combo", dishIDs: []int64{1, 2}, expected: []int64{301, 302}},
		{name: "Dish in no combo", dishIDs: []int64{9}, expected: []int64{}},
		{name: "Empty input", dishIDs: []int64{}, expected: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repository.RunInTx(ctx, dishRepo, logger, func(tx pgx.Tx) error {
				combos, err := repo.ComboIDsByDishIDs(ctx, tx, tt.dishIDs)
				require.NoError(t, err)
				if len(tt.expected) == 0 {
					assert.Empty(t, combos)
				} else {
					assert.Equal(t, tt.expected, combos)
				}
				return nil
			})
			require.NoError(t, err)
		})
	}
}
