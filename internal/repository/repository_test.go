package repository

import (
	"context"
	"testing"
	"time"

	"sky-catalog/internal/database"
	"sky-catalog/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the catalog schema and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.ApplyMigrations(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// newDish returns an unsaved dish with audit fields stamped.
func newDish(name string, categoryID int64, price string, status model.DishStatus) model.Dish {
	now := time.Now().UTC().Truncate(time.Microsecond)
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

// seedDishes inserts dishes in one committed transaction and returns their ids.
func seedDishes(t *testing.T, repo DishRepository, dishes ...model.Dish) []int64 {
	t.Helper()
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	ids := make([]int64, len(dishes))
	for i := range dishes {
		ids[i], err = repo.Insert(ctx, tx, &dishes[i])
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit(ctx))

	return ids
}

func seedCategory(t *testing.T, pool *pgxpool.Pool, id int64, name string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO category (id, name) VALUES ($1, $2)`, id, name)
	require.NoError(t, err)
}

func seedCombo(t *testing.T, pool *pgxpool.Pool, setmealID, dishID int64) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO setmeal_dish (setmeal_id, dish_id) VALUES ($1, $2)`, setmealID, dishID)
	require.NoError(t, err)
}
