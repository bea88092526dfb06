package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sky-catalog/internal/config"
	"sky-catalog/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Category ids seeded by SeedCategories.
const (
	CategorySichuan int64 = 7
	CategoryStaples int64 = 11
	CategoryDrinks  int64 = 12
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container, connects a pool to it and applies
// the catalog migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.ApplyMigrations(ctx, pool, logger); err != nil {
		pool.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedCategories inserts the dish categories used across the integration tests.
func SeedCategories(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	categories := []struct {
		id   int64
		name string
		sort int
	}{
		{CategorySichuan, "Sichuan", 1},
		{CategoryStaples, "Staples", 2},
		{CategoryDrinks, "Drinks", 3},
	}

	for _, c := range categories {
		_, err := pool.Exec(ctx,
			"INSERT INTO category (id, name, type, sort, status) VALUES ($1, $2, 1, $3, 1)",
			c.id, c.name, c.sort,
		)
		if err != nil {
			t.Fatalf("failed to seed category %d: %v", c.id, err)
		}
	}
}

// SeedCombo makes every dish in dishIDs a member of the combo.
func SeedCombo(t *testing.T, pool *pgxpool.Pool, comboID int64, dishIDs ...int64) {
	t.Helper()

	ctx := context.Background()

	for _, dishID := range dishIDs {
		_, err := pool.Exec(ctx,
			"INSERT INTO setmeal_dish (setmeal_id, dish_id, copies) VALUES ($1, $2, 1)",
			comboID, dishID,
		)
		if err != nil {
			t.Fatalf("failed to seed combo %d with dish %d: %v", comboID, dishID, err)
		}
	}
}

// CountRows returns the number of rows in table matching the optional where clause.
func CountRows(t *testing.T, pool *pgxpool.Pool, table, where string, args ...any) int64 {
	t.Helper()

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if where != "" {
		query += " WHERE " + where
	}

	var n int64
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"setmeal_dish", "dish_flavor", "dish", "category"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
