package service

import (
	"context"
	"time"

	"sky-catalog/internal/cache"
	"sky-catalog/internal/events"
	"sky-catalog/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockDishRepository is a mock implementation of DishRepository.
type MockDishRepository struct {
	mock.Mock
}

func (m *MockDishRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDishRepository) Insert(ctx context.Context, tx pgx.Tx, dish *model.Dish) (int64, error) {
	args := m.Called(ctx, tx, dish)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDishRepository) Update(ctx context.Context, tx pgx.Tx, dish *model.Dish) (bool, error) {
	args := m.Called(ctx, tx, dish)
	return args.Bool(0), args.Error(1)
}

func (m *MockDishRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.DishStatus, actor int64) (bool, error) {
	args := m.Called(ctx, tx, id, status, actor)
	return args.Bool(0), args.Error(1)
}

func (m *MockDishRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Dish, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dish), args.Error(1)
}

func (m *MockDishRepository) GetByIDsForUpdate(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.Dish, error) {
	args := m.Called(ctx, tx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Dish), args.Error(1)
}

func (m *MockDishRepository) DeleteByIDs(ctx context.Context, tx pgx.Tx, ids []int64) (int64, error) {
	args := m.Called(ctx, tx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDishRepository) GetByID(ctx context.Context, id int64) (*model.Dish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dish), args.Error(1)
}

func (m *MockDishRepository) ListByCategory(ctx context.Context, categoryID int64, status model.DishStatus) ([]model.Dish, error) {
	args := m.Called(ctx, categoryID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Dish), args.Error(1)
}

func (m *MockDishRepository) PageQuery(ctx context.Context, query model.DishPageQuery) (model.PageResult[model.DishPageItem], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(model.PageResult[model.DishPageItem]), args.Error(1)
}

// MockFlavorRepository is a mock implementation of FlavorRepository.
type MockFlavorRepository struct {
	mock.Mock
}

func (m *MockFlavorRepository) InsertBatch(ctx context.Context, tx pgx.Tx, flavors []model.DishFlavor) error {
	args := m.Called(ctx, tx, flavors)
	return args.Error(0)
}

func (m *MockFlavorRepository) DeleteByDishIDs(ctx context.Context, tx pgx.Tx, dishIDs []int64) (int64, error) {
	args := m.Called(ctx, tx, dishIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlavorRepository) ListByDishID(ctx context.Context, dishID int64) ([]model.DishFlavor, error) {
	args := m.Called(ctx, dishID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DishFlavor), args.Error(1)
}

func (m *MockFlavorRepository) ListByDishIDs(ctx context.Context, dishIDs []int64) (map[int64][]model.DishFlavor, error) {
	args := m.Called(ctx, dishIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]model.DishFlavor), args.Error(1)
}

// MockComboRepository is a mock implementation of ComboRepository.
type MockComboRepository struct {
	mock.Mock
}

func (m *MockComboRepository) ComboIDsByDishIDs(ctx context.Context, tx pgx.Tx, dishIDs []int64) ([]int64, error) {
	args := m.Called(ctx, tx, dishIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockCache is a mock implementation of cache.Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) cache.Lookup {
	args := m.Called(ctx, key)
	return args.Get(0).(cache.Lookup)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) cache.Outcome {
	args := m.Called(ctx, key, value, ttl)
	return args.Get(0).(cache.Outcome)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) cache.Outcome {
	args := m.Called(ctx, keys)
	return args.Get(0).(cache.Outcome)
}

func (m *MockCache) DeleteByPrefix(ctx context.Context, prefix string) cache.Outcome {
	args := m.Called(ctx, prefix)
	return args.Get(0).(cache.Outcome)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.DishEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockShopStore is a mock implementation of cache.ShopStore.
type MockShopStore struct {
	mock.Mock
}

func (m *MockShopStore) GetStatus(ctx context.Context) (model.ShopStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.ShopStatus), args.Error(1)
}

func (m *MockShopStore) SetStatus(ctx context.Context, status model.ShopStatus) error {
	args := m.Called(ctx, status)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = args.Error(0) == nil
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
