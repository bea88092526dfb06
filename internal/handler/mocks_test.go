package handler

import (
	"context"

	"sky-catalog/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockDishService is a mock implementation of DishService.
type MockDishService struct {
	mock.Mock
}

func (m *MockDishService) CreateWithFlavors(ctx context.Context, req *model.DishRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDishService) UpdateWithFlavors(ctx context.Context, req *model.DishRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockDishService) DeleteBatch(ctx context.Context, ids []int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockDishService) SetStatus(ctx context.Context, id int64, status model.DishStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDishService) GetByID(ctx context.Context, id int64) (*model.DishView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DishView), args.Error(1)
}

func (m *MockDishService) PageQuery(ctx context.Context, query model.DishPageQuery) (model.PageResult[model.DishPageItem], error) {
	args := m.Called(ctx, query)
	return args.Get(0).(model.PageResult[model.DishPageItem]), args.Error(1)
}

func (m *MockDishService) ListByCategory(ctx context.Context, categoryID int64) ([]model.Dish, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Dish), args.Error(1)
}

// MockMenuService is a mock implementation of MenuService.
type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) ListForCustomer(ctx context.Context, categoryID int64) ([]model.DishView, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DishView), args.Error(1)
}

// MockShopService is a mock implementation of ShopService.
type MockShopService struct {
	mock.Mock
}

func (m *MockShopService) GetStatus(ctx context.Context) (model.ShopStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.ShopStatus), args.Error(1)
}

func (m *MockShopService) SetStatus(ctx context.Context, status model.ShopStatus) error {
	args := m.Called(ctx, status)
	return args.Error(0)
}
