package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"orders-service/internal/domain"
	"orders-service/internal/infra"
	"orders-service/internal/repository"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockUserClient struct {
	mock.Mock
}

type MockCatalogClient struct {
	mock.Mock
}

type MockCartClient struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message any) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockUserClient) GetUser(ctx context.Context, id uint64) (*infra.UserInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.UserInfo), args.Error(1)
}

func (m *MockCatalogClient) GetBook(ctx context.Context, id uint64) (*infra.BookInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.BookInfo), args.Error(1)
}

func (m *MockCartClient) ClearCart(ctx context.Context, userID uint64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter repository.ListFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateFields(ctx context.Context, order *domain.Order, expected domain.OrderStatus) error {
	args := m.Called(ctx, order, expected)
	return args.Error(0)
}

func (m *MockOrderRepository) Cancel(ctx context.Context, order *domain.Order, expected domain.OrderStatus) error {
	args := m.Called(ctx, order, expected)
	return args.Error(0)
}

func (m *MockOrderRepository) Stats(ctx context.Context) (*domain.OrderStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderStats), args.Error(1)
}
