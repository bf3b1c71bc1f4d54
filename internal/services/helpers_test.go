package services

import (
	"time"

	"github.com/shopspring/decimal"

	"orders-service/internal/domain"
	"orders-service/internal/infra"
	"orders-service/internal/metrics"
	"orders-service/internal/mocks"
)

const (
	TestUserID  = uint64(42)
	TestOrderID = uint64(1)
	TestAddress = "Calle 1 #2-3, Bogota"
)

type fixture struct {
	repo      *mocks.MockOrderRepository
	users     *mocks.MockUserClient
	catalog   *mocks.MockCatalogClient
	cart      *mocks.MockCartClient
	publisher *mocks.MockPublisher
	metrics   *metrics.Metrics
	service   *OrderService
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(mocks.MockOrderRepository),
		users:     new(mocks.MockUserClient),
		catalog:   new(mocks.MockCatalogClient),
		cart:      new(mocks.MockCartClient),
		publisher: new(mocks.MockPublisher),
		metrics:   metrics.NewNop(),
	}
	inventory := NewInventoryValidator(f.catalog, 4, f.metrics)
	f.service = NewOrderService(f.repo, f.users, inventory, f.cart, f.publisher, f.metrics)
	return f
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func stock(n int64) *int64 {
	return &n
}

func CreateMockBook(id uint64, title string, available *int64) *infra.BookInfo {
	return &infra.BookInfo{ID: id, Title: title, Stock: available}
}

func CreateMockOrder(id uint64, status domain.OrderStatus) *domain.Order {
	o := domain.NewOrder(TestUserID, []domain.LineItem{
		domain.NewLineItem(1, "Dune", 2, money("10.00")),
		domain.NewLineItem(2, "Emma", 1, money("5.50")),
	}, TestAddress, nil)
	o.ID = id
	o.Status = status
	o.CreatedAt = time.Now().Add(-time.Hour)
	o.UpdatedAt = o.CreatedAt
	return o
}

func strPtr(s string) *string {
	return &s
}
