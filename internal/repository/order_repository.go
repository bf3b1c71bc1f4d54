package repository

import (
	"context"

	"orders-service/internal/domain"
)

type ListFilter struct {
	Status domain.OrderStatus
	UserID uint64
}

// OrderRepository persists orders. FindByID returns (nil, nil) when the order does not exist.
// UpdateFields and Cancel only apply when the stored status still equals expected and return
// domain.ErrConcurrentUpdate otherwise.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	UpdateFields(ctx context.Context, order *domain.Order, expected domain.OrderStatus) error
	Cancel(ctx context.Context, order *domain.Order, expected domain.OrderStatus) error
	Stats(ctx context.Context) (*domain.OrderStats, error)
}
