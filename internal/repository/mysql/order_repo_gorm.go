package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"orders-service/internal/domain"
	"orders-service/internal/repository"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	if len(order.Items) == 0 {
		return errors.New("refusing to save order without items")
	}

	result := r.db.WithContext(ctx).Create(order)
	if result.Error != nil {
		log.Error().Err(result.Error).Uint64("user_id", order.UserID).Msg("order save failed")
		return fmt.Errorf("save order: %w", result.Error)
	}
	if order.ID == 0 {
		return errors.New("failed to assign order ID")
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, filter repository.ListFilter) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}

	out := make([]domain.Order, 0)
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

func (r *orderRepo) UpdateFields(ctx context.Context, order *domain.Order, expected domain.OrderStatus) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", order.ID, expected).
		Updates(map[string]any{
			"status":           order.Status,
			"shipping_address": order.ShippingAddress,
			"notes":            order.Notes,
			"updated_at":       now,
		})
	if result.Error != nil {
		return fmt.Errorf("update order %d: %w", order.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		log.Warn().Uint64("order_id", order.ID).Str("expected_status", expected.String()).Msg("order update lost a race")
		return domain.ErrConcurrentUpdate
	}
	order.UpdatedAt = now
	return nil
}

func (r *orderRepo) Cancel(ctx context.Context, order *domain.Order, expected domain.OrderStatus) error {
	if order.DeletedAt == nil {
		return errors.New("cancel requires a soft-deletion timestamp")
	}
	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", order.ID, expected).
		Updates(map[string]any{
			"status":     domain.StatusCancelled,
			"deleted_at": *order.DeletedAt,
			"updated_at": order.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("cancel order %d: %w", order.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		log.Warn().Uint64("order_id", order.ID).Str("expected_status", expected.String()).Msg("order cancellation lost a race")
		return domain.ErrConcurrentUpdate
	}
	return nil
}

func (r *orderRepo) Stats(ctx context.Context) (*domain.OrderStats, error) {
	var counts []struct {
		Status domain.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	var revenue struct {
		Revenue decimal.Decimal
	}
	err = r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Select("COALESCE(SUM(total), 0) AS revenue").
		Where("status IN ?", domain.RevenueStatuses()).
		Scan(&revenue).Error
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	stats := &domain.OrderStats{TotalRevenue: revenue.Revenue.Round(2)}
	for _, c := range counts {
		stats.SetCount(c.Status, c.Count)
	}
	return stats, nil
}
