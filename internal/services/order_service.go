package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"orders-service/internal/domain"
	"orders-service/internal/infra"
	rabbit "orders-service/internal/infra/rabbitmq"
	"orders-service/internal/metrics"
	"orders-service/internal/repository"
)

const (
	defaultCartTimeout    = 2 * time.Second
	defaultPublishTimeout = 5 * time.Second
)

type OrderService struct {
	repo      repository.OrderRepository
	users     infra.UserClientInterface
	inventory *InventoryValidator
	cart      infra.CartClientInterface
	publisher rabbit.PublisherInterface
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	cartTimeout time.Duration
	now         func() time.Time
	pending     sync.WaitGroup
}

func NewOrderService(
	r repository.OrderRepository,
	users infra.UserClientInterface,
	inventory *InventoryValidator,
	cart infra.CartClientInterface,
	pub rabbit.PublisherInterface,
	m *metrics.Metrics,
) *OrderService {
	if pub == nil {
		pub = rabbit.NopPublisher{}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &OrderService{
		repo:        r,
		users:       users,
		inventory:   inventory,
		cart:        cart,
		publisher:   pub,
		metrics:     m,
		tracer:      otel.Tracer("orders-service/services"),
		cartTimeout: defaultCartTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *OrderService) SetCartTimeout(d time.Duration) {
	if d > 0 {
		s.cartTimeout = d
	}
}

// Wait blocks until every detached side effect has finished.
func (s *OrderService) Wait() {
	s.pending.Wait()
}

// CreateOrder validates the user and the inventory, prices the lines with the caller's prices and
// persists a pending order. Clearing the cart happens afterwards and cannot fail the creation.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(attribute.Int64("user_id", int64(in.UserID)), attribute.Int("items", len(in.Items))))
	defer span.End()
	logger := zerolog.Ctx(ctx).With().Uint64("user_id", in.UserID).Logger()

	if err := in.Validate(); err != nil {
		s.reject(span, "validation", err)
		return nil, err
	}

	user, err := s.users.GetUser(ctx, in.UserID)
	if err != nil || user == nil {
		if err == nil || errors.Is(err, infra.ErrNotFound) {
			logger.Info().Msg("order rejected: user does not exist")
			s.reject(span, "user_not_found", domain.ErrUserNotFound)
			return nil, domain.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("users service unavailable")
		upstream := &domain.UpstreamError{Service: "users", Err: err}
		s.reject(span, "user_unavailable", upstream)
		return nil, upstream
	}
	span.AddEvent("user validated")

	inventory := s.inventory.Validate(ctx, in.itemRequests())
	if !inventory.Valid {
		logger.Info().Strs("problems", inventory.Errors).Msg("order rejected: inventory validation failed")
		invErr := &domain.InventoryError{Problems: inventory.Errors}
		s.reject(span, "inventory", invErr)
		return nil, invErr
	}
	span.AddEvent("inventory validated")

	items := make([]domain.LineItem, 0, len(in.Items))
	for _, item := range in.Items {
		title := ""
		if book, ok := inventory.Books[item.BookID]; ok {
			title = book.Title
		}
		items = append(items, domain.NewLineItem(item.BookID, title, item.Quantity, item.Price))
	}

	notes := in.Notes
	if notes != nil && *notes == "" {
		notes = nil
	}
	order := domain.NewOrder(in.UserID, items, in.ShippingAddress, notes)

	if err := s.repo.Save(ctx, order); err != nil {
		logger.Error().Err(err).Msg("failed to persist order")
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist order")
		return nil, fmt.Errorf("persist order: %w", err)
	}
	s.metrics.OrdersCreated.Inc()
	span.SetAttributes(attribute.Int64("order_id", int64(order.ID)))
	logger.Info().Uint64("order_id", order.ID).Str("total", order.Total.StringFixed(2)).Msg("order created")

	s.detach(ctx, "cart_clear", s.cartTimeout, func(ctx context.Context) error {
		return s.cart.ClearCart(ctx, order.UserID)
	})
	s.publish(ctx, domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		Items:     order.Items,
		CreatedAt: order.CreatedAt,
	})

	return order, nil
}

func (s *OrderService) GetOrderById(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", id, err)
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	if !o.TotalConsistent() {
		zerolog.Ctx(ctx).Error().
			Uint64("order_id", o.ID).
			Str("stored_total", o.Total.String()).
			Str("computed_total", o.CalculateTotal().String()).
			Msg("order total does not match its items")
	}
	return o, nil
}

// ListOrders returns every order, newest first, optionally restricted to one status.
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]domain.Order, error) {
	filter := repository.ListFilter{}
	if status != "" {
		st, ok := domain.ParseStatus(status)
		if !ok {
			return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("must be one of %v", domain.Statuses())}
		}
		filter.Status = st
	}
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uint64) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx, repository.ListFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("list orders for user %d: %w", userID, err)
	}
	return orders, nil
}

// UpdateOrder applies a sparse patch. The stored order is only written when at least one field
// changes and only if its status has not moved since it was read.
func (s *OrderService) UpdateOrder(ctx context.Context, id uint64, patch domain.Patch) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateOrder", trace.WithAttributes(attribute.Int64("order_id", int64(id))))
	defer span.End()
	logger := zerolog.Ctx(ctx).With().Uint64("order_id", id).Logger()

	current, err := s.GetOrderById(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate, diff, err := current.ApplyPatch(patch)
	if err != nil {
		logger.Info().Err(err).Str("status", current.Status.String()).Msg("order update rejected")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.repo.UpdateFields(ctx, candidate, current.Status); err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, err
		}
		logger.Error().Err(err).Msg("failed to persist order update")
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}

	if diff.Status {
		s.metrics.StatusTransitions.WithLabelValues(current.Status.String(), candidate.Status.String()).Inc()
	}
	logger.Info().
		Strs("fields", diff.Fields()).
		Str("from", current.Status.String()).
		Str("to", candidate.Status.String()).
		Msg("order updated")

	s.publish(ctx, domain.EventOrderUpdated, domain.OrderUpdatedEvent{
		OrderID:        candidate.ID,
		Status:         candidate.Status,
		PreviousStatus: current.Status,
		Fields:         diff.Fields(),
		UpdatedAt:      candidate.UpdatedAt,
	})
	return candidate, nil
}

// CancelOrder moves a pending or processing order to cancelled and soft-deletes it in one write.
func (s *OrderService) CancelOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder", trace.WithAttributes(attribute.Int64("order_id", int64(id))))
	defer span.End()
	logger := zerolog.Ctx(ctx).With().Uint64("order_id", id).Logger()

	order, err := s.GetOrderById(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if err := order.Cancel(s.now()); err != nil {
		logger.Info().Err(err).Msg("order cancellation rejected")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.repo.Cancel(ctx, order, previous); err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, err
		}
		logger.Error().Err(err).Msg("failed to persist order cancellation")
		return nil, fmt.Errorf("cancel order %d: %w", id, err)
	}

	s.metrics.StatusTransitions.WithLabelValues(previous.String(), domain.StatusCancelled.String()).Inc()
	logger.Info().Str("from", previous.String()).Msg("order cancelled")

	s.publish(ctx, domain.EventOrderCancelled, domain.OrderCancelledEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		PreviousStatus: previous,
		CancelledAt:    *order.DeletedAt,
	})
	return order, nil
}

func (s *OrderService) Stats(ctx context.Context) (*domain.OrderStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	return stats, nil
}

func (s *OrderService) reject(span trace.Span, reason string, err error) {
	s.metrics.OrdersRejected.WithLabelValues(reason).Inc()
	span.SetStatus(codes.Error, err.Error())
}

func (s *OrderService) publish(ctx context.Context, pattern string, event any) {
	s.detach(ctx, "publish_"+pattern, defaultPublishTimeout, func(ctx context.Context) error {
		return s.publisher.Publish(ctx, pattern, event)
	})
}

// detach runs a best-effort task outside the request. The task gets its own deadline and its
// error is read from a dedicated channel and only logged: it never reaches the caller.
// The task counts as pending until it has returned, even past its deadline.
func (s *OrderService) detach(ctx context.Context, name string, timeout time.Duration, task func(context.Context) error) {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}
	spanCtx := trace.SpanContextFromContext(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		taskCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		taskCtx = logger.WithContext(trace.ContextWithSpanContext(taskCtx, spanCtx))

		errc := make(chan error, 1)
		go func() { errc <- task(taskCtx) }()

		var err error
		select {
		case err = <-errc:
		case <-taskCtx.Done():
			err = taskCtx.Err()
			// the task may ignore its context; Wait must still cover it
			<-errc
		}

		switch {
		case err == nil:
			logger.Debug().Str("task", name).Msg("side effect completed")
		case errors.Is(err, infra.ErrServiceDisabled):
			logger.Info().Str("task", name).Msg("side effect skipped: service not configured")
		default:
			s.metrics.SideEffectFailures.WithLabelValues(name).Inc()
			logger.Warn().Err(err).Str("task", name).Msg("side effect failed, order result unaffected")
		}
	}()
}
