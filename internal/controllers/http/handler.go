package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"orders-service/internal/domain"
	"orders-service/internal/services"
)

const (
	ServiceName    = "orders-service"
	ServiceVersion = "1.0.0"

	userOrdersTTL = 10 * time.Second
)

type Handler struct {
	service *services.OrderService
	rdb     *redis.Client
}

// NewHandler builds the order handler. rdb may be nil, in which case user order lists are not cached.
func NewHandler(s *services.OrderService, rdb *redis.Client) *Handler {
	return &Handler{service: s, rdb: rdb}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Info)
	r.GET("/health", h.Health)

	orders := r.Group("/orders")
	orders.GET("", h.ListOrders)
	orders.POST("", h.CreateOrder)
	orders.GET("/stats/summary", h.Stats)
	orders.GET("/user/:user_id", h.ListUserOrders)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id", h.UpdateOrder)
	orders.PATCH("/:id", h.UpdateOrder)
	orders.DELETE("/:id", h.CancelOrder)
}

func (h *Handler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, ServiceInfo{Service: ServiceName, Version: ServiceVersion, Status: "running"})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateUserOrders(c, order.UserID)
	c.JSON(http.StatusCreated, gin.H{"data": order})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrderById(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nonNil(orders)})
}

func (h *Handler) ListUserOrders(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	key := userOrdersKey(userID)

	if h.rdb != nil {
		if b, err := h.rdb.Get(ctx, key).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		} else if err != redis.Nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("user orders cache read failed")
		}
	}

	orders, err := h.service.ListUserOrders(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	body, err := json.Marshal(gin.H{"data": nonNil(orders)})
	if err != nil {
		respondError(c, err)
		return
	}
	if h.rdb != nil {
		if err := h.rdb.Set(ctx, key, body, userOrdersTTL).Err(); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("user orders cache write failed")
		}
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	order, err := h.service.UpdateOrder(c.Request.Context(), id, req.toPatch())
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateUserOrders(c, order.UserID)
	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.CancelOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateUserOrders(c, order.UserID)
	c.JSON(http.StatusOK, gin.H{"data": CancelOrderResponse{Message: "Order cancelled successfully", Order: order}})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (h *Handler) invalidateUserOrders(c *gin.Context, userID uint64) {
	if h.rdb == nil {
		return
	}
	ctx := c.Request.Context()
	if err := h.rdb.Del(ctx, userOrdersKey(userID)).Err(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Uint64("user_id", userID).Msg("user orders cache invalidation failed")
	}
}

func userOrdersKey(userID uint64) string {
	return "orders:user:" + strconv.FormatUint(userID, 10)
}

func parseID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+param)
		return 0, false
	}
	return id, true
}

func nonNil(orders []domain.Order) []domain.Order {
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}
