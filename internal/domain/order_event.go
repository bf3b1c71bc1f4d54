package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderCancelled = "order.cancelled"
)

type OrderCreatedEvent struct {
	OrderID   uint64          `json:"orderId"`
	UserID    uint64          `json:"userId"`
	Total     decimal.Decimal `json:"total"`
	Items     []LineItem      `json:"items"`
	CreatedAt time.Time       `json:"createdAt"`
}

type OrderUpdatedEvent struct {
	OrderID        uint64      `json:"orderId"`
	Status         OrderStatus `json:"status"`
	PreviousStatus OrderStatus `json:"previousStatus"`
	Fields         []string    `json:"fields"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type OrderCancelledEvent struct {
	OrderID        uint64      `json:"orderId"`
	UserID         uint64      `json:"userId"`
	PreviousStatus OrderStatus `json:"previousStatus"`
	CancelledAt    time.Time   `json:"cancelledAt"`
}
