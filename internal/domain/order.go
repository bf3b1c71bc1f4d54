package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxShippingAddressLen = 500
	MaxNotesLen           = 1000

	UnknownTitle = "Unknown"
)

type LineItem struct {
	BookID   uint64          `json:"book_id"`
	Title    string          `json:"title"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          uint64          `json:"user_id" gorm:"not null;index"`
	Status          OrderStatus     `json:"status" gorm:"type:enum('pending','processing','shipped','delivered','cancelled');default:'pending';index"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Items           []LineItem      `json:"items" gorm:"type:json;serializer:json"`
	ShippingAddress string          `json:"shipping_address" gorm:"size:500"`
	Notes           *string         `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty" gorm:"index"`
}

// NewOrder builds a pending order and initializes its total from the items.
func NewOrder(userID uint64, items []LineItem, shippingAddress string, notes *string) *Order {
	o := &Order{
		UserID:          userID,
		Status:          StatusPending,
		Items:           items,
		ShippingAddress: shippingAddress,
		Notes:           notes,
	}
	o.Total = o.CalculateTotal()
	return o
}

// NewLineItem prices a line with the caller supplied unit price.
func NewLineItem(bookID uint64, title string, quantity int64, price decimal.Decimal) LineItem {
	if title == "" {
		title = UnknownTitle
	}
	return LineItem{
		BookID:   bookID,
		Title:    title,
		Quantity: quantity,
		Price:    price,
		Subtotal: price.Mul(decimal.NewFromInt(quantity)),
	}
}

// CalculateTotal recomputes the order total from its items. It has no side effects.
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return total.Round(2)
}

// TotalConsistent reports whether the stored total still matches the items.
func (o *Order) TotalConsistent() bool {
	return o.Total.Equal(o.CalculateTotal())
}

func (o *Order) CanTransitionTo(next OrderStatus) bool {
	return o.Status.CanTransitionTo(next)
}

func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending || o.Status == StatusProcessing
}

func (o *Order) IsDeleted() bool {
	return o.DeletedAt != nil
}

// Cancel moves the order to cancelled and flags it soft-deleted in one step.
func (o *Order) Cancel(now time.Time) error {
	if !o.CanBeCancelled() {
		return &CancellationError{Status: o.Status}
	}
	o.Status = StatusCancelled
	o.DeletedAt = &now
	o.UpdatedAt = now
	return nil
}

// Clone returns a deep copy so callers can build candidate states without touching the original.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]LineItem(nil), o.Items...)
	if o.Notes != nil {
		n := *o.Notes
		c.Notes = &n
	}
	if o.DeletedAt != nil {
		d := *o.DeletedAt
		c.DeletedAt = &d
	}
	return &c
}
