package services

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"orders-service/internal/domain"
)

type CreateOrderItem struct {
	BookID   uint64
	Quantity int64
	Price    decimal.Decimal
}

type CreateOrderInput struct {
	UserID          uint64
	Items           []CreateOrderItem
	ShippingAddress string
	Notes           *string
}

// Validate checks shape and bounds. It runs before any remote call.
func (in CreateOrderInput) Validate() error {
	if in.UserID == 0 {
		return &domain.ValidationError{Field: "user_id", Message: "is required"}
	}
	if len(in.Items) == 0 {
		return &domain.ValidationError{Field: "items", Message: "must contain at least one item"}
	}
	for i, item := range in.Items {
		if item.BookID == 0 {
			return &domain.ValidationError{Field: fmt.Sprintf("items.%d.book_id", i), Message: "is required"}
		}
		if item.Quantity < 1 {
			return &domain.ValidationError{Field: fmt.Sprintf("items.%d.quantity", i), Message: "must be at least 1"}
		}
		if item.Price.IsNegative() {
			return &domain.ValidationError{Field: fmt.Sprintf("items.%d.price", i), Message: "must be at least 0"}
		}
	}
	if in.ShippingAddress == "" {
		return &domain.ValidationError{Field: "shipping_address", Message: "is required"}
	}
	if utf8.RuneCountInString(in.ShippingAddress) > domain.MaxShippingAddressLen {
		return &domain.ValidationError{Field: "shipping_address", Message: fmt.Sprintf("must be at most %d characters", domain.MaxShippingAddressLen)}
	}
	if in.Notes != nil && utf8.RuneCountInString(*in.Notes) > domain.MaxNotesLen {
		return &domain.ValidationError{Field: "notes", Message: fmt.Sprintf("must be at most %d characters", domain.MaxNotesLen)}
	}
	return nil
}

func (in CreateOrderInput) itemRequests() []ItemRequest {
	out := make([]ItemRequest, 0, len(in.Items))
	for _, item := range in.Items {
		out = append(out, ItemRequest{BookID: item.BookID, Quantity: item.Quantity})
	}
	return out
}
