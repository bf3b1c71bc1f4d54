package http

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"orders-service/internal/domain"
	"orders-service/internal/services"
)

type CreateOrderItemRequest struct {
	BookID   uint64           `json:"book_id"`
	Quantity int64            `json:"quantity"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
}

type CreateOrderRequest struct {
	UserID          uint64                   `json:"user_id" binding:"required"`
	Items           []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string                   `json:"shipping_address" binding:"required"`
	Notes           *string                  `json:"notes"`
}

func (r CreateOrderRequest) toInput() services.CreateOrderInput {
	items := make([]services.CreateOrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, services.CreateOrderItem{
			BookID:   item.BookID,
			Quantity: item.Quantity,
			Price:    *item.Price,
		})
	}
	return services.CreateOrderInput{
		UserID:          r.UserID,
		Items:           items,
		ShippingAddress: r.ShippingAddress,
		Notes:           r.Notes,
	}
}

// NullableString remembers whether the key was present, so an explicit null can be told apart
// from an omitted field.
type NullableString struct {
	Present bool
	Value   *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Present = true
	return json.Unmarshal(b, &n.Value)
}

// UpdateOrderRequest is sparse: absent fields are left untouched. A null status or address is
// ignored, a null notes clears the notes like an empty string does.
type UpdateOrderRequest struct {
	Status          *string        `json:"status"`
	ShippingAddress *string        `json:"shipping_address"`
	Notes           NullableString `json:"notes"`
}

func (r UpdateOrderRequest) toPatch() domain.Patch {
	p := domain.Patch{
		Status:          r.Status,
		ShippingAddress: r.ShippingAddress,
	}
	if r.Notes.Present {
		cleared := ""
		p.Notes = &cleared
		if r.Notes.Value != nil {
			p.Notes = r.Notes.Value
		}
	}
	return p
}

type CancelOrderResponse struct {
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

type ServiceInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
}
