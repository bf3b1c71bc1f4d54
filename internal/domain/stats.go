package domain

import "github.com/shopspring/decimal"

type OrderStats struct {
	TotalOrders  int64           `json:"total_orders"`
	Pending      int64           `json:"pending"`
	Processing   int64           `json:"processing"`
	Shipped      int64           `json:"shipped"`
	Delivered    int64           `json:"delivered"`
	Cancelled    int64           `json:"cancelled"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// SetCount records the number of orders in a status and folds it into the total.
func (s *OrderStats) SetCount(status OrderStatus, n int64) {
	switch status {
	case StatusPending:
		s.Pending = n
	case StatusProcessing:
		s.Processing = n
	case StatusShipped:
		s.Shipped = n
	case StatusDelivered:
		s.Delivered = n
	case StatusCancelled:
		s.Cancelled = n
	default:
		return
	}
	s.TotalOrders += n
}
