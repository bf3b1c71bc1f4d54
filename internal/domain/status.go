package domain

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// Statuses lists every status in lifecycle order.
func Statuses() []OrderStatus {
	return []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
}

func ParseStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	_, ok := transitions[st]
	return st, ok
}

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RevenueStatuses are the statuses whose totals count as revenue.
func RevenueStatuses() []OrderStatus {
	return []OrderStatus{StatusShipped, StatusDelivered}
}
