package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewOrder(t *testing.T) {
	o := NewOrder(7, []LineItem{
		NewLineItem(1, "Dune", 2, d("10.00")),
		NewLineItem(2, "", 1, d("5.50")),
	}, "Main St 1", nil)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "25.50", o.Total.StringFixed(2))
	assert.Equal(t, UnknownTitle, o.Items[1].Title)
	assert.True(t, o.TotalConsistent())
}

func TestOrder_CalculateTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
		want  string
	}{
		{"empty", nil, "0"},
		{"rounds half away from zero", []LineItem{NewLineItem(1, "a", 1, d("0.125"))}, "0.13"},
		{"no float drift", []LineItem{NewLineItem(1, "a", 1, d("0.1")), NewLineItem(2, "b", 1, d("0.2"))}, "0.3"},
		{"free items", []LineItem{NewLineItem(1, "a", 5, d("0"))}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Items: tt.items}
			assert.True(t, d(tt.want).Equal(o.CalculateTotal()), "got %s", o.CalculateTotal())
			assert.True(t, d(tt.want).Equal(o.CalculateTotal()), "must be pure")
		})
	}
}

func TestOrder_TotalConsistent(t *testing.T) {
	o := NewOrder(1, []LineItem{NewLineItem(1, "a", 3, d("1.10"))}, "x", nil)
	assert.True(t, o.TotalConsistent())

	o.Total = d("3.31")
	assert.False(t, o.TotalConsistent())
}

func TestOrder_Cancel(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, s := range []OrderStatus{StatusPending, StatusProcessing} {
		o := &Order{Status: s}
		require.NoError(t, o.Cancel(now))
		assert.Equal(t, StatusCancelled, o.Status)
		require.NotNil(t, o.DeletedAt)
		assert.Equal(t, now, *o.DeletedAt)
	}

	for _, s := range []OrderStatus{StatusShipped, StatusDelivered, StatusCancelled} {
		o := &Order{Status: s}
		err := o.Cancel(now)
		var cErr *CancellationError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, s, cErr.Status)
		assert.Contains(t, err.Error(), string(s))
		assert.Equal(t, s, o.Status)
		assert.Nil(t, o.DeletedAt)
	}
}

func TestOrder_CloneIsDeep(t *testing.T) {
	notes := "fragile"
	o := NewOrder(1, []LineItem{NewLineItem(1, "a", 1, d("1"))}, "x", &notes)

	c := o.Clone()
	*c.Notes = "changed"
	c.Items[0].Title = "changed"

	assert.Equal(t, "fragile", *o.Notes)
	assert.Equal(t, "a", o.Items[0].Title)
}

func TestOrderStats_SetCount(t *testing.T) {
	var s OrderStats
	s.SetCount(StatusPending, 2)
	s.SetCount(StatusCancelled, 3)
	s.SetCount(OrderStatus("unknown"), 10)

	assert.Equal(t, int64(2), s.Pending)
	assert.Equal(t, int64(3), s.Cancelled)
	assert.Equal(t, int64(5), s.TotalOrders)
}
