package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(s string) *string { return &s }

func pendingOrder() *Order {
	o := NewOrder(1, []LineItem{NewLineItem(1, "a", 1, d("1"))}, "Old address 1", sp("old"))
	o.ID = 10
	return o
}

func TestOrder_ApplyPatch(t *testing.T) {
	tests := []struct {
		name    string
		status  OrderStatus
		patch   Patch
		wantErr error
		wantAs  any
		want    func(t *testing.T, o *Order, diff Diff)
	}{
		{
			name:    "cancel via update",
			status:  StatusProcessing,
			patch:   Patch{Status: sp("cancelled")},
			wantErr: ErrCancelViaUpdate,
		},
		{
			name:   "unknown status",
			status: StatusPending,
			patch:  Patch{Status: sp("teleported")},
			wantAs: new(*ValidationError),
		},
		{
			name:   "self transition is illegal",
			status: StatusPending,
			patch:  Patch{Status: sp("pending")},
			wantAs: new(*TransitionError),
		},
		{
			name:   "skip a step",
			status: StatusPending,
			patch:  Patch{Status: sp("delivered")},
			wantAs: new(*TransitionError),
		},
		{
			name:    "address after pending",
			status:  StatusShipped,
			patch:   Patch{ShippingAddress: sp("New address 2")},
			wantErr: ErrAddressLocked,
		},
		{
			name:    "notes on cancelled order",
			status:  StatusCancelled,
			patch:   Patch{Notes: sp("too late")},
			wantErr: ErrOrderImmutable,
		},
		{
			name:    "empty patch",
			status:  StatusPending,
			patch:   Patch{},
			wantErr: ErrNoChanges,
		},
		{
			name:    "same values",
			status:  StatusPending,
			patch:   Patch{ShippingAddress: sp("Old address 1"), Notes: sp("old")},
			wantErr: ErrNoChanges,
		},
		{
			name:   "address too long",
			status: StatusPending,
			patch:  Patch{ShippingAddress: sp(strings.Repeat("a", MaxShippingAddressLen+1))},
			wantAs: new(*ValidationError),
		},
		{
			name:   "status and address while pending",
			status: StatusPending,
			patch:  Patch{Status: sp("processing"), ShippingAddress: sp("New address 2")},
			want: func(t *testing.T, o *Order, diff Diff) {
				assert.Equal(t, StatusProcessing, o.Status)
				assert.Equal(t, "New address 2", o.ShippingAddress)
				assert.Equal(t, []string{"status", "shipping_address"}, diff.Fields())
			},
		},
		{
			name:   "clear notes while shipped",
			status: StatusShipped,
			patch:  Patch{Notes: sp("")},
			want: func(t *testing.T, o *Order, diff Diff) {
				assert.Nil(t, o.Notes)
				assert.Equal(t, []string{"notes"}, diff.Fields())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := pendingOrder()
			o.Status = tt.status
			before := o.Clone()

			got, diff, err := o.ApplyPatch(tt.patch)
			assert.Equal(t, before, o, "receiver must never be mutated")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantAs != nil:
				assert.ErrorAs(t, err, tt.wantAs)
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				tt.want(t, got, diff)
			}
		})
	}
}
