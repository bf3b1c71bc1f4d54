package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrUserNotFound  = errors.New("user does not exist")

	ErrCancelViaUpdate  = errors.New("use DELETE /orders/{id} to cancel an order")
	ErrNoChanges        = errors.New("at least one value must change")
	ErrAddressLocked    = errors.New("can only update shipping address for pending orders")
	ErrOrderImmutable   = errors.New("order is in a terminal status and can no longer be modified")
	ErrConcurrentUpdate = errors.New("order was modified concurrently, reload and retry")
)

// ValidationError reports malformed input, detected before any remote call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InventoryError carries every line item problem found in one validation pass.
type InventoryError struct {
	Problems []string
}

func (e *InventoryError) Error() string {
	return "inventory validation failed: " + strings.Join(e.Problems, "; ")
}

type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from '%s' to '%s'", e.From, e.To)
}

type CancellationError struct {
	Status OrderStatus
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("cannot cancel order with status '%s'. Only 'pending' or 'processing' orders can be cancelled.", e.Status)
}

// UpstreamError wraps a failed call to a collaborating service.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
