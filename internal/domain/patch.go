package domain

import (
	"fmt"
	"unicode/utf8"
)

// Patch is a sparse update. Nil fields are left untouched; an empty Notes clears the notes.
type Patch struct {
	Status          *string
	ShippingAddress *string
	Notes           *string
}

func (p Patch) Empty() bool {
	return p.Status == nil && p.ShippingAddress == nil && p.Notes == nil
}

// Validate checks the patch shape without looking at any order.
func (p Patch) Validate() error {
	if p.Status != nil {
		if _, ok := ParseStatus(*p.Status); !ok {
			return &ValidationError{Field: "status", Message: fmt.Sprintf("must be one of %v", Statuses())}
		}
	}
	if p.ShippingAddress != nil {
		if *p.ShippingAddress == "" {
			return &ValidationError{Field: "shipping_address", Message: "must not be empty"}
		}
		if utf8.RuneCountInString(*p.ShippingAddress) > MaxShippingAddressLen {
			return &ValidationError{Field: "shipping_address", Message: fmt.Sprintf("must be at most %d characters", MaxShippingAddressLen)}
		}
	}
	if p.Notes != nil && utf8.RuneCountInString(*p.Notes) > MaxNotesLen {
		return &ValidationError{Field: "notes", Message: fmt.Sprintf("must be at most %d characters", MaxNotesLen)}
	}
	return nil
}

// Diff lists the fields a patch changed.
type Diff struct {
	Status          bool
	ShippingAddress bool
	Notes           bool
}

func (d Diff) Changed() bool {
	return d.Status || d.ShippingAddress || d.Notes
}

func (d Diff) Fields() []string {
	var out []string
	if d.Status {
		out = append(out, "status")
	}
	if d.ShippingAddress {
		out = append(out, "shipping_address")
	}
	if d.Notes {
		out = append(out, "notes")
	}
	return out
}

// ApplyPatch enforces the update policy and returns the candidate order. The receiver is never mutated,
// so a rejected patch leaves the order exactly as it was read.
func (o *Order) ApplyPatch(p Patch) (*Order, Diff, error) {
	if err := p.Validate(); err != nil {
		return nil, Diff{}, err
	}

	if p.Status != nil {
		next := OrderStatus(*p.Status)
		if next == StatusCancelled {
			return nil, Diff{}, ErrCancelViaUpdate
		}
		if !o.CanTransitionTo(next) {
			return nil, Diff{}, &TransitionError{From: o.Status, To: next}
		}
	}

	if p.ShippingAddress != nil && o.Status != StatusPending {
		return nil, Diff{}, ErrAddressLocked
	}

	if p.Notes != nil && o.Status.Terminal() {
		return nil, Diff{}, ErrOrderImmutable
	}

	candidate := o.Clone()
	var d Diff

	if p.Status != nil && OrderStatus(*p.Status) != o.Status {
		candidate.Status = OrderStatus(*p.Status)
		d.Status = true
	}
	if p.ShippingAddress != nil && *p.ShippingAddress != o.ShippingAddress {
		candidate.ShippingAddress = *p.ShippingAddress
		d.ShippingAddress = true
	}
	if p.Notes != nil {
		var next *string
		if *p.Notes != "" {
			n := *p.Notes
			next = &n
		}
		if !equalNotes(o.Notes, next) {
			candidate.Notes = next
			d.Notes = true
		}
	}

	if !d.Changed() {
		return nil, Diff{}, ErrNoChanges
	}
	return candidate, d, nil
}

func equalNotes(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
