// Package cart models the coupon applied to a cart as an immutable value.
//
// Every transition returns a new Cart; the receiver is never modified, so a
// Cart can be shared between goroutines without locking.
package cart

import (
	"slices"
	"time"

	"github.com/xenking/storefront/internal/domain/coupon"
)

// State is the coupon-on-cart state.
type State uint8

const (
	NoneApplied State = iota
	Applied
)

func (s State) String() string {
	if s == Applied {
		return "APPLIED"
	}
	return "NONE_APPLIED"
}

// Invalidated is emitted when a previously applied coupon stops qualifying
// after the selection or the clock changed.
type Invalidated struct {
	Code   string
	Reason coupon.Reason
}

// Cart is a selection plus the coupon applied to it, if any.
type Cart struct {
	items    []coupon.LineItem
	applied  *coupon.Coupon
	discount coupon.DiscountResult
}

// New returns a cart in NONE_APPLIED holding a copy of items.
func New(items []coupon.LineItem) Cart {
	return Cart{items: slices.Clone(items)}
}

// State reports whether a coupon is applied.
func (c Cart) State() State {
	if c.applied != nil {
		return Applied
	}
	return NoneApplied
}

// Items returns a copy of the selection.
func (c Cart) Items() []coupon.LineItem {
	return slices.Clone(c.items)
}

// AppliedCode returns the applied coupon's code, or "" in NONE_APPLIED.
func (c Cart) AppliedCode() string {
	if c.applied == nil {
		return ""
	}
	return c.applied.Code
}

// Discount returns the result computed at the last transition. It is the
// zero result in NONE_APPLIED.
func (c Cart) Discount() coupon.DiscountResult {
	return c.discount
}

// Subtotal sums every selected item.
func (c Cart) Subtotal() int64 {
	return coupon.Subtotal(c.items)
}

// Total is the subtotal minus the applied discount.
func (c Cart) Total() int64 {
	return c.Subtotal() - c.discount.DiscountAmount
}

// Apply looks the code up in snap and applies it if it qualifies for the
// current selection at now. On rejection the cart is returned unchanged
// together with the reason.
func (c Cart) Apply(snap *Snapshot, code string, now time.Time) (Cart, coupon.Reason) {
	cp, ok := snap.Lookup(code)
	if !ok {
		return c, coupon.ReasonUnknownCode
	}
	res := coupon.Evaluate(cp, c.items, snap.Index, now)
	if !res.Applied() {
		return c, res.Rejection
	}
	applied := *cp
	return Cart{items: c.items, applied: &applied, discount: res}, coupon.ReasonNone
}

// WithItems replaces the selection and revalidates the applied coupon.
func (c Cart) WithItems(snap *Snapshot, items []coupon.LineItem, now time.Time) (Cart, *Invalidated) {
	next := c
	next.items = slices.Clone(items)
	return next.Revalidate(snap, now)
}

// Revalidate re-runs the applied coupon against the current selection using
// the coupon as it appears in snap. If it no longer qualifies the cart moves
// to NONE_APPLIED and the returned event carries the reason.
func (c Cart) Revalidate(snap *Snapshot, now time.Time) (Cart, *Invalidated) {
	if c.applied == nil {
		return c, nil
	}
	code := c.applied.Code

	cp, ok := snap.Lookup(code)
	if !ok {
		return c.Remove(), &Invalidated{Code: code, Reason: coupon.ReasonUnknownCode}
	}
	res := coupon.Evaluate(cp, c.items, snap.Index, now)
	if !res.Applied() {
		return c.Remove(), &Invalidated{Code: code, Reason: res.Rejection}
	}
	applied := *cp
	return Cart{items: c.items, applied: &applied, discount: res}, nil
}

// Remove drops the applied coupon.
func (c Cart) Remove() Cart {
	return Cart{items: c.items}
}
