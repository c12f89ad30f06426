package coupon

import (
	"slices"
	"strings"
	"time"

	"github.com/xenking/storefront/internal/domain/catalog"
)

// Offer pairs an eligible coupon with the discount it would produce on the
// current selection.
type Offer struct {
	Coupon   Coupon
	Discount DiscountResult
}

// ListEligible returns the coupons worth showing for the current selection:
// currently valid, applicable to at least one selected item, and meeting the
// minimum order on the subtotal of the items that coupon applies to.
//
// The result is ordered fixed-amount first, then by larger value, then by
// code. The input slice is left untouched.
func ListEligible(all []Coupon, items []LineItem, idx *catalog.Index, now time.Time) []Coupon {
	var out []Coupon
	for i := range all {
		c := &all[i]
		if !IsCurrentlyValid(c, now) {
			continue
		}
		if !SelectionHasApplicableItem(items, c, idx) {
			continue
		}
		if !MeetsMinOrder(ApplicableSubtotal(items, c, idx), c) {
			continue
		}
		out = append(out, *c)
	}
	slices.SortStableFunc(out, compareForDisplay)
	return out
}

// ListEligibleWithDiscount is ListEligible with each coupon's computed
// discount attached.
func ListEligibleWithDiscount(all []Coupon, items []LineItem, idx *catalog.Index, now time.Time) []Offer {
	eligible := ListEligible(all, items, idx, now)
	offers := make([]Offer, len(eligible))
	for i := range eligible {
		offers[i] = Offer{
			Coupon:   eligible[i],
			Discount: ComputeDiscount(&eligible[i], items, idx),
		}
	}
	return offers
}

func compareForDisplay(a, b Coupon) int {
	if ra, rb := typeRank(a.DiscountType), typeRank(b.DiscountType); ra != rb {
		return ra - rb
	}
	if c := b.DiscountValue.Cmp(a.DiscountValue); c != 0 {
		return c
	}
	return strings.Compare(a.Code, b.Code)
}

func typeRank(t DiscountType) int {
	switch t {
	case DiscountFixed:
		return 0
	case DiscountPercentage:
		return 1
	default:
		return 2
	}
}
